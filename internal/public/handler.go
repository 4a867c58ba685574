// Package public implements the invitation-link flows: token-in-body claim
// and release, plus invitation validation. These mirror the cookie endpoints
// but authenticate with the bearer token carried in the invitation URL.
package public

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditorio-asientos/backend/internal/audit"
	"github.com/auditorio-asientos/backend/internal/models"
	"github.com/auditorio-asientos/backend/internal/realtime"
	"github.com/auditorio-asientos/backend/internal/registros"
	"github.com/auditorio-asientos/backend/internal/seats"
	"github.com/auditorio-asientos/backend/pkg/response"
)

// Handler handles the public invitation endpoints.
type Handler struct {
	seatRepo     *seats.Repository
	registroRepo *registros.Repository
	auditRepo    *audit.Repository
	hub          *realtime.Hub
	logger       *zap.Logger
}

// NewHandler creates a public invitation handler.
func NewHandler(seatRepo *seats.Repository, registroRepo *registros.Repository, auditRepo *audit.Repository, hub *realtime.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		seatRepo:     seatRepo,
		registroRepo: registroRepo,
		auditRepo:    auditRepo,
		hub:          hub,
		logger:       logger,
	}
}

// TokenSeatRequest is the body for the public reservar/liberar endpoints.
type TokenSeatRequest struct {
	Token      string    `json:"token"`
	SeatID     string    `json:"seat_id"`
	TemplateID uuid.UUID `json:"template_id"`
}

// Validate handles GET /api/public/invitaciones/validate?token=. Resolves the
// invitation, expiring it when past its deadline and recording first opens.
func (h *Handler) Validate(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.BadRequest(c, "token requerido")
		return
	}
	reg, err := h.registroRepo.GetByTokenAny(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("invitation lookup failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	if reg == nil {
		response.NotFound(c, "invitación inválida")
		return
	}

	if reg.InvitationExpiresAt != nil && reg.InvitationExpiresAt.Before(time.Now()) {
		if err := h.registroRepo.SetInvitationStatus(c.Request.Context(), reg.ID, models.InvitationExpired); err != nil {
			h.logger.Warn("mark expired failed", zap.Error(err), zap.String("registro_id", reg.ID.String()))
		}
		response.Gone(c, "invitación expirada")
		return
	}

	if reg.InvitationStatus == models.InvitationPending || reg.InvitationStatus == models.InvitationSent {
		if err := h.registroRepo.SetInvitationStatus(c.Request.Context(), reg.ID, models.InvitationOpened); err != nil {
			h.logger.Warn("mark opened failed", zap.Error(err), zap.String("registro_id", reg.ID.String()))
		} else {
			reg.InvitationStatus = models.InvitationOpened
		}
	}

	response.OK(c, gin.H{
		"id":                    reg.ID,
		"nombre":                reg.Nombre,
		"categoria":             reg.Categoria,
		"correo":                reg.Correo,
		"template_id":           reg.TemplateID,
		"invitation_status":     reg.InvitationStatus,
		"invitation_expires_at": reg.InvitationExpiresAt,
	})
}

// Reservar handles POST /api/public/reservar. Unlike the cookie flow, the
// target seat row must exist: invitation guests only take pre-provisioned
// quota slots, never arbitrary physical seats.
func (h *Handler) Reservar(c *gin.Context) {
	var req TokenSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "token, seat_id y template_id son requeridos")
		return
	}
	req.SeatID = strings.TrimSpace(req.SeatID)
	if req.Token == "" || req.SeatID == "" || req.TemplateID == uuid.Nil {
		response.BadRequest(c, "token, seat_id y template_id son requeridos")
		return
	}

	reg, ok := h.requester(c, req.Token, req.TemplateID)
	if !ok {
		return
	}

	requester := seats.Requester{ID: reg.ID, Nombre: reg.Nombre, Categoria: reg.Categoria}
	err := h.seatRepo.Claim(c.Request.Context(), req.TemplateID, req.SeatID, requester,
		seats.ClaimOptions{RequireExisting: true})
	if err != nil {
		switch {
		case errors.Is(err, seats.ErrSeatMissing):
			response.NotFound(c, err.Error())
		case errors.Is(err, seats.ErrSeatUnavailable):
			response.Conflict(c, "asiento no disponible para tu categoría")
		default:
			h.logger.Error("public claim failed", zap.Error(err),
				zap.String("seat_id", req.SeatID), zap.String("registro_id", reg.ID.String()))
			response.Internal(c, "error al reservar asiento")
		}
		return
	}

	if err := h.registroRepo.SetInvitationStatus(c.Request.Context(), reg.ID, models.InvitationReserved); err != nil {
		h.logger.Warn("mark reserved failed", zap.Error(err), zap.String("registro_id", reg.ID.String()))
	}

	h.auditRepo.Write(c.Request.Context(), audit.Entry{
		TemplateID: &req.TemplateID,
		ActorType:  models.ActorInvitado,
		ActorID:    &reg.ID,
		Action:     "reserve_seat_token",
		Entity:     "assignments",
		EntityID:   req.SeatID,
		Payload:    map[string]any{"categoria": reg.Categoria},
	})
	h.hub.Broadcast(req.TemplateID, realtime.EventSeatUpdate, gin.H{
		"seat_id":     req.SeatID,
		"template_id": req.TemplateID,
	})
	response.OK(c, gin.H{"seat_id": req.SeatID})
}

// Liberar handles POST /api/public/liberar. Reverts the guest's seat to an
// open slot (invitation seats are quota slots by construction) and moves the
// invitation back to opened.
func (h *Handler) Liberar(c *gin.Context) {
	var req TokenSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "token, seat_id y template_id son requeridos")
		return
	}
	req.SeatID = strings.TrimSpace(req.SeatID)
	if req.Token == "" || req.SeatID == "" || req.TemplateID == uuid.Nil {
		response.BadRequest(c, "token, seat_id y template_id son requeridos")
		return
	}

	reg, ok := h.requester(c, req.Token, req.TemplateID)
	if !ok {
		return
	}

	requester := seats.Requester{ID: reg.ID, Nombre: reg.Nombre, Categoria: reg.Categoria}
	err := h.seatRepo.Release(c.Request.Context(), req.TemplateID, req.SeatID, requester,
		seats.ReleaseOptions{ForceRevert: true})
	if err != nil {
		switch {
		case errors.Is(err, seats.ErrNotAssigned), errors.Is(err, seats.ErrForbidden):
			response.Forbidden(c, "solo puedes liberar tu propio asiento")
		default:
			h.logger.Error("public release failed", zap.Error(err),
				zap.String("seat_id", req.SeatID), zap.String("registro_id", reg.ID.String()))
			response.Internal(c, "error al liberar asiento")
		}
		return
	}

	if err := h.registroRepo.SetInvitationStatus(c.Request.Context(), reg.ID, models.InvitationOpened); err != nil {
		h.logger.Warn("mark opened failed", zap.Error(err), zap.String("registro_id", reg.ID.String()))
	}

	h.auditRepo.Write(c.Request.Context(), audit.Entry{
		TemplateID: &req.TemplateID,
		ActorType:  models.ActorInvitado,
		ActorID:    &reg.ID,
		Action:     "release_seat_token",
		Entity:     "assignments",
		EntityID:   req.SeatID,
	})
	h.hub.Broadcast(req.TemplateID, realtime.EventSeatUpdate, gin.H{
		"seat_id":     req.SeatID,
		"template_id": req.TemplateID,
	})
	response.OK(c, gin.H{"seat_id": req.SeatID})
}

func (h *Handler) requester(c *gin.Context, token string, templateID uuid.UUID) (*models.Registro, bool) {
	reg, err := h.registroRepo.GetByToken(c.Request.Context(), token, templateID)
	if err != nil {
		h.logger.Error("registro lookup failed", zap.Error(err))
		response.Internal(c, "error interno")
		return nil, false
	}
	if reg == nil {
		response.Unauthorized(c, "invitación inválida")
		return nil, false
	}
	return reg, true
}
