package seats

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditorio-asientos/backend/config"
	"github.com/auditorio-asientos/backend/internal/audit"
	"github.com/auditorio-asientos/backend/internal/models"
	"github.com/auditorio-asientos/backend/internal/realtime"
	"github.com/auditorio-asientos/backend/internal/registros"
	"github.com/auditorio-asientos/backend/pkg/response"
)

// Handler handles the cookie-authenticated seat endpoints.
type Handler struct {
	repo         *Repository
	registroRepo *registros.Repository
	auditRepo    *audit.Repository
	hub          *realtime.Hub
	cookie       config.CookieConfig
	logger       *zap.Logger
}

// NewHandler creates a seats handler.
func NewHandler(repo *Repository, registroRepo *registros.Repository, auditRepo *audit.Repository, hub *realtime.Hub, cookie config.CookieConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:         repo,
		registroRepo: registroRepo,
		auditRepo:    auditRepo,
		hub:          hub,
		cookie:       cookie,
		logger:       logger,
	}
}

// SeatRequest is the body for the asignar/liberar endpoints.
type SeatRequest struct {
	SeatID     string    `json:"seat_id"`
	TemplateID uuid.UUID `json:"template_id"`
}

func (h *Handler) requester(c *gin.Context, templateID uuid.UUID) (*models.Registro, bool) {
	token, err := c.Cookie(h.cookie.Name)
	if err != nil || token == "" {
		response.Unauthorized(c, "no autorizado")
		return nil, false
	}
	reg, err := h.registroRepo.GetByToken(c.Request.Context(), token, templateID)
	if err != nil {
		h.logger.Error("registro lookup failed", zap.Error(err))
		response.Internal(c, "error interno")
		return nil, false
	}
	if reg == nil {
		response.Unauthorized(c, "no autorizado para este evento")
		return nil, false
	}
	return reg, true
}

// Asignar handles POST /api/asiento/asignar. Claims a seat for the cookie
// identity, releasing any previous seat the requester holds in the event.
func (h *Handler) Asignar(c *gin.Context) {
	var req SeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "seat_id y template_id requeridos")
		return
	}
	req.SeatID = strings.TrimSpace(req.SeatID)
	if req.SeatID == "" || req.TemplateID == uuid.Nil {
		response.BadRequest(c, "seat_id y template_id requeridos")
		return
	}

	reg, ok := h.requester(c, req.TemplateID)
	if !ok {
		return
	}

	requester := Requester{ID: reg.ID, Nombre: reg.Nombre, Categoria: reg.Categoria}
	err := h.repo.Claim(c.Request.Context(), req.TemplateID, req.SeatID, requester, ClaimOptions{})
	if err != nil {
		if errors.Is(err, ErrSeatUnavailable) {
			response.Conflict(c, err.Error())
			return
		}
		h.logger.Error("claim failed", zap.Error(err),
			zap.String("seat_id", req.SeatID), zap.String("registro_id", reg.ID.String()))
		response.Internal(c, "error al asignar asiento")
		return
	}

	h.auditRepo.Write(c.Request.Context(), audit.Entry{
		TemplateID: &req.TemplateID,
		ActorType:  models.ActorInvitado,
		ActorID:    &reg.ID,
		Action:     "reserve_seat",
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

// Liberar handles POST /api/asiento/liberar. Releases the requester's own
// seat, reverting it to an open slot or deleting it per the slot policy.
func (h *Handler) Liberar(c *gin.Context) {
	var req SeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "seat_id y template_id requeridos")
		return
	}
	req.SeatID = strings.TrimSpace(req.SeatID)
	if req.SeatID == "" || req.TemplateID == uuid.Nil {
		response.BadRequest(c, "seat_id y template_id requeridos")
		return
	}

	reg, ok := h.requester(c, req.TemplateID)
	if !ok {
		return
	}

	requester := Requester{ID: reg.ID, Nombre: reg.Nombre, Categoria: reg.Categoria}
	err := h.repo.Release(c.Request.Context(), req.TemplateID, req.SeatID, requester, ReleaseOptions{})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAssigned):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrForbidden):
			response.Forbidden(c, err.Error())
		default:
			h.logger.Error("release failed", zap.Error(err),
				zap.String("seat_id", req.SeatID), zap.String("registro_id", reg.ID.String()))
			response.Internal(c, "error al liberar asiento")
		}
		return
	}

	h.auditRepo.Write(c.Request.Context(), audit.Entry{
		TemplateID: &req.TemplateID,
		ActorType:  models.ActorInvitado,
		ActorID:    &reg.ID,
		Action:     "release_seat",
		Entity:     "assignments",
		EntityID:   req.SeatID,
	})
	h.hub.Broadcast(req.TemplateID, realtime.EventSeatUpdate, gin.H{
		"seat_id":     req.SeatID,
		"template_id": req.TemplateID,
	})
	response.OK(c, gin.H{"seat_id": req.SeatID})
}

// List handles GET /api/asientos?template_id=. Returns the event's assignment
// rows for map rendering.
func (h *Handler) List(c *gin.Context) {
	templateID, err := uuid.Parse(c.Query("template_id"))
	if err != nil {
		response.BadRequest(c, "template_id requerido")
		return
	}
	list, err := h.repo.ListByTemplate(c.Request.Context(), templateID)
	if err != nil {
		h.logger.Error("list assignments failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	response.OK(c, list)
}
