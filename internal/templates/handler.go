package templates

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditorio-asientos/backend/internal/audit"
	"github.com/auditorio-asientos/backend/internal/models"
	"github.com/auditorio-asientos/backend/internal/registros"
	"github.com/auditorio-asientos/backend/internal/seats"
	"github.com/auditorio-asientos/backend/pkg/response"
)

// Handler handles the admin event endpoints.
type Handler struct {
	repo         *Repository
	seatRepo     *seats.Repository
	registroRepo *registros.Repository
	auditRepo    *audit.Repository
	logger       *zap.Logger
}

// NewHandler creates a templates handler.
func NewHandler(repo *Repository, seatRepo *seats.Repository, registroRepo *registros.Repository, auditRepo *audit.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, seatRepo: seatRepo, registroRepo: registroRepo, auditRepo: auditRepo, logger: logger}
}

// List handles GET /api/admin/events.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	response.OK(c, gin.H{"events": list})
}

// CreateRequest is the body for POST /api/admin/events.
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create handles POST /api/admin/events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name requerido")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		response.BadRequest(c, "name requerido")
		return
	}
	t, err := h.repo.Create(c.Request.Context(), name)
	if err != nil {
		h.logger.Error("create event failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	response.Created(c, t)
}

// Detail handles GET /api/admin/events/:id. Returns the event with dashboard
// metrics and category quotas.
func (h *Handler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id inválido")
		return
	}
	ctx := c.Request.Context()
	t, err := h.repo.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("get event failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	if t == nil {
		response.NotFound(c, "evento no encontrado")
		return
	}

	assigned, err := h.seatRepo.CountByTemplate(ctx, id)
	if err != nil {
		h.logger.Error("count assignments failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	pending, err := h.registroRepo.CountByStatus(ctx, id, models.InvitationPending)
	if err != nil {
		h.logger.Error("count pending invites failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	quotas, err := h.repo.Quotas(ctx, id)
	if err != nil {
		h.logger.Error("load quotas failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}

	response.OK(c, gin.H{
		"event":   t,
		"metrics": models.EventMetrics{Assigned: assigned, PendingInvites: pending},
		"quotas":  quotas,
	})
}

// Clean handles DELETE /api/admin/events/:id/clean. Wipes the event's
// assignments and registros (templates themselves survive).
func (h *Handler) Clean(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id inválido")
		return
	}
	ctx := c.Request.Context()
	t, err := h.repo.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("get event failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	if t == nil {
		response.NotFound(c, "evento no encontrado")
		return
	}

	seatsRemoved, err := h.seatRepo.DeleteByTemplate(ctx, id)
	if err != nil {
		h.logger.Error("clean assignments failed", zap.Error(err))
		response.Internal(c, "error al limpiar el evento")
		return
	}
	registrosRemoved, err := h.registroRepo.DeleteByTemplate(ctx, id)
	if err != nil {
		h.logger.Error("clean registros failed", zap.Error(err))
		response.Internal(c, "error al limpiar el evento")
		return
	}

	h.auditRepo.Write(ctx, audit.Entry{
		TemplateID: &id,
		ActorType:  models.ActorSuperAdmin,
		Action:     "clean_event",
		Entity:     "templates",
		EntityID:   id.String(),
		Payload:    map[string]any{"assignments": seatsRemoved, "registros": registrosRemoved},
	})
	response.OK(c, gin.H{"assignments": seatsRemoved, "registros": registrosRemoved})
}
