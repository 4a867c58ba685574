package export

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditorio-asientos/backend/internal/seats"
	"github.com/auditorio-asientos/backend/internal/templates"
	"github.com/auditorio-asientos/backend/pkg/response"
)

// Handler serves the XLSX roster download.
type Handler struct {
	exporter     *Exporter
	seatRepo     *seats.Repository
	templateRepo *templates.Repository
	logger       *zap.Logger
}

func NewHandler(seatRepo *seats.Repository, templateRepo *templates.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{exporter: NewExporter(), seatRepo: seatRepo, templateRepo: templateRepo, logger: logger}
}

// Download handles GET /api/admin/export?template_id=...
func (h *Handler) Download(c *gin.Context) {
	templateID, err := uuid.Parse(c.Query("template_id"))
	if err != nil {
		response.BadRequest(c, "template_id requerido")
		return
	}
	ctx := c.Request.Context()

	t, err := h.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		h.logger.Error("get event failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	if t == nil {
		response.NotFound(c, "evento no encontrado")
		return
	}

	assignments, err := h.seatRepo.ListByTemplate(ctx, templateID)
	if err != nil {
		h.logger.Error("list assignments failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}

	f, err := h.exporter.Build(t.Name, assignments)
	if err != nil {
		h.logger.Error("build workbook failed", zap.Error(err))
		response.Internal(c, "error al generar el archivo")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("asignaciones-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("stream workbook failed", zap.Error(err))
		return
	}
	c.Status(http.StatusOK)
}
