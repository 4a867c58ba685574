package invitations

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditorio-asientos/backend/internal/audit"
	"github.com/auditorio-asientos/backend/internal/models"
	"github.com/auditorio-asientos/backend/internal/registros"
	"github.com/auditorio-asientos/backend/internal/templates"
	"github.com/auditorio-asientos/backend/pkg/queue"
	"github.com/auditorio-asientos/backend/pkg/response"
	"github.com/auditorio-asientos/backend/pkg/utils"
)

const (
	accessCodeLength = 8
	defaultSendLimit = 500
	maxSendLimit     = 2000
)

// Handler handles the admin roster import and campaign endpoints.
type Handler struct {
	repo         *Repository
	registroRepo *registros.Repository
	templateRepo *templates.Repository
	auditRepo    *audit.Repository
	jobs         *queue.Queue
	mailMode     string
	logger       *zap.Logger
}

// NewHandler creates an invitations handler. mailMode is the configured mail
// provider name, recorded on each campaign.
func NewHandler(repo *Repository, registroRepo *registros.Repository, templateRepo *templates.Repository, auditRepo *audit.Repository, jobs *queue.Queue, mailMode string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:         repo,
		registroRepo: registroRepo,
		templateRepo: templateRepo,
		auditRepo:    auditRepo,
		jobs:         jobs,
		mailMode:     mailMode,
		logger:       logger,
	}
}

// Preview handles POST /api/admin/events/:id/invitations/import/preview.
// Parses the uploaded roster and reports what a confirm would do, without
// touching the database.
func (h *Handler) Preview(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id inválido")
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "archivo requerido")
		return
	}
	defer file.Close()

	preview, err := ParseRoster(header.Filename, file)
	if err != nil {
		h.logger.Warn("roster parse failed", zap.Error(err), zap.String("filename", header.Filename))
		response.BadRequest(c, "no se pudo procesar el archivo")
		return
	}

	duplicatesInDB := 0
	if len(preview.Rows) > 0 {
		correos := make([]string, len(preview.Rows))
		for i, row := range preview.Rows {
			correos[i] = row.Correo
		}
		existing, err := h.registroRepo.GetByCorreos(c.Request.Context(), templateID, correos)
		if err != nil {
			h.logger.Error("preview db lookup failed", zap.Error(err))
			response.Internal(c, "error interno")
			return
		}
		duplicatesInDB = len(existing)
	}

	response.OK(c, gin.H{
		"total":              preview.Total,
		"valid":              preview.Valid,
		"invalid":            preview.Invalid,
		"duplicates_in_file": preview.DuplicatesInFile,
		"duplicates_in_db":   duplicatesInDB,
		"rows":               preview.Rows,
		"errors":             preview.Errors,
	})
}

// ConfirmRequest is the body for the import confirm endpoint.
type ConfirmRequest struct {
	Rows []InviteRow `json:"rows" binding:"required"`
}

// Confirm handles POST /api/admin/events/:id/invitations/import/confirm.
// Reconciles the rows against existing registros: insert unseen emails,
// skip rows whose invitation is already reserved (committed seats survive a
// re-import), update the rest.
func (h *Handler) Confirm(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id inválido")
		return
	}
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Rows) == 0 {
		response.BadRequest(c, "no hay filas para importar")
		return
	}

	ctx := c.Request.Context()
	correos := make([]string, len(req.Rows))
	for i, row := range req.Rows {
		correos[i] = NormalizeEmail(row.Correo)
	}
	existing, err := h.registroRepo.GetByCorreos(ctx, templateID, correos)
	if err != nil {
		h.logger.Error("confirm db lookup failed", zap.Error(err))
		response.Internal(c, "error al confirmar importación")
		return
	}

	var inserted, updated, skipped int
	for _, row := range req.Rows {
		correo := NormalizeEmail(row.Correo)
		current := existing[correo]
		var departamento *string
		if row.Departamento != "" {
			departamento = &row.Departamento
		}

		switch DecideImport(current) {
		case ImportSkip:
			skipped++
		case ImportInsert:
			code, err := utils.NewAccessCode(accessCodeLength)
			if err != nil {
				response.Internal(c, "error al confirmar importación")
				return
			}
			reg := &models.Registro{
				TemplateID:   &templateID,
				Nombre:       row.Nombre,
				Categoria:    row.Categoria,
				Correo:       &correo,
				Departamento: departamento,
				Token:        utils.NewBearerToken(),
				CodigoAcceso: code,
			}
			if err := h.registroRepo.CreateImported(ctx, reg); err != nil {
				h.logger.Error("import insert failed", zap.Error(err), zap.String("correo", correo))
				response.Internal(c, "error al confirmar importación")
				return
			}
			inserted++
		case ImportUpdate:
			if err := h.registroRepo.UpdateImported(ctx, current.ID, row.Nombre, row.Categoria, correo, departamento); err != nil {
				h.logger.Error("import update failed", zap.Error(err), zap.String("correo", correo))
				response.Internal(c, "error al confirmar importación")
				return
			}
			updated++
		}
	}

	h.auditRepo.Write(ctx, audit.Entry{
		TemplateID: &templateID,
		ActorType:  models.ActorSystem,
		Action:     "import_csv_confirm",
		Entity:     "registros",
		Payload:    map[string]any{"inserted": inserted, "updated": updated, "skipped": skipped, "total": len(req.Rows)},
	})
	response.OK(c, gin.H{
		"inserted": inserted,
		"updated":  updated,
		"skipped":  skipped,
		"total":    len(req.Rows),
	})
}

// SendRequest is the body for the campaign send endpoint.
type SendRequest struct {
	Resend  bool   `json:"resend"`
	Limit   int    `json:"limit"`
	Subject string `json:"subject"`
}

// Send handles POST /api/admin/events/:id/invitations/send. Creates a
// campaign and enqueues one email job per recipient; the worker does the
// actual delivery and updates the counters.
func (h *Handler) Send(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id inválido")
		return
	}
	var req SendRequest
	_ = c.ShouldBindJSON(&req) // empty body means defaults
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSendLimit
	}
	if limit > maxSendLimit {
		limit = maxSendLimit
	}

	ctx := c.Request.Context()
	template, err := h.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		h.logger.Error("get event failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	if template == nil {
		response.NotFound(c, "evento no encontrado")
		return
	}

	statuses := []string{models.InvitationPending}
	if req.Resend {
		statuses = append(statuses, models.InvitationSent)
	}
	recipients, err := h.registroRepo.ListForSend(ctx, templateID, statuses, limit)
	if err != nil {
		h.logger.Error("list recipients failed", zap.Error(err))
		response.Internal(c, "no se pudo enviar la campaña")
		return
	}
	if len(recipients) == 0 {
		response.OK(c, gin.H{"total": 0, "queued": 0, "failed": 0, "mode": h.mailMode})
		return
	}

	subject := campaignSubject(req.Subject, template.Name)
	camp := &models.InvitationCampaign{
		TemplateID: templateID,
		Subject:    &subject,
		Mode:       h.mailMode,
		Total:      len(recipients),
	}
	if err := h.repo.CreateCampaign(ctx, camp); err != nil {
		h.logger.Error("create campaign failed", zap.Error(err))
		response.Internal(c, "no se pudo enviar la campaña")
		return
	}

	queued, failed := 0, 0
	var queuedIDs []uuid.UUID
	for _, reg := range recipients {
		payload := queue.InvitationPayload{
			CampaignID:    camp.ID,
			TemplateID:    templateID,
			RegistroID:    reg.ID,
			RecipientName: reg.Nombre,
			InviteToken:   reg.Token,
			EventName:     template.Name,
			Subject:       subject,
		}
		if reg.Correo != nil {
			payload.RecipientEmail = *reg.Correo
		}
		if err := h.jobs.EnqueueInvitation(ctx, payload); err != nil {
			h.logger.Error("enqueue invitation failed", zap.Error(err), zap.String("registro_id", reg.ID.String()))
			failed++
			continue
		}
		queued++
		queuedIDs = append(queuedIDs, reg.ID)
	}

	// Queued recipients move to sent immediately; the worker records
	// per-recipient failures in invitation_last_error.
	for _, id := range queuedIDs {
		if err := h.registroRepo.SetInvitationStatus(ctx, id, models.InvitationSent); err != nil {
			h.logger.Warn("mark sent failed", zap.Error(err), zap.String("registro_id", id.String()))
		}
	}
	if len(queuedIDs) > 0 {
		if err := h.registroRepo.ClearInvitationError(ctx, queuedIDs); err != nil {
			h.logger.Warn("clear invitation errors failed", zap.Error(err))
		}
	}

	h.auditRepo.Write(ctx, audit.Entry{
		TemplateID: &templateID,
		ActorType:  models.ActorSystem,
		Action:     "send_invitations",
		Entity:     "registros",
		Payload:    map[string]any{"total": len(recipients), "queued": queued, "failed": failed, "mode": h.mailMode},
	})
	response.OK(c, gin.H{
		"campaign_id": camp.ID,
		"total":       len(recipients),
		"queued":      queued,
		"failed":      failed,
		"mode":        h.mailMode,
	})
}

// campaignSubject resolves a campaign's subject line: the admin's custom
// subject when given, otherwise the default invitation subject for the event.
// Campaign rows always store the resolved subject.
func campaignSubject(custom, eventName string) string {
	if s := strings.TrimSpace(custom); s != "" {
		return s
	}
	return "Invitación: " + eventName
}

// ListCampaigns handles GET /api/admin/events/:id/invitations/campaigns.
func (h *Handler) ListCampaigns(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id inválido")
		return
	}
	list, err := h.repo.ListByTemplate(c.Request.Context(), templateID)
	if err != nil {
		h.logger.Error("list campaigns failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	response.OK(c, list)
}
