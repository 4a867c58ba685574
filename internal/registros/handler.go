package registros

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditorio-asientos/backend/config"
	"github.com/auditorio-asientos/backend/internal/models"
	"github.com/auditorio-asientos/backend/pkg/response"
	"github.com/auditorio-asientos/backend/pkg/utils"
)

const accessCodeLength = 6

// Handler handles attendee registration and identity endpoints.
type Handler struct {
	repo   *Repository
	cookie config.CookieConfig
	logger *zap.Logger
}

// NewHandler creates a registros handler.
func NewHandler(repo *Repository, cookie config.CookieConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, cookie: cookie, logger: logger}
}

// RegisterRequest is the body for POST /api/registro.
type RegisterRequest struct {
	Nombre     string    `json:"nombre" binding:"required"`
	Categoria  string    `json:"categoria" binding:"required"`
	TemplateID uuid.UUID `json:"template_id" binding:"required"`
}

// Register handles POST /api/registro. Creates the registro, issues the bearer
// token and access code, and sets the session cookie.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "nombre, categoría y template_id son requeridos")
		return
	}
	nombre := NormalizeNombre(req.Nombre)
	if nombre == "" || !models.ValidCategoria(req.Categoria) {
		response.BadRequest(c, "nombre y categoría válidos son requeridos")
		return
	}

	taken, err := h.repo.NombreTaken(c.Request.Context(), req.TemplateID, nombre)
	if err != nil {
		h.logger.Error("duplicate-name check failed", zap.Error(err))
		response.Internal(c, "error al registrarse")
		return
	}
	if taken {
		response.BadRequest(c, "este nombre ya se encuentra registrado; añade un segundo apellido para diferenciarte")
		return
	}

	code, err := utils.NewAccessCode(accessCodeLength)
	if err != nil {
		response.Internal(c, "error al registrarse")
		return
	}
	reg := &models.Registro{
		TemplateID:   &req.TemplateID,
		Nombre:       nombre,
		Categoria:    req.Categoria,
		Token:        utils.NewBearerToken(),
		CodigoAcceso: code,
	}
	if err := h.repo.Create(c.Request.Context(), reg); err != nil {
		h.logger.Error("create registro failed", zap.Error(err),
			zap.String("template_id", req.TemplateID.String()))
		response.Internal(c, "error al registrarse")
		return
	}

	h.setSessionCookie(c, reg.Token)
	response.OK(c, gin.H{
		"id":            reg.ID,
		"nombre":        reg.Nombre,
		"categoria":     reg.Categoria,
		"codigo_acceso": reg.CodigoAcceso,
	})
}

// LoginRequest is the body for POST /api/registro/login.
type LoginRequest struct {
	Code       string    `json:"code" binding:"required"`
	TemplateID uuid.UUID `json:"template_id" binding:"required"`
}

// Login handles POST /api/registro/login. Exchanges an access code for the
// session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "código y template_id son requeridos")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	reg, err := h.repo.GetByAccessCode(c.Request.Context(), code, req.TemplateID)
	if err != nil {
		h.logger.Error("login lookup failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	if reg == nil {
		response.Unauthorized(c, "código inválido o no encontrado")
		return
	}

	h.setSessionCookie(c, reg.Token)
	response.OK(c, gin.H{
		"id":            reg.ID,
		"nombre":        reg.Nombre,
		"categoria":     reg.Categoria,
		"codigo_acceso": reg.CodigoAcceso,
	})
}

// Me handles GET /api/registro/me. Resolves the current identity from the
// session cookie; an anonymous viewer gets a null payload, not an error.
func (h *Handler) Me(c *gin.Context) {
	token, err := c.Cookie(h.cookie.Name)
	if err != nil || token == "" {
		response.OK(c, nil)
		return
	}
	reg, err := h.repo.GetByTokenAny(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("me lookup failed", zap.Error(err))
		response.OK(c, nil)
		return
	}
	if reg == nil {
		response.OK(c, nil)
		return
	}
	// Rows created before access codes existed get one on first sight.
	if reg.CodigoAcceso == "" {
		if code, err := utils.NewAccessCode(accessCodeLength); err == nil {
			if err := h.repo.UpdateAccessCode(c.Request.Context(), reg.ID, code); err == nil {
				reg.CodigoAcceso = code
			}
		}
	}
	response.OK(c, gin.H{
		"id":            reg.ID,
		"nombre":        reg.Nombre,
		"categoria":     reg.Categoria,
		"codigo_acceso": reg.CodigoAcceso,
		"template_id":   reg.TemplateID,
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
}
