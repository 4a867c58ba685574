package admin

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/auditorio-asientos/backend/pkg/response"
	"github.com/auditorio-asientos/backend/pkg/utils"
)

// Handler handles admin authentication.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an admin auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// LoginRequest is the body for POST /api/admin/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/admin/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email y contraseña requeridos")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.repo.GetByEmail(c.Request.Context(), email)
	if err != nil {
		h.logger.Error("admin lookup failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
		response.Unauthorized(c, "credenciales inválidas")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		h.logger.Error("jwt generate failed", zap.Error(err))
		response.Internal(c, "error interno")
		return
	}
	response.OK(c, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "email": user.Email, "role": user.Role},
	})
}
