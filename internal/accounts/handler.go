package accounts

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/businessbook/directory/pkg/response"
)

// Handler handles account HTTP endpoints.
type Handler struct {
	dir    *Directory
	logger *zap.Logger
}

// NewHandler creates an accounts handler.
func NewHandler(dir *Directory, logger *zap.Logger) *Handler {
	return &Handler{dir: dir, logger: logger}
}

// Register handles POST /accounts/register.
func (h *Handler) Register(c *gin.Context) {
	var req Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validationError(err).Error())
		return
	}
	a, err := h.dir.Register(req)
	switch {
	case err == nil:
		h.logger.Info("account registered", zap.String("account_id", a.ID.String()))
		response.Created(c, a.ToPublic())
	case errors.Is(err, ErrEmailTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrPasswordMismatch):
		response.BadRequest(c, err.Error())
	default:
		h.logger.Error("register account", zap.Error(err))
		response.Internal(c, "failed to register account")
	}
}
