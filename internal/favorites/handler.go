package favorites

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/middleware"
	"github.com/businessbook/directory/pkg/response"
)

// Handler serves the favorites screen.
type Handler struct {
	store *Store
}

// NewHandler creates a favorites handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Register mounts the favorites routes on g.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.PUT("/:id", h.Add)
	g.DELETE("/:id", h.Remove)
}

// List handles GET /favorites.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.store.List(middleware.CurrentSessionID(c)))
}

// Add handles PUT /favorites/:id.
func (h *Handler) Add(c *gin.Context) {
	if err := h.store.Add(middleware.CurrentSessionID(c), c.Param("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			response.NotFound(c, "enterprise not found")
			return
		}
		response.Internal(c, "failed to add favorite")
		return
	}
	response.OK(c, h.store.List(middleware.CurrentSessionID(c)))
}

// Remove handles DELETE /favorites/:id.
func (h *Handler) Remove(c *gin.Context) {
	if !h.store.Remove(middleware.CurrentSessionID(c), c.Param("id")) {
		response.NotFound(c, "not a favorite")
		return
	}
	response.NoContent(c)
}
