package admin

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/middleware"
	"github.com/businessbook/directory/pkg/response"
)

// Handler serves the admin screen. Every route is behind RequireScreen(admin).
type Handler struct {
	actions *Actions
}

// NewHandler creates an admin handler.
func NewHandler(actions *Actions) *Handler {
	return &Handler{actions: actions}
}

// Register mounts the admin routes on g.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/dashboard", h.Dashboard)
	g.GET("/traffic", h.Traffic)
	g.POST("/enterprises/:id/suspend", h.Suspend)
	g.DELETE("/enterprises/:id", h.Delete)
}

// Dashboard handles GET /admin/dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.actions.Dashboard(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		writeError(c, err, "failed to load dashboard")
		return
	}
	response.OK(c, d)
}

// Traffic handles GET /admin/traffic.
func (h *Handler) Traffic(c *gin.Context) {
	st, err := h.actions.Traffic(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		writeError(c, err, "failed to load traffic")
		return
	}
	response.OK(c, st)
}

// Suspend handles POST /admin/enterprises/:id/suspend.
func (h *Handler) Suspend(c *gin.Context) {
	e, err := h.actions.Suspend(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to suspend enterprise")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /admin/enterprises/:id.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.actions.Delete(c.Request.Context(), middleware.CurrentSession(c), id); err != nil {
		writeError(c, err, "failed to delete enterprise")
		return
	}
	response.OK(c, gin.H{"id": id, "deleted": true})
}

func writeError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		response.NotFound(c, "enterprise not found")
	case errors.Is(err, context.DeadlineExceeded):
		response.ServiceUnavailable(c, msg+": backend timed out")
	default:
		response.ServiceUnavailable(c, msg)
	}
}
