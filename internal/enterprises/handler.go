// Package enterprises serves the catalog screens: home listing, detail,
// domains and one-shot search.
package enterprises

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/search"
	"github.com/businessbook/directory/pkg/response"
)

// Reader is the read side of the data source.
type Reader interface {
	GetEnterpriseByID(ctx context.Context, id string) (models.Enterprise, error)
	GetDomains(ctx context.Context) ([]models.Domain, error)
}

// Handler handles enterprise HTTP endpoints.
type Handler struct {
	reader  Reader
	engine  *search.Engine
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandler creates an enterprises handler.
func NewHandler(reader Reader, engine *search.Engine, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{reader: reader, engine: engine, timeout: timeout, logger: logger}
}

// List handles GET /enterprises. Without criteria it lists the whole catalog.
func (h *Handler) List(c *gin.Context) {
	h.query(c, search.ScopeHome)
}

// Search handles GET /search. Without criteria it returns an empty list.
func (h *Handler) Search(c *gin.Context) {
	h.query(c, search.ScopeSearch)
}

func (h *Handler) query(c *gin.Context, scope search.Scope) {
	list, err := h.engine.Search(c.Request.Context(), scope, criteriaFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /enterprises/:id.
func (h *Handler) Get(c *gin.Context) {
	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()
	e, err := h.reader.GetEnterpriseByID(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, e)
}

// Domains handles GET /domains.
func (h *Handler) Domains(c *gin.Context) {
	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()
	list, err := h.reader.GetDomains(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, list)
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, catalog.ErrNotFound) {
		response.NotFound(c, "enterprise not found")
		return
	}
	h.logger.Warn("catalog request failed", zap.String("path", c.FullPath()), zap.Error(err))
	response.ServiceUnavailable(c, "catalog temporarily unavailable, retry")
}

// criteriaFrom reads ?q= and ?domain_id=, which may repeat or be comma-separated.
func criteriaFrom(c *gin.Context) search.Criteria {
	var ids []string
	for _, v := range c.QueryArray("domain_id") {
		ids = append(ids, strings.Split(v, ",")...)
	}
	return search.Criteria{Text: c.Query("q"), DomainIDs: ids}.Normalize()
}
