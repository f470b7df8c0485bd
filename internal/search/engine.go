package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/businessbook/directory/internal/models"
)

var (
	// ErrQueryFailed wraps any backend failure of a query.
	ErrQueryFailed = errors.New("query failed")
	// ErrStaleResult marks a result superseded by a later query. It is never
	// returned to callers; streams count and drop it.
	ErrStaleResult = errors.New("stale result discarded")
)

// Backend is the part of the data source the engine queries.
type Backend interface {
	GetEnterprises(ctx context.Context) ([]models.Enterprise, error)
	SearchEnterprises(ctx context.Context, query string, domainIDs []string) ([]models.Enterprise, error)
}

// Engine runs one-shot queries with the empty-query policy of a scope.
type Engine struct {
	backend Backend
	timeout time.Duration
	logger  *zap.Logger
}

// NewEngine creates an engine. A positive timeout bounds every backend call.
func NewEngine(backend Backend, timeout time.Duration, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{backend: backend, timeout: timeout, logger: logger}
}

// Search answers c under scope. An empty search-scope query returns an empty
// result without calling the backend; an empty home-scope query lists everything.
func (e *Engine) Search(ctx context.Context, scope Scope, c Criteria) ([]models.Enterprise, error) {
	c = c.Normalize()
	if c.IsEmpty() && scope == ScopeSearch {
		return []models.Enterprise{}, nil
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var (
		list []models.Enterprise
		err  error
	)
	if c.IsEmpty() {
		list, err = e.backend.GetEnterprises(ctx)
	} else {
		list, err = e.backend.SearchEnterprises(ctx, c.Text, c.DomainIDs)
	}
	if err != nil {
		e.logger.Debug("query failed", zap.String("scope", string(scope)), zap.String("text", c.Text), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if list == nil {
		list = []models.Enterprise{}
	}
	return list, nil
}
