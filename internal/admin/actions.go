// Package admin holds the moderation actions reserved to administrators.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/models"
)

// ErrPrecondition means an action was reached without the Admin role. Routes
// are gated before they get here, so this is a programming error and panics.
var ErrPrecondition = errors.New("admin role required")

// Backend is the part of the data source the admin screen uses.
type Backend interface {
	GetEnterprises(ctx context.Context) ([]models.Enterprise, error)
	HinderEnterprise(ctx context.Context, id string) (models.Enterprise, error)
	DeleteEnterprise(ctx context.Context, id string) error
	GetAllTrafics(ctx context.Context) (models.TrafficStats, error)
}

// Caller is whoever invokes an action.
type Caller interface {
	Role() models.Role
}

// Notifier is told when the catalog changed so open result lists refresh.
type Notifier interface {
	CatalogChanged(ch catalog.Change)
}

// Dashboard is everything the admin screen shows on open.
type Dashboard struct {
	Enterprises []models.Enterprise `json:"enterprises"`
	Traffic     models.TrafficStats `json:"traffic"`
}

// Actions runs admin operations against the backend.
type Actions struct {
	backend Backend
	notify  Notifier
	timeout time.Duration
	logger  *zap.Logger
}

// NewActions creates admin actions. notify may be nil.
func NewActions(backend Backend, notify Notifier, timeout time.Duration, logger *zap.Logger) *Actions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Actions{backend: backend, notify: notify, timeout: timeout, logger: logger}
}

func (a *Actions) require(who Caller) {
	if role := who.Role(); role != models.RoleAdmin {
		panic(fmt.Errorf("%w: caller has role %q", ErrPrecondition, role))
	}
}

func (a *Actions) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// Suspend marks an enterprise INACTIVE. It is idempotent.
func (a *Actions) Suspend(ctx context.Context, who Caller, id string) (models.Enterprise, error) {
	a.require(who)
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	e, err := a.backend.HinderEnterprise(ctx, id)
	if err != nil {
		return models.Enterprise{}, fmt.Errorf("suspend %s: %w", id, err)
	}
	a.logger.Info("enterprise suspended", zap.String("enterprise_id", id))
	a.changed(catalog.Change{Op: catalog.OpSuspend, ID: id})
	return e, nil
}

// Delete removes an enterprise. Deleting twice fails with not found.
func (a *Actions) Delete(ctx context.Context, who Caller, id string) error {
	a.require(who)
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.backend.DeleteEnterprise(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	a.logger.Info("enterprise deleted", zap.String("enterprise_id", id))
	a.changed(catalog.Change{Op: catalog.OpRemove, ID: id})
	return nil
}

// Traffic returns the aggregated traffic counters.
func (a *Actions) Traffic(ctx context.Context, who Caller) (models.TrafficStats, error) {
	a.require(who)
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, err := a.backend.GetAllTrafics(ctx)
	if err != nil {
		return models.TrafficStats{}, fmt.Errorf("traffic: %w", err)
	}
	return st, nil
}

// Dashboard loads the enterprise list and the traffic counters concurrently.
func (a *Actions) Dashboard(ctx context.Context, who Caller) (Dashboard, error) {
	a.require(who)
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := a.backend.GetEnterprises(gctx)
		if err != nil {
			return fmt.Errorf("enterprises: %w", err)
		}
		d.Enterprises = list
		return nil
	})
	g.Go(func() error {
		st, err := a.backend.GetAllTrafics(gctx)
		if err != nil {
			return fmt.Errorf("traffic: %w", err)
		}
		d.Traffic = st
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return d, nil
}

func (a *Actions) changed(ch catalog.Change) {
	if a.notify != nil {
		a.notify.CatalogChanged(ch)
	}
}
