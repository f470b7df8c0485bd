package backend

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/search"
	"github.com/businessbook/directory/internal/traffic"
)

var (
	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "directory_backend_call_duration_seconds",
		Help:    "Duration of backend calls including simulated latency",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5},
	}, []string{"op", "outcome"})
)

// Latency is the simulated delay of each operation.
type Latency map[Op]time.Duration

// DefaultLatency mirrors the delays of the mobile app's mock API.
func DefaultLatency() Latency {
	return Latency{
		OpGetEnterprises:    1000 * time.Millisecond,
		OpGetEnterpriseByID: 1000 * time.Millisecond,
		OpGetDomains:        800 * time.Millisecond,
		OpSearchEnterprises: 1500 * time.Millisecond,
		OpHinderEnterprise:  1000 * time.Millisecond,
		OpDeleteEnterprise:  1000 * time.Millisecond,
		OpGetAllTrafics:     1000 * time.Millisecond,
	}
}

// Scaled multiplies every delay by factor. A zero factor removes latency.
func (l Latency) Scaled(factor float64) Latency {
	out := make(Latency, len(l))
	for op, d := range l {
		out[op] = time.Duration(float64(d) * factor)
	}
	return out
}

// Fault may reject an operation before it touches the store. Returning nil lets it run.
type Fault func(op Op) error

// Simulated serves DataSource from a catalog.Store after a simulated delay.
type Simulated struct {
	store   *catalog.Store
	traffic traffic.Counter
	latency Latency
	fault   Fault
	logger  *zap.Logger
}

// Option configures a Simulated backend.
type Option func(*Simulated)

// WithLatency overrides the per-operation delays.
func WithLatency(l Latency) Option { return func(s *Simulated) { s.latency = l } }

// WithFault installs a fault hook.
func WithFault(f Fault) Option { return func(s *Simulated) { s.fault = f } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(s *Simulated) { s.logger = l } }

// NewSimulated creates a backend over store. Searches are counted in counter.
func NewSimulated(store *catalog.Store, counter traffic.Counter, opts ...Option) *Simulated {
	s := &Simulated{
		store:   store,
		traffic: counter,
		latency: DefaultLatency(),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// wait applies the fault hook and the delay for op, honouring ctx.
func (s *Simulated) wait(ctx context.Context, op Op) error {
	if s.fault != nil {
		if err := s.fault(op); err != nil {
			return err
		}
	}
	d := s.latency[op]
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Simulated) observe(op Op, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Debug("backend call failed", zap.String("op", string(op)), zap.Error(err))
	}
	callDuration.WithLabelValues(string(op), outcome).Observe(time.Since(start).Seconds())
}

// GetEnterprises lists every enterprise.
func (s *Simulated) GetEnterprises(ctx context.Context) (list []models.Enterprise, err error) {
	defer func(start time.Time) { s.observe(OpGetEnterprises, start, err) }(time.Now())
	if err = s.wait(ctx, OpGetEnterprises); err != nil {
		return nil, err
	}
	return s.store.GetAll(), nil
}

// GetEnterpriseByID fails with catalog.ErrNotFound for an unknown id.
func (s *Simulated) GetEnterpriseByID(ctx context.Context, id string) (e models.Enterprise, err error) {
	defer func(start time.Time) { s.observe(OpGetEnterpriseByID, start, err) }(time.Now())
	if err = s.wait(ctx, OpGetEnterpriseByID); err != nil {
		return models.Enterprise{}, err
	}
	return s.store.GetByID(id)
}

// GetDomains lists the business domains.
func (s *Simulated) GetDomains(ctx context.Context) (list []models.Domain, err error) {
	defer func(start time.Time) { s.observe(OpGetDomains, start, err) }(time.Now())
	if err = s.wait(ctx, OpGetDomains); err != nil {
		return nil, err
	}
	return s.store.GetDomains(), nil
}

// SearchEnterprises filters a snapshot taken after the delay, so a mutation
// that completed during the delay is visible in the result.
func (s *Simulated) SearchEnterprises(ctx context.Context, query string, domainIDs []string) (list []models.Enterprise, err error) {
	defer func(start time.Time) { s.observe(OpSearchEnterprises, start, err) }(time.Now())
	if err = s.wait(ctx, OpSearchEnterprises); err != nil {
		return nil, err
	}
	if s.traffic != nil {
		if terr := s.traffic.RecordSearch(ctx); terr != nil {
			s.logger.Warn("record search failed", zap.Error(terr))
		}
	}
	return search.Filter(s.store.GetAll(), search.Criteria{Text: query, DomainIDs: domainIDs}), nil
}

// HinderEnterprise suspends the enterprise and returns its new state.
func (s *Simulated) HinderEnterprise(ctx context.Context, id string) (e models.Enterprise, err error) {
	defer func(start time.Time) { s.observe(OpHinderEnterprise, start, err) }(time.Now())
	if err = s.wait(ctx, OpHinderEnterprise); err != nil {
		return models.Enterprise{}, err
	}
	return s.store.Suspend(id)
}

// DeleteEnterprise removes the enterprise from the catalog.
func (s *Simulated) DeleteEnterprise(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.observe(OpDeleteEnterprise, start, err) }(time.Now())
	if err = s.wait(ctx, OpDeleteEnterprise); err != nil {
		return err
	}
	return s.store.Remove(id)
}

// GetAllTrafics returns the traffic aggregate, or zeros without a counter.
func (s *Simulated) GetAllTrafics(ctx context.Context) (st models.TrafficStats, err error) {
	defer func(start time.Time) { s.observe(OpGetAllTrafics, start, err) }(time.Now())
	if err = s.wait(ctx, OpGetAllTrafics); err != nil {
		return models.TrafficStats{}, err
	}
	if s.traffic == nil {
		return models.TrafficStats{}, nil
	}
	return s.traffic.Stats(ctx)
}
