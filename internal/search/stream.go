package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/businessbook/directory/internal/models"
)

// DefaultQuietPeriod is how long input must settle before a query runs.
const DefaultQuietPeriod = 500 * time.Millisecond

// Timer is a scheduled call that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. Tests substitute a manual scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemScheduler schedules on the runtime timer.
var SystemScheduler Scheduler = systemScheduler{}

// Result is the outcome of one executed query.
type Result struct {
	Seq         uint64              `json:"seq"`
	Criteria    Criteria            `json:"criteria"`
	Enterprises []models.Enterprise `json:"enterprises"`
	Err         error               `json:"-"`
}

// StreamConfig configures a Stream.
type StreamConfig struct {
	Scope       Scope
	QuietPeriod time.Duration
	Scheduler   Scheduler
	// OnResult receives every applied result, in sequence order. It runs with
	// the stream locked and must not call back into the Stream.
	OnResult func(Result)
	Logger   *zap.Logger
}

// Stream is one logical query stream, e.g. one search box. Input is debounced;
// every executed query takes the next sequence number; a completed query is
// applied only if no later query has been issued since. Superseded results
// are dropped, never aborted.
type Stream struct {
	engine *Engine
	cfg    StreamConfig

	mu       sync.Mutex
	timer    Timer
	gen      uint64 // bumped on every input; a fired timer with an old gen is ignored
	issued   uint64
	last     Criteria
	current  Result
	closed   bool
	inflight int        // issued queries that have not returned yet
	idle     *sync.Cond // signalled when inflight drops to zero
}

// NewStream creates a stream answering through engine.
func NewStream(engine *Engine, cfg StreamConfig) *Stream {
	if cfg.QuietPeriod <= 0 {
		cfg.QuietPeriod = DefaultQuietPeriod
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = SystemScheduler
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Scope == "" {
		cfg.Scope = ScopeSearch
	}
	s := &Stream{engine: engine, cfg: cfg}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Update records new input and restarts the quiet period. Only the last
// input of a burst is executed.
func (s *Stream) Update(c Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil && s.timer.Stop() {
		debounceResets.Inc()
	}
	s.gen++
	s.last = c
	gen := s.gen
	s.timer = s.cfg.Scheduler.AfterFunc(s.cfg.QuietPeriod, func() { s.fire(gen) })
}

// Issue executes c now, cancelling any pending debounced input. It returns
// the sequence number assigned, or 0 if the stream is closed.
func (s *Stream) Issue(c Criteria) uint64 {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	s.cancelPendingLocked()
	s.last = c
	seq := s.issueLocked()
	s.mu.Unlock()

	go s.run(seq, c)
	return seq
}

// Refresh re-executes the last input now, e.g. after the catalog changed.
func (s *Stream) Refresh() uint64 {
	s.mu.Lock()
	c := s.last
	s.mu.Unlock()
	return s.Issue(c)
}

// Current returns the last applied result.
func (s *Stream) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Issued returns the highest sequence number issued so far.
func (s *Stream) Issued() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// Close stops pending input and drops every result still in flight.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelPendingLocked()
}

// Wait blocks until no issued query is in flight. Queries issued while it
// waits are waited for too. Pending debounced input is not.
func (s *Stream) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.inflight > 0 {
		s.idle.Wait()
	}
}

func (s *Stream) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	c := s.last
	seq := s.issueLocked()
	s.mu.Unlock()

	s.run(seq, c)
}

func (s *Stream) cancelPendingLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Stream) issueLocked() uint64 {
	s.issued++
	s.inflight++
	queriesIssued.WithLabelValues(string(s.cfg.Scope)).Inc()
	return s.issued
}

func (s *Stream) run(seq uint64, c Criteria) {
	list, err := s.engine.Search(context.Background(), s.cfg.Scope, c)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(Result{Seq: seq, Criteria: c.Normalize(), Enterprises: list, Err: err})
	if s.inflight--; s.inflight == 0 {
		s.idle.Broadcast()
	}
}

func (s *Stream) applyLocked(r Result) {
	if s.closed || r.Seq != s.issued {
		resultsDiscarded.WithLabelValues(string(s.cfg.Scope)).Inc()
		s.cfg.Logger.Debug("search result dropped",
			zap.Uint64("seq", r.Seq), zap.Uint64("latest", s.issued), zap.Error(ErrStaleResult))
		return
	}
	outcome := "ok"
	if r.Err != nil {
		outcome = "error"
	}
	resultsApplied.WithLabelValues(string(s.cfg.Scope), outcome).Inc()
	s.current = r
	if s.cfg.OnResult != nil {
		s.cfg.OnResult(r)
	}
}
