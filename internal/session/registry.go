package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL matches the default token lifetime.
const DefaultTTL = 24 * time.Hour

// EvictFunc is called after a session leaves the registry.
type EvictFunc func(id uuid.UUID)

type entry struct {
	state     *State
	expiresAt time.Time
}

// Registry holds the live session of every connected client (thread-safe).
// A session expires together with the token issued for it; nothing is persisted.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]entry
	adminMarker string
	ttl         time.Duration
	now         func() time.Time
	onEvict     []EvictFunc
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTTL sets how long a session lives after creation.
func WithTTL(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry. adminMarker is passed to every new State.
func NewRegistry(adminMarker string, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions:    make(map[uuid.UUID]entry),
		adminMarker: adminMarker,
		ttl:         DefaultTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnEvict registers fn to run for every dropped or expired session.
func (r *Registry) OnEvict(fn EvictFunc) {
	r.mu.Lock()
	r.onEvict = append(r.onEvict, fn)
	r.mu.Unlock()
}

// Create starts a new Unauthenticated session.
func (r *Registry) Create() (uuid.UUID, *State) {
	id := uuid.New()
	st := NewState(r.adminMarker)
	r.mu.Lock()
	r.sessions[id] = entry{state: st, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return id, st
}

// Get returns the session for id. Expired sessions are not returned.
func (r *Registry) Get(id uuid.UUID) (*State, bool) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !r.now().Before(e.expiresAt) {
		r.Drop(id)
		return nil, false
	}
	return e.state, true
}

// Drop forgets a session and runs the evict hooks.
func (r *Registry) Drop(id uuid.UUID) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	hooks := r.onEvict
	r.mu.Unlock()
	if !ok {
		return
	}
	for _, fn := range hooks {
		fn(id)
	}
}

// Sweep removes every expired session and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()
	var expired []uuid.UUID
	r.mu.Lock()
	for id, e := range r.sessions {
		if !now.Before(e.expiresAt) {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	hooks := r.onEvict
	r.mu.Unlock()

	for _, id := range expired {
		for _, fn := range hooks {
			fn(id)
		}
	}
	return len(expired)
}

// Len returns the number of sessions held, expired or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
