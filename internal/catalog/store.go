package catalog

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/businessbook/directory/internal/models"
)

var (
	// ErrNotFound is returned when an enterprise id is not in the store.
	ErrNotFound = errors.New("enterprise not found")
)

// snapshot is immutable once published.
type snapshot struct {
	enterprises []models.Enterprise
	index       map[string]int
	domains     []models.Domain
	version     uint64
}

func newSnapshot(enterprises []models.Enterprise, domains []models.Domain, version uint64) *snapshot {
	s := &snapshot{
		enterprises: enterprises,
		index:       make(map[string]int, len(enterprises)),
		domains:     domains,
		version:     version,
	}
	for i, e := range enterprises {
		s.index[e.ID] = i
	}
	return s
}

// Store is the single owner of the enterprise and domain collections.
// Writers copy the current snapshot, modify the copy and publish it; readers
// never block and always get deep copies, so a result already handed out is
// never changed by a later write.
type Store struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[snapshot]
}

// NewStore creates a store holding c. c must already be valid.
func NewStore(c Catalog) *Store {
	s := &Store{}
	s.snap.Store(newSnapshot(cloneEnterprises(c.Enterprises), cloneDomains(c.Domains), 0))
	return s
}

// Open validates c and builds a store from it.
func Open(c Catalog) (*Store, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return NewStore(c), nil
}

// GetAll returns every enterprise in catalog order.
func (s *Store) GetAll() []models.Enterprise {
	return cloneEnterprises(s.snap.Load().enterprises)
}

// GetByID returns the enterprise with id.
func (s *Store) GetByID(id string) (models.Enterprise, error) {
	snap := s.snap.Load()
	i, ok := snap.index[id]
	if !ok {
		return models.Enterprise{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snap.enterprises[i].Clone(), nil
}

// GetDomains returns every domain.
func (s *Store) GetDomains() []models.Domain {
	return cloneDomains(s.snap.Load().domains)
}

// Suspend marks the enterprise INACTIVE and not active. Suspending an already
// inactive enterprise succeeds without publishing a new version.
func (s *Store) Suspend(id string) (models.Enterprise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	i, ok := cur.index[id]
	if !ok {
		return models.Enterprise{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e := cur.enterprises[i]; e.Status == models.StatusInactive && !e.IsActive {
		return e.Clone(), nil
	}

	next := make([]models.Enterprise, len(cur.enterprises))
	copy(next, cur.enterprises)
	next[i] = cur.enterprises[i].Suspended()
	s.snap.Store(newSnapshot(next, cur.domains, cur.version+1))
	return next[i].Clone(), nil
}

// Remove deletes the enterprise. Removing an id twice fails with ErrNotFound.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	i, ok := cur.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := make([]models.Enterprise, 0, len(cur.enterprises)-1)
	next = append(next, cur.enterprises[:i]...)
	next = append(next, cur.enterprises[i+1:]...)
	s.snap.Store(newSnapshot(next, cur.domains, cur.version+1))
	return nil
}

// Replace swaps in a whole new catalog.
func (s *Store) Replace(c Catalog) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.snap.Load()
	s.snap.Store(newSnapshot(cloneEnterprises(c.Enterprises), cloneDomains(c.Domains), cur.version+1))
	return nil
}

// Version increases with every published mutation.
func (s *Store) Version() uint64 {
	return s.snap.Load().version
}

// Len returns the number of enterprises.
func (s *Store) Len() int {
	return len(s.snap.Load().enterprises)
}

func cloneEnterprises(in []models.Enterprise) []models.Enterprise {
	out := make([]models.Enterprise, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

func cloneDomains(in []models.Domain) []models.Domain {
	return append(make([]models.Domain, 0, len(in)), in...)
}
