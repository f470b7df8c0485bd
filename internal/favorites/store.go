// Package favorites keeps each session's bookmarked enterprises.
package favorites

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/businessbook/directory/internal/models"
)

// Catalog resolves enterprise ids. *catalog.Store satisfies it.
type Catalog interface {
	GetByID(id string) (models.Enterprise, error)
}

// Store is a per-session ordered set of enterprise ids (thread-safe).
type Store struct {
	mu      sync.RWMutex
	lists   map[uuid.UUID][]string
	catalog Catalog
}

// NewStore creates an empty favorites store over catalog.
func NewStore(catalog Catalog) *Store {
	return &Store{lists: make(map[uuid.UUID][]string), catalog: catalog}
}

// Add bookmarks enterpriseID. Adding twice keeps the original position.
// Unknown enterprises fail with the catalog's not-found error.
func (s *Store) Add(sessionID uuid.UUID, enterpriseID string) error {
	if _, err := s.catalog.GetByID(enterpriseID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.lists[sessionID] {
		if id == enterpriseID {
			return nil
		}
	}
	s.lists[sessionID] = append(s.lists[sessionID], enterpriseID)
	return nil
}

// Remove drops enterpriseID and reports whether it was present.
func (s *Store) Remove(sessionID uuid.UUID, enterpriseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[sessionID]
	for i, id := range list {
		if id == enterpriseID {
			s.lists[sessionID] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// List resolves the bookmarks in insertion order. Enterprises removed from the
// catalog since are skipped.
func (s *Store) List(sessionID uuid.UUID) []models.Enterprise {
	s.mu.RLock()
	ids := append([]string(nil), s.lists[sessionID]...)
	s.mu.RUnlock()

	out := make([]models.Enterprise, 0, len(ids))
	for _, id := range ids {
		e, err := s.catalog.GetByID(id)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Clear forgets every bookmark of a session.
func (s *Store) Clear(sessionID uuid.UUID) {
	s.mu.Lock()
	delete(s.lists, sessionID)
	s.mu.Unlock()
}
