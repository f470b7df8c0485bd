package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/navigation"
)

// DefaultAdminMarker is the identifier that logs in as administrator.
// It is a placeholder with no credential check behind it.
const DefaultAdminMarker = "admin@example.com"

var (
	// ErrValidation is returned by Login when identifier or secret is empty.
	ErrValidation = errors.New("identifier and secret are required")
)

// Identity describes who holds the session.
type Identity struct {
	Identifier  string `json:"identifier,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Observer is notified with the new role after every successful transition.
type Observer func(role models.Role)

// State is the role state machine of one client session.
// Unauthenticated is initial; Logout always returns there.
type State struct {
	mu          sync.RWMutex
	role        models.Role
	identity    Identity
	adminMarker string
	observers   []Observer
}

// NewState creates a session in the Unauthenticated state.
func NewState(adminMarker string) *State {
	if adminMarker == "" {
		adminMarker = DefaultAdminMarker
	}
	return &State{role: models.RoleUnauthenticated, adminMarker: adminMarker}
}

// Observe registers fn for role changes.
func (s *State) Observe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Role returns the current role.
func (s *State) Role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Identity returns the current identity; empty for visitors and after logout.
func (s *State) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Screens returns the screens the current role may reach.
func (s *State) Screens() []models.Screen {
	return navigation.ScreensFor(s.Role())
}

// EnterAsVisitor moves the session to Visitor. It always succeeds.
func (s *State) EnterAsVisitor() models.Role {
	s.transition(models.RoleVisitor, Identity{})
	return models.RoleVisitor
}

// Login moves the session to Customer, or to Admin when identifier matches the
// admin marker. Empty input fails with ErrValidation and leaves state untouched.
func (s *State) Login(identifier, secret string) (models.Role, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return s.Role(), ErrValidation
	}
	role := models.RoleCustomer
	if strings.EqualFold(identifier, s.adminMarker) {
		role = models.RoleAdmin
	}
	s.transition(role, Identity{Identifier: identifier})
	return role, nil
}

// Logout resets the session to Unauthenticated. It always succeeds.
func (s *State) Logout() {
	s.transition(models.RoleUnauthenticated, Identity{})
}

// SetDisplayName annotates a logged-in identity. Ignored when no one is logged in.
func (s *State) SetDisplayName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity.Identifier == "" {
		return
	}
	s.identity.DisplayName = name
}

func (s *State) transition(role models.Role, id Identity) {
	s.mu.Lock()
	s.role = role
	s.identity = id
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(role)
	}
}
