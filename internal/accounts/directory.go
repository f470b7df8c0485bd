// Package accounts keeps registered customer accounts in memory.
package accounts

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/pkg/utils"
)

var (
	ErrInvalidInput     = errors.New("invalid registration")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("email already registered")
)

// Registration is the sign-up form. Passwords need at least 6 characters.
type Registration struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Tel             string `json:"tel" binding:"required"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

func (r Registration) normalize() Registration {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = emailKey(r.Email)
	r.Tel = strings.TrimSpace(r.Tel)
	return r
}

// validationError turns a binding failure into ErrPasswordMismatch or
// ErrInvalidInput naming the first offending field.
func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fe := fields[0]
	switch {
	case fe.Field() == "ConfirmPassword" && fe.Tag() == "eqfield":
		return ErrPasswordMismatch
	case fe.Tag() == "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, strings.ToLower(fe.Field()))
	case fe.Tag() == "email":
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	case fe.Tag() == "min":
		return fmt.Errorf("%w: %s must be at least %s characters", ErrInvalidInput, strings.ToLower(fe.Field()), fe.Param())
	default:
		return fmt.Errorf("%w: %s fails %s", ErrInvalidInput, strings.ToLower(fe.Field()), fe.Tag())
	}
}

// Directory holds accounts keyed by lowercased email (thread-safe).
type Directory struct {
	mu      sync.RWMutex
	byEmail map[string]*models.Account
	hasher  utils.PasswordHasher
	now     func() time.Time
}

// NewDirectory creates an empty directory.
func NewDirectory(hasher utils.PasswordHasher) *Directory {
	return &Directory{byEmail: make(map[string]*models.Account), hasher: hasher, now: time.Now}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. The form is validated against its binding
// tags after trimming, so it is safe to call outside of HTTP.
func (d *Directory) Register(r Registration) (models.Account, error) {
	r = r.normalize()
	if err := binding.Validator.ValidateStruct(r); err != nil {
		return models.Account{}, validationError(err)
	}
	key := r.Email

	hash, err := d.hasher.Hash(r.Password)
	if err != nil {
		return models.Account{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byEmail[key]; ok {
		return models.Account{}, ErrEmailTaken
	}
	a := &models.Account{
		ID:           uuid.New(),
		Username:     r.Username,
		Email:        key,
		Tel:          r.Tel,
		PasswordHash: hash,
		CreatedAt:    d.now().UTC(),
	}
	d.byEmail[key] = a
	return *a, nil
}

// Authenticate returns the account for email when password verifies.
func (d *Directory) Authenticate(email, password string) (models.Account, bool) {
	d.mu.RLock()
	a, ok := d.byEmail[emailKey(email)]
	d.mu.RUnlock()
	if !ok || !d.hasher.Check(password, a.PasswordHash) {
		return models.Account{}, false
	}
	return *a, true
}

// Len returns the number of accounts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byEmail)
}
