package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered customer.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Tel          string    `json:"tel,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountPublic is Account without sensitive fields for API responses.
type AccountPublic struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Tel       string    `json:"tel,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts Account to AccountPublic.
func (a *Account) ToPublic() AccountPublic {
	return AccountPublic{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Tel:       a.Tel,
		CreatedAt: a.CreatedAt,
	}
}
