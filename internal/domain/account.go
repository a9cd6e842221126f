package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserAccount is a tracked sign-in identity. Accounts are the pool of "known
// users" that permission grants may reference.
type UserAccount struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// KnownUser is an email that may receive a permission grant, with the display
// name when one is tracked.
type KnownUser struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
}
