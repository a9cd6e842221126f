package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminRoleAssignment grants one principal a role at one scope. Assignments
// are immutable; a role change is a delete followed by a new grant.
type AdminRoleAssignment struct {
	ID         uuid.UUID `json:"id"`
	UserEmail  string    `json:"user_email"`
	Role       Role      `json:"role"`
	ScopeType  ScopeType `json:"scope_type"`
	CitySlug   *string   `json:"city_slug"`
	LocationID *string   `json:"location_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
