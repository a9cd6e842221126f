package domain

import "strings"

// Role is an admin role grantable to a principal.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleCityAdmin  Role = "city_admin"
	RoleLocalAdmin Role = "local_admin"
)

// ScopeType is the breadth of an admin grant.
type ScopeType string

const (
	ScopeGlobal   ScopeType = "global"
	ScopeCity     ScopeType = "city"
	ScopeLocation ScopeType = "location"
)

// ParseRole returns the role and whether the string names a known role.
// Unknown values are dropped by callers rather than treated as errors, so a
// store containing stray data cannot break access resolution.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleSuperAdmin, RoleCityAdmin, RoleLocalAdmin:
		return Role(s), true
	}
	return "", false
}

// ParseScopeType returns the scope type and whether the string names a known one.
func ParseScopeType(s string) (ScopeType, bool) {
	switch ScopeType(s) {
	case ScopeGlobal, ScopeCity, ScopeLocation:
		return ScopeType(s), true
	}
	return "", false
}

// ScopeForRole derives the scope type implied by a role. Callers never supply
// the scope type directly.
func ScopeForRole(role Role) ScopeType {
	switch role {
	case RoleSuperAdmin:
		return ScopeGlobal
	case RoleCityAdmin:
		return ScopeCity
	default:
		return ScopeLocation
	}
}

// LocationScope identifies one resource within one city.
type LocationScope struct {
	CitySlug   string `json:"city_slug"`
	LocationID string `json:"location_id"`
}

// AdminAccess is the resolved authorization snapshot for one principal.
// It is derived per request and never persisted.
type AdminAccess struct {
	IsAdmin        bool            `json:"is_admin"`
	IsSuperAdmin   bool            `json:"is_super_admin"`
	Roles          []Role          `json:"roles"`
	CitySlugs      []string        `json:"city_slugs"`
	LocationScopes []LocationScope `json:"location_scopes"`
}

// HasRole reports whether the access includes the given role.
func (a AdminAccess) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasCitySlug reports whether the city appears in the derived city set.
// Presence alone does not imply city-wide management rights.
func (a AdminAccess) HasCitySlug(slug string) bool {
	for _, s := range a.CitySlugs {
		if s == slug {
			return true
		}
	}
	return false
}

// HasLocationScope reports whether the exact (city, location) pair is granted.
func (a AdminAccess) HasLocationScope(citySlug, locationID string) bool {
	for _, s := range a.LocationScopes {
		if s.CitySlug == citySlug && s.LocationID == locationID {
			return true
		}
	}
	return false
}

// SuperAdminAccess is the full-rights snapshot used for allow-list principals
// and password-flow sessions.
func SuperAdminAccess() AdminAccess {
	return AdminAccess{
		IsAdmin:      true,
		IsSuperAdmin: true,
		Roles:        []Role{RoleSuperAdmin},
	}
}

// NormalizeEmail trims and lowercases an email so it can be used as an
// identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
