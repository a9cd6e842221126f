// Package access resolves a principal's effective admin rights and answers
// authorization questions over them. Resolution happens fresh per request;
// session claims are never authoritative for scoped grants.
package access

import (
	"context"
	"strings"

	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/repository"
)

// Resolver computes AdminAccess snapshots from the static super-admin
// allow-list and the role-assignment store. The store may be absent (file
// mode); resolution then degrades to the allow-list alone.
type Resolver struct {
	allowList   map[string]bool
	db          repository.DBTX
	assignments repository.AssignmentRepository
}

// NewResolver creates a resolver. superAdminEmails is the comma-separated
// allow-list from configuration; db and assignments may be nil when the
// deployment has no role-assignment store.
func NewResolver(superAdminEmails string, db repository.DBTX, assignments repository.AssignmentRepository) *Resolver {
	allowList := make(map[string]bool)
	for _, raw := range strings.Split(superAdminEmails, ",") {
		email := domain.NormalizeEmail(raw)
		if email != "" {
			allowList[email] = true
		}
	}
	return &Resolver{allowList: allowList, db: db, assignments: assignments}
}

// ResolveForEmail computes the effective access for an email identity. An
// empty email yields the no-rights snapshot. The allow-list is unioned in
// before store-derived grants, so allow-list membership always wins.
func (r *Resolver) ResolveForEmail(ctx context.Context, email string) (domain.AdminAccess, error) {
	var base domain.AdminAccess

	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return base, nil
	}

	envSuperAdmin := r.allowList[normalized]

	if r.db == nil || r.assignments == nil {
		if !envSuperAdmin {
			return base, nil
		}
		return domain.SuperAdminAccess(), nil
	}

	rows, err := r.assignments.ListByEmail(ctx, r.db, normalized)
	if err != nil {
		return base, domain.ErrInternal("list role assignments", err)
	}

	return aggregate(envSuperAdmin, rows), nil
}

// SessionUser is a principal as asserted by a previously issued session
// credential. Scoped fields are hints only; a fresh store lookup that grants
// any access takes precedence over them.
type SessionUser struct {
	Email          string
	IsAdmin        bool
	IsSuperAdmin   bool
	Roles          []domain.Role
	CitySlugs      []string
	LocationScopes []domain.LocationScope
}

// ResolveForSession reconciles a session principal with a fresh lookup. A
// session-level super-admin flag (the password flow) short-circuits without
// touching the store; otherwise the store lookup wins whenever it grants
// anything, and only then do filtered session claims apply.
func (r *Resolver) ResolveForSession(ctx context.Context, user SessionUser) (domain.AdminAccess, error) {
	if user.IsSuperAdmin {
		return domain.SuperAdminAccess(), nil
	}

	fresh, err := r.ResolveForEmail(ctx, user.Email)
	if err != nil {
		return domain.AdminAccess{}, err
	}
	if fresh.IsAdmin {
		return fresh, nil
	}

	var roles []domain.Role
	for _, role := range user.Roles {
		if _, ok := domain.ParseRole(string(role)); ok {
			roles = append(roles, role)
		}
	}

	return domain.AdminAccess{
		IsAdmin:        user.IsAdmin || len(roles) > 0,
		IsSuperAdmin:   false,
		Roles:          roles,
		CitySlugs:      user.CitySlugs,
		LocationScopes: user.LocationScopes,
	}, nil
}

// aggregate folds assignment rows into an access snapshot. Rows with role or
// scope strings outside the closed enums are dropped, not rejected; a store
// carrying stray data must not break resolution.
func aggregate(envSuperAdmin bool, rows []domain.AdminRoleAssignment) domain.AdminAccess {
	roleSet := make(map[domain.Role]bool)
	citySet := make(map[string]bool)
	locationSet := make(map[domain.LocationScope]bool)

	if envSuperAdmin {
		roleSet[domain.RoleSuperAdmin] = true
	}

	storeSuperAdmin := false
	for _, row := range rows {
		role, roleOK := domain.ParseRole(string(row.Role))
		scope, scopeOK := domain.ParseScopeType(string(row.ScopeType))

		if roleOK {
			roleSet[role] = true
		}
		if row.Role == domain.RoleSuperAdmin || row.ScopeType == domain.ScopeGlobal {
			storeSuperAdmin = true
		}
		if scopeOK && row.CitySlug != nil && *row.CitySlug != "" {
			citySet[strings.ToLower(*row.CitySlug)] = true
		}
		if scope == domain.ScopeLocation && row.CitySlug != nil && *row.CitySlug != "" && row.LocationID != nil && *row.LocationID != "" {
			locationSet[domain.LocationScope{
				CitySlug:   strings.ToLower(*row.CitySlug),
				LocationID: *row.LocationID,
			}] = true
		}
	}

	var roles []domain.Role
	for _, role := range []domain.Role{domain.RoleSuperAdmin, domain.RoleCityAdmin, domain.RoleLocalAdmin} {
		if roleSet[role] {
			roles = append(roles, role)
		}
	}

	var citySlugs []string
	for slug := range citySet {
		citySlugs = append(citySlugs, slug)
	}

	var locationScopes []domain.LocationScope
	for scope := range locationSet {
		locationScopes = append(locationScopes, scope)
	}

	isSuperAdmin := envSuperAdmin || storeSuperAdmin
	return domain.AdminAccess{
		IsAdmin:        isSuperAdmin || len(roles) > 0,
		IsSuperAdmin:   isSuperAdmin,
		Roles:          roles,
		CitySlugs:      citySlugs,
		LocationScopes: locationScopes,
	}
}
