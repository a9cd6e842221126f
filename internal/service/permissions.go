package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ournewbridge/directory/internal/directory"
	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/repository"
)

// PermissionService administers admin role assignments. Every operation is
// super-admin only and database-backed.
type PermissionService struct {
	db          repository.DBTX
	assignments repository.AssignmentRepository
	accounts    repository.AccountRepository
	store       directory.Store
	logger      *slog.Logger
}

// NewPermissionService creates a PermissionService. db may be nil in file mode.
func NewPermissionService(db repository.DBTX, assignments repository.AssignmentRepository, accounts repository.AccountRepository, store directory.Store, logger *slog.Logger) *PermissionService {
	return &PermissionService{db: db, assignments: assignments, accounts: accounts, store: store, logger: logger}
}

// LocationOption is a pickable resource location within a city.
type LocationOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CityOption is a pickable city for scoping a grant.
type CityOption struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// PermissionOverview is everything the management screen needs in one shot:
// current grants plus the selectable users, cities and locations.
type PermissionOverview struct {
	Assignments     []domain.AdminRoleAssignment `json:"assignments"`
	Users           []domain.KnownUser           `json:"users"`
	Cities          []CityOption                 `json:"cities"`
	LocationsByCity map[string][]LocationOption  `json:"locationsByCity"`
}

// Overview returns all assignments together with the option lists for
// creating new ones.
func (s *PermissionService) Overview(ctx context.Context, a domain.AdminAccess) (*PermissionOverview, error) {
	if !a.IsSuperAdmin {
		return nil, domain.ErrForbidden("super admin access required")
	}
	if s.db == nil {
		return nil, domain.ErrStoreUnavailable("permission management")
	}

	assignments, err := s.assignments.List(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list assignments", err)
	}

	users, err := s.knownUsers(ctx)
	if err != nil {
		return nil, err
	}

	cities, err := s.store.ListCities(ctx)
	if err != nil {
		return nil, domain.ErrInternal("list cities", err)
	}

	overview := &PermissionOverview{
		Assignments:     assignments,
		Users:           users,
		Cities:          make([]CityOption, 0, len(cities)),
		LocationsByCity: make(map[string][]LocationOption, len(cities)),
	}
	for _, city := range cities {
		overview.Cities = append(overview.Cities, CityOption{Slug: city.Slug, Name: city.Name})
		options := make([]LocationOption, 0, len(city.Resources))
		for _, res := range city.Resources {
			options = append(options, LocationOption{ID: res.ExternalID, Label: res.Name})
		}
		sort.Slice(options, func(i, j int) bool { return options[i].Label < options[j].Label })
		overview.LocationsByCity[city.Slug] = options
	}
	return overview, nil
}

// knownUsers merges registered accounts with emails already holding a grant.
func (s *PermissionService) knownUsers(ctx context.Context) ([]domain.KnownUser, error) {
	accounts, err := s.accounts.List(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list accounts", err)
	}
	granted, err := s.assignments.DistinctEmails(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list granted emails", err)
	}

	seen := make(map[string]bool, len(accounts))
	users := make([]domain.KnownUser, 0, len(accounts))
	for _, account := range accounts {
		email := domain.NormalizeEmail(account.Email)
		if seen[email] {
			continue
		}
		seen[email] = true
		user := domain.KnownUser{Email: email}
		if account.Name != "" {
			name := account.Name
			user.Name = &name
		}
		users = append(users, user)
	}
	for _, email := range granted {
		email = domain.NormalizeEmail(email)
		if seen[email] {
			continue
		}
		seen[email] = true
		users = append(users, domain.KnownUser{Email: email})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// CreateGrantInput is a request to grant a role to a user.
type CreateGrantInput struct {
	UserEmail  string `json:"userEmail"`
	Role       string `json:"role"`
	CitySlug   string `json:"citySlug"`
	LocationID string `json:"locationId"`
}

// CreateGrant validates and stores one role assignment. The target must be a
// known user; scope columns are derived from the role, never taken from the
// caller directly.
func (s *PermissionService) CreateGrant(ctx context.Context, a domain.AdminAccess, input CreateGrantInput) (*domain.AdminRoleAssignment, error) {
	if !a.IsSuperAdmin {
		return nil, domain.ErrForbidden("super admin access required")
	}
	if s.db == nil {
		return nil, domain.ErrStoreUnavailable("permission management")
	}

	email := domain.NormalizeEmail(input.UserEmail)
	if email == "" {
		return nil, domain.ErrValidation("userEmail is required")
	}
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, domain.ErrValidation("invalid role: " + input.Role)
	}

	known, err := s.isKnownUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, domain.ErrValidation("user must sign in at least once before receiving a role")
	}

	scope := domain.ScopeForRole(role)
	var citySlug, locationID *string

	if scope == domain.ScopeCity || scope == domain.ScopeLocation {
		slug := strings.ToLower(strings.TrimSpace(input.CitySlug))
		if slug == "" {
			return nil, domain.ErrValidation("citySlug is required for this role")
		}
		city, err := s.store.FindCity(ctx, slug)
		if err != nil {
			return nil, domain.ErrInternal("find city", err)
		}
		if city == nil {
			return nil, domain.ErrNotFound("city", slug)
		}
		citySlug = &slug

		if scope == domain.ScopeLocation {
			locID := strings.TrimSpace(input.LocationID)
			if locID == "" {
				return nil, domain.ErrValidation("locationId is required for this role")
			}
			if !cityHasLocation(city, locID) {
				return nil, domain.ErrValidation("location does not exist in the selected city")
			}
			locationID = &locID
		}
	}

	exists, err := s.assignments.Exists(ctx, s.db, email, role, scope, citySlug, locationID)
	if err != nil {
		return nil, domain.ErrInternal("check existing assignment", err)
	}
	if exists {
		return nil, domain.ErrConflict("this permission already exists")
	}

	assignment := &domain.AdminRoleAssignment{
		ID:         uuid.New(),
		UserEmail:  email,
		Role:       role,
		ScopeType:  scope,
		CitySlug:   citySlug,
		LocationID: locationID,
	}
	if err := s.assignments.Insert(ctx, s.db, assignment); err != nil {
		return nil, domain.ErrInternal("insert assignment", err)
	}

	s.logger.Info("admin role granted",
		"assignment_id", assignment.ID,
		"user_email", assignment.UserEmail,
		"role", assignment.Role,
		"scope_type", assignment.ScopeType,
	)
	return assignment, nil
}

// DeleteGrant removes one role assignment by id.
func (s *PermissionService) DeleteGrant(ctx context.Context, a domain.AdminAccess, id uuid.UUID) error {
	if !a.IsSuperAdmin {
		return domain.ErrForbidden("super admin access required")
	}
	if s.db == nil {
		return domain.ErrStoreUnavailable("permission management")
	}
	if err := s.assignments.Delete(ctx, s.db, id); err != nil {
		return domain.ErrInternal("delete assignment", err)
	}
	s.logger.Info("admin role revoked", "assignment_id", id)
	return nil
}

func (s *PermissionService) isKnownUser(ctx context.Context, email string) (bool, error) {
	account, err := s.accounts.FindByEmail(ctx, s.db, email)
	if err != nil {
		return false, domain.ErrInternal("find account", err)
	}
	if account != nil {
		return true, nil
	}
	granted, err := s.assignments.DistinctEmails(ctx, s.db)
	if err != nil {
		return false, domain.ErrInternal("list granted emails", err)
	}
	for _, existing := range granted {
		if domain.NormalizeEmail(existing) == email {
			return true, nil
		}
	}
	return false, nil
}

func cityHasLocation(city *domain.City, externalID string) bool {
	for _, res := range city.Resources {
		if res.ExternalID == externalID {
			return true
		}
	}
	return false
}
