package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/repository"
)

// stubDB satisfies repository.DBTX as a non-nil marker. The in-memory fakes
// below ignore it.
type stubDB struct{}

func (stubDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) { return nil, nil }
func (stubDB) QueryRow(context.Context, string, ...interface{}) pgx.Row        { return nil }

// memStore is an in-memory directory.Store with an injectable upsert failure.
type memStore struct {
	mu        sync.Mutex
	cities    map[string]*domain.City
	upsertErr error
}

func newMemStore(slugs ...string) *memStore {
	s := &memStore{cities: make(map[string]*domain.City)}
	for _, slug := range slugs {
		s.cities[slug] = &domain.City{Slug: slug, Name: slug, State: "IA", CenterLat: 42, CenterLng: -93}
	}
	return s
}

func (s *memStore) Mode() string { return "memory" }

func (s *memStore) ListCities(context.Context) ([]domain.City, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.City, 0, len(s.cities))
	for _, city := range s.cities {
		out = append(out, *city)
	}
	return out, nil
}

func (s *memStore) FindCity(_ context.Context, slug string) (*domain.City, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	city, ok := s.cities[slug]
	if !ok {
		return nil, nil
	}
	copied := *city
	return &copied, nil
}

func (s *memStore) CreateCity(_ context.Context, city domain.City) (*domain.City, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cities[city.Slug]; ok {
		return nil, domain.ErrConflict("city already exists: " + city.Slug)
	}
	s.cities[city.Slug] = &city
	return &city, nil
}

func (s *memStore) UpsertResource(_ context.Context, citySlug string, category domain.Category, externalID string, fields domain.ResourceFields) (*domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	city, ok := s.cities[citySlug]
	if !ok {
		return nil, domain.ErrNotFound("city", citySlug)
	}

	resource := domain.Resource{
		ExternalID:         externalID,
		CitySlug:           citySlug,
		Category:           category,
		Name:               fields.Name,
		Address:            fields.Address,
		Lat:                fields.Lat,
		Lng:                fields.Lng,
		Hours:              fields.Hours,
		DaysOpen:           fields.DaysOpen,
		Phone:              fields.Phone,
		Website:            fields.Website,
		RequiresID:         fields.RequiresID,
		WalkIn:             fields.WalkIn,
		Notes:              fields.Notes,
		AvailabilityStatus: fields.AvailabilityStatus,
		LastAvailableAt:    fields.LastAvailableAt,
	}
	for i, existing := range city.Resources {
		if existing.ExternalID == externalID && existing.Category == category {
			city.Resources[i] = resource
			return &resource, nil
		}
	}
	city.Resources = append(city.Resources, resource)
	return &resource, nil
}

func (s *memStore) DeleteResource(_ context.Context, citySlug string, category domain.Category, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	city, ok := s.cities[citySlug]
	if !ok {
		return domain.ErrNotFound("city", citySlug)
	}
	for i, existing := range city.Resources {
		if existing.ExternalID == externalID && existing.Category == category {
			city.Resources = append(city.Resources[:i], city.Resources[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound("resource", externalID)
}

func (s *memStore) resource(citySlug, externalID string) *domain.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	city, ok := s.cities[citySlug]
	if !ok {
		return nil
	}
	for i := range city.Resources {
		if city.Resources[i].ExternalID == externalID {
			return &city.Resources[i]
		}
	}
	return nil
}

// memUpdates is an in-memory repository.UpdateRequestRepository.
type memUpdates struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.ResourceUpdateRequest
}

func newMemUpdates() *memUpdates {
	return &memUpdates{rows: make(map[uuid.UUID]*domain.ResourceUpdateRequest)}
}

func (m *memUpdates) Insert(_ context.Context, _ repository.DBTX, req *domain.ResourceUpdateRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *req
	m.rows[req.ID] = &copied
	return nil
}

func (m *memUpdates) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.ResourceUpdateRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *memUpdates) ListPending(_ context.Context, _ repository.DBTX) ([]domain.ResourceUpdateRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ResourceUpdateRequest
	for _, row := range m.rows {
		if row.Status == domain.UpdatePending {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memUpdates) MarkResolved(_ context.Context, _ repository.DBTX, id uuid.UUID, status domain.UpdateStatus, reviewerEmail string, reviewedAt time.Time, note *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Status != domain.UpdatePending {
		return false, nil
	}
	row.Status = status
	row.ReviewedByEmail = &reviewerEmail
	row.ReviewedAt = &reviewedAt
	row.ReviewNote = note
	return true, nil
}

// memAssignments is an in-memory repository.AssignmentRepository.
type memAssignments struct {
	mu   sync.Mutex
	rows []domain.AdminRoleAssignment
}

func (m *memAssignments) ListByEmail(_ context.Context, _ repository.DBTX, email string) ([]domain.AdminRoleAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AdminRoleAssignment
	for _, row := range m.rows {
		if strings.EqualFold(row.UserEmail, email) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memAssignments) List(context.Context, repository.DBTX) ([]domain.AdminRoleAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AdminRoleAssignment(nil), m.rows...), nil
}

func (m *memAssignments) Exists(_ context.Context, _ repository.DBTX, email string, role domain.Role, scope domain.ScopeType, citySlug, locationID *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.UserEmail == email && row.Role == role && row.ScopeType == scope &&
			equalPtr(row.CitySlug, citySlug) && equalPtr(row.LocationID, locationID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAssignments) Insert(_ context.Context, _ repository.DBTX, a *domain.AdminRoleAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *a)
	return nil
}

func (m *memAssignments) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memAssignments) DistinctEmails(context.Context, repository.DBTX) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, row := range m.rows {
		if !seen[row.UserEmail] {
			seen[row.UserEmail] = true
			out = append(out, row.UserEmail)
		}
	}
	return out, nil
}

// memAccounts is an in-memory repository.AccountRepository.
type memAccounts struct {
	mu   sync.Mutex
	rows []domain.UserAccount
}

func (m *memAccounts) FindByEmail(_ context.Context, _ repository.DBTX, email string) (*domain.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.Email, email) {
			copied := row
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memAccounts) Create(_ context.Context, _ repository.DBTX, account *domain.UserAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *account)
	return nil
}

func (m *memAccounts) List(context.Context, repository.DBTX) ([]domain.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.UserAccount(nil), m.rows...), nil
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func superAccess() domain.AdminAccess {
	return domain.SuperAdminAccess()
}

func cityAccess(slug string) domain.AdminAccess {
	return domain.AdminAccess{
		IsAdmin:   true,
		Roles:     []domain.Role{domain.RoleCityAdmin},
		CitySlugs: []string{slug},
	}
}

func locationAccess(slug, locationID string) domain.AdminAccess {
	return domain.AdminAccess{
		IsAdmin:        true,
		Roles:          []domain.Role{domain.RoleLocalAdmin},
		LocationScopes: []domain.LocationScope{{CitySlug: slug, LocationID: locationID}},
	}
}
