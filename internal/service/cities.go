package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ournewbridge/directory/internal/access"
	"github.com/ournewbridge/directory/internal/directory"
	"github.com/ournewbridge/directory/internal/domain"
)

// CityService serves public directory reads and the super-admin city
// management operations. It works identically in database and file mode.
type CityService struct {
	store  directory.Store
	logger *slog.Logger
}

// NewCityService creates a CityService.
func NewCityService(store directory.Store, logger *slog.Logger) *CityService {
	return &CityService{store: store, logger: logger}
}

// CitySummary is the public city listing entry.
type CitySummary struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	State         string `json:"state"`
	ResourceCount int    `json:"resourceCount"`
}

// ListCities returns all cities ordered by slug.
func (s *CityService) ListCities(ctx context.Context) ([]CitySummary, error) {
	cities, err := s.store.ListCities(ctx)
	if err != nil {
		return nil, domain.ErrInternal("list cities", err)
	}

	summaries := make([]CitySummary, 0, len(cities))
	for _, city := range cities {
		summaries = append(summaries, CitySummary{
			Slug:          city.Slug,
			Name:          city.Name,
			State:         city.State,
			ResourceCount: len(city.Resources),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Slug < summaries[j].Slug })
	return summaries, nil
}

// GetCity returns one city with all its resources.
func (s *CityService) GetCity(ctx context.Context, slug string) (*domain.City, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	city, err := s.store.FindCity(ctx, slug)
	if err != nil {
		return nil, domain.ErrInternal("find city", err)
	}
	if city == nil {
		return nil, domain.ErrNotFound("city", slug)
	}
	return city, nil
}

// CityResources returns a city's resources, optionally filtered to one
// category.
func (s *CityService) CityResources(ctx context.Context, slug, category string) ([]domain.Resource, error) {
	city, err := s.GetCity(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return city.Resources, nil
	}
	parsed, ok := domain.ParseCategory(category)
	if !ok {
		return nil, domain.ErrValidation("invalid category: " + category)
	}
	var filtered []domain.Resource
	for _, res := range city.Resources {
		if res.Category == parsed {
			filtered = append(filtered, res)
		}
	}
	return filtered, nil
}

// CreateCityInput is a super admin's request to onboard a new city.
type CreateCityInput struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	State       string  `json:"state"`
	FullName    string  `json:"fullName"`
	Tagline     string  `json:"tagline"`
	Description string  `json:"description"`
	CenterLat   float64 `json:"centerLat"`
	CenterLng   float64 `json:"centerLng"`
	DefaultZoom int     `json:"defaultZoom"`
}

// CreateCity onboards a new city. Super admin only.
func (s *CityService) CreateCity(ctx context.Context, a domain.AdminAccess, input CreateCityInput) (*domain.City, error) {
	if !a.IsSuperAdmin {
		return nil, domain.ErrForbidden("super admin access required")
	}

	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if err := domain.ValidateSlug(slug); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrValidation("name is required")
	}
	if input.CenterLat == 0 && input.CenterLng == 0 {
		return nil, domain.ErrValidation("map center coordinates are required")
	}

	city, err := s.store.CreateCity(ctx, domain.City{
		Slug:        slug,
		Name:        name,
		State:       strings.TrimSpace(input.State),
		FullName:    strings.TrimSpace(input.FullName),
		Tagline:     strings.TrimSpace(input.Tagline),
		Description: strings.TrimSpace(input.Description),
		CenterLat:   input.CenterLat,
		CenterLng:   input.CenterLng,
		DefaultZoom: input.DefaultZoom,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("city created", "slug", city.Slug, "name", city.Name)
	return city, nil
}

// ResourceEditInput carries a direct admin edit of one resource.
type ResourceEditInput struct {
	Name               string   `json:"name"`
	Address            string   `json:"address"`
	Lat                *float64 `json:"lat"`
	Lng                *float64 `json:"lng"`
	Hours              string   `json:"hours"`
	DaysOpen           string   `json:"daysOpen"`
	Phone              string   `json:"phone"`
	Website            string   `json:"website"`
	RequiresID         bool     `json:"requiresId"`
	WalkIn             bool     `json:"walkIn"`
	Notes              string   `json:"notes"`
	AvailabilityStatus string   `json:"availabilityStatus"`
}

// UpsertResource writes one resource directly, bypassing the moderation
// queue. City-wide rights are needed to create; location rights suffice to
// edit an existing id.
func (s *CityService) UpsertResource(ctx context.Context, a domain.AdminAccess, citySlug, category, externalID string, input ResourceEditInput) (*domain.Resource, error) {
	citySlug = strings.ToLower(strings.TrimSpace(citySlug))
	parsed, ok := domain.ParseCategory(category)
	if !ok {
		return nil, domain.ErrValidation("invalid category: " + category)
	}

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		if !access.CanManageCity(a, citySlug) {
			return nil, domain.ErrForbidden("no management rights for this city")
		}
		externalID = uuid.NewString()
	} else if !access.CanManageLocation(a, citySlug, externalID) {
		return nil, domain.ErrForbidden("no management rights for this location")
	}

	name := strings.TrimSpace(input.Name)
	address := strings.TrimSpace(input.Address)
	if name == "" || address == "" {
		return nil, domain.ErrValidation("name and address are required")
	}

	availability := domain.NormalizeAvailability(input.AvailabilityStatus)
	fields := domain.ResourceFields{
		Name:               name,
		Address:            address,
		Lat:                input.Lat,
		Lng:                input.Lng,
		Hours:              input.Hours,
		DaysOpen:           input.DaysOpen,
		Phone:              input.Phone,
		Website:            input.Website,
		RequiresID:         input.RequiresID,
		WalkIn:             input.WalkIn,
		Notes:              input.Notes,
		AvailabilityStatus: availability,
	}
	if availability == domain.AvailabilityYes {
		now := time.Now()
		fields.LastAvailableAt = &now
	}

	resource, err := s.store.UpsertResource(ctx, citySlug, parsed, externalID, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("resource upserted", "city", citySlug, "category", parsed, "resource_id", externalID)
	return resource, nil
}

// DeleteResource removes one resource. Location rights required.
func (s *CityService) DeleteResource(ctx context.Context, a domain.AdminAccess, citySlug, category, externalID string) error {
	citySlug = strings.ToLower(strings.TrimSpace(citySlug))
	parsed, ok := domain.ParseCategory(category)
	if !ok {
		return domain.ErrValidation("invalid category: " + category)
	}
	if !access.CanManageLocation(a, citySlug, externalID) {
		return domain.ErrForbidden("no management rights for this location")
	}

	if err := s.store.DeleteResource(ctx, citySlug, parsed, externalID); err != nil {
		return err
	}
	s.logger.Info("resource deleted", "city", citySlug, "category", parsed, "resource_id", externalID)
	return nil
}

// CityHealth is one city's row in the validation report.
type CityHealth struct {
	Slug           string   `json:"slug"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	ResourceCount  int      `json:"resourceCount"`
	ConfigIssues   []string `json:"configIssues,omitempty"`
	ResourceIssues []string `json:"resourceIssues,omitempty"`
}

// Validate checks every city's config and resources for common data problems.
// Super admin only.
func (s *CityService) Validate(ctx context.Context, a domain.AdminAccess) ([]CityHealth, error) {
	if !a.IsSuperAdmin {
		return nil, domain.ErrForbidden("super admin access required")
	}

	cities, err := s.store.ListCities(ctx)
	if err != nil {
		return nil, domain.ErrInternal("list cities", err)
	}

	report := make([]CityHealth, 0, len(cities))
	for _, city := range cities {
		health := CityHealth{Slug: city.Slug, Name: city.Name, ResourceCount: len(city.Resources)}

		if err := domain.ValidateSlug(city.Slug); err != nil {
			health.ConfigIssues = append(health.ConfigIssues, err.Error())
		}
		if strings.TrimSpace(city.Name) == "" {
			health.ConfigIssues = append(health.ConfigIssues, "city name is empty")
		}
		if city.CenterLat == 0 && city.CenterLng == 0 {
			health.ConfigIssues = append(health.ConfigIssues, "map center coordinates are missing")
		}

		seen := make(map[string]bool)
		for _, res := range city.Resources {
			key := string(res.Category) + "/" + res.ExternalID
			switch {
			case strings.TrimSpace(res.ExternalID) == "":
				health.ResourceIssues = append(health.ResourceIssues, "resource with empty id in "+string(res.Category))
			case seen[key]:
				health.ResourceIssues = append(health.ResourceIssues, "duplicate resource id "+res.ExternalID+" in "+string(res.Category))
			default:
				seen[key] = true
			}
			if strings.TrimSpace(res.Name) == "" {
				health.ResourceIssues = append(health.ResourceIssues, "resource "+res.ExternalID+" has no name")
			}
			if strings.TrimSpace(res.Address) == "" {
				health.ResourceIssues = append(health.ResourceIssues, "resource "+res.ExternalID+" has no address")
			}
			if res.Lat == nil || res.Lng == nil {
				health.ResourceIssues = append(health.ResourceIssues, "resource "+res.ExternalID+" is missing coordinates")
			}
		}

		health.Status = "ok"
		if len(health.ConfigIssues) > 0 || len(health.ResourceIssues) > 0 {
			health.Status = "issues"
		}
		report = append(report, health)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Slug < report[j].Slug })
	return report, nil
}

// CityExport is one city's portion of a backup.
type CityExport struct {
	City      domain.City                  `json:"city"`
	Resources map[string][]domain.Resource `json:"resources"`
}

// ExportData is a full directory backup.
type ExportData struct {
	ExportedAt time.Time             `json:"exportedAt"`
	Mode       string                `json:"mode"`
	Cities     map[string]CityExport `json:"cities"`
}

// Export returns the whole directory as one JSON document, grouped by city
// and category. Super admin only.
func (s *CityService) Export(ctx context.Context, a domain.AdminAccess) (*ExportData, error) {
	if !a.IsSuperAdmin {
		return nil, domain.ErrForbidden("super admin access required")
	}

	cities, err := s.store.ListCities(ctx)
	if err != nil {
		return nil, domain.ErrInternal("list cities", err)
	}

	export := &ExportData{
		ExportedAt: time.Now().UTC(),
		Mode:       s.store.Mode(),
		Cities:     make(map[string]CityExport, len(cities)),
	}
	for _, city := range cities {
		byCategory := make(map[string][]domain.Resource, 4)
		for _, category := range domain.Categories() {
			byCategory[string(category)] = []domain.Resource{}
		}
		for _, res := range city.Resources {
			key := string(res.Category)
			byCategory[key] = append(byCategory[key], res)
		}

		config := city
		config.Resources = nil
		export.Cities[city.Slug] = CityExport{City: config, Resources: byCategory}
	}
	return export, nil
}
