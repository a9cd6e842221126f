package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ournewbridge/directory/internal/domain"
)

// FileStore implements Store on the original JSON deployment layout:
// <configDir>/<slug>.json for city config and <dataDir>/<slug>/resources.json
// for resources keyed by category. Writes keep the on-disk shape so files
// remain interchangeable with hand-maintained deployments.
type FileStore struct {
	configDir string
	dataDir   string
}

// NewFileStore creates a file-backed directory store.
func NewFileStore(configDir, dataDir string) *FileStore {
	return &FileStore{configDir: configDir, dataDir: dataDir}
}

func (s *FileStore) Mode() string { return "file" }

type cityConfigFile struct {
	Slug string `json:"slug"`
	City struct {
		Name        string `json:"name"`
		State       string `json:"state"`
		FullName    string `json:"fullName,omitempty"`
		Tagline     string `json:"tagline,omitempty"`
		Description string `json:"description,omitempty"`
	} `json:"city"`
	Map struct {
		CenterLat   float64 `json:"centerLat"`
		CenterLng   float64 `json:"centerLng"`
		DefaultZoom int     `json:"defaultZoom"`
	} `json:"map"`
}

type fileResource struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Address            string     `json:"address"`
	Lat                *float64   `json:"lat"`
	Lng                *float64   `json:"lng"`
	Hours              string     `json:"hours,omitempty"`
	DaysOpen           string     `json:"daysOpen,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Website            string     `json:"website,omitempty"`
	RequiresID         bool       `json:"requiresId,omitempty"`
	WalkIn             bool       `json:"walkIn,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	AvailabilityStatus string     `json:"availabilityStatus,omitempty"`
	LastAvailableAt    *time.Time `json:"lastAvailableAt,omitempty"`
}

// ListCities returns all cities with their resources loaded.
func (s *FileStore) ListCities(ctx context.Context) ([]domain.City, error) {
	entries, err := os.ReadDir(s.configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cities []domain.City
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".json")
		city, err := s.FindCity(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("read city %s: %w", slug, err)
		}
		if city != nil {
			cities = append(cities, *city)
		}
	}
	return cities, nil
}

// FindCity returns one city with resources, or nil when the config file is
// absent.
func (s *FileStore) FindCity(_ context.Context, slug string) (*domain.City, error) {
	raw, err := os.ReadFile(filepath.Join(s.configDir, slug+".json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg cityConfigFile
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Slug == "" {
		cfg.Slug = slug
	}

	city := &domain.City{
		Slug:        cfg.Slug,
		Name:        cfg.City.Name,
		State:       cfg.City.State,
		FullName:    cfg.City.FullName,
		Tagline:     cfg.City.Tagline,
		Description: cfg.City.Description,
		CenterLat:   cfg.Map.CenterLat,
		CenterLng:   cfg.Map.CenterLng,
		DefaultZoom: cfg.Map.DefaultZoom,
	}

	byCategory, err := s.readResources(slug)
	if err != nil {
		return nil, err
	}
	for _, category := range domain.Categories() {
		for _, fr := range byCategory[category] {
			city.Resources = append(city.Resources, fr.toDomain(slug, category))
		}
	}
	return city, nil
}

// CreateCity writes a new config file and an empty resources file.
func (s *FileStore) CreateCity(ctx context.Context, city domain.City) (*domain.City, error) {
	path := filepath.Join(s.configDir, city.Slug+".json")
	if _, err := os.Stat(path); err == nil {
		return nil, domain.ErrConflict("city already exists: " + city.Slug)
	}

	var cfg cityConfigFile
	cfg.Slug = city.Slug
	cfg.City.Name = city.Name
	cfg.City.State = city.State
	cfg.City.FullName = city.FullName
	cfg.City.Tagline = city.Tagline
	cfg.City.Description = city.Description
	cfg.Map.CenterLat = city.CenterLat
	cfg.Map.CenterLng = city.CenterLng
	cfg.Map.DefaultZoom = city.DefaultZoom
	if cfg.Map.DefaultZoom == 0 {
		cfg.Map.DefaultZoom = 12
	}

	if err := os.MkdirAll(s.configDir, 0o755); err != nil {
		return nil, err
	}
	if err := writeJSON(path, cfg); err != nil {
		return nil, err
	}
	if err := s.writeResources(city.Slug, map[domain.Category][]fileResource{}); err != nil {
		return nil, err
	}
	return &city, nil
}

// UpsertResource replaces or appends the resource in its category array.
func (s *FileStore) UpsertResource(ctx context.Context, citySlug string, category domain.Category, externalID string, fields domain.ResourceFields) (*domain.Resource, error) {
	city, err := s.FindCity(ctx, citySlug)
	if err != nil {
		return nil, err
	}
	if city == nil {
		return nil, domain.ErrNotFound("city", citySlug)
	}

	byCategory, err := s.readResources(citySlug)
	if err != nil {
		return nil, err
	}

	fr := fileResource{
		ID:                 externalID,
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
		AvailabilityStatus: string(fields.AvailabilityStatus),
		LastAvailableAt:    fields.LastAvailableAt,
	}

	list := byCategory[category]
	replaced := false
	for i := range list {
		if strings.TrimSpace(list[i].ID) == strings.TrimSpace(externalID) {
			if fr.Lat == nil {
				fr.Lat = list[i].Lat
			}
			if fr.Lng == nil {
				fr.Lng = list[i].Lng
			}
			if fr.LastAvailableAt == nil {
				fr.LastAvailableAt = list[i].LastAvailableAt
			}
			if fr.AvailabilityStatus == "" {
				fr.AvailabilityStatus = list[i].AvailabilityStatus
			}
			list[i] = fr
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, fr)
	}
	byCategory[category] = list

	if err := s.writeResources(citySlug, byCategory); err != nil {
		return nil, err
	}
	resource := fr.toDomain(citySlug, category)
	return &resource, nil
}

// DeleteResource removes a resource from its category array.
func (s *FileStore) DeleteResource(_ context.Context, citySlug string, category domain.Category, externalID string) error {
	byCategory, err := s.readResources(citySlug)
	if err != nil {
		return err
	}

	list := byCategory[category]
	kept := list[:0]
	for _, fr := range list {
		if strings.TrimSpace(fr.ID) != strings.TrimSpace(externalID) {
			kept = append(kept, fr)
		}
	}
	if len(kept) == len(list) {
		return domain.ErrNotFound("resource", externalID)
	}
	byCategory[category] = kept
	return s.writeResources(citySlug, byCategory)
}

func (s *FileStore) readResources(slug string) (map[domain.Category][]fileResource, error) {
	out := make(map[domain.Category][]fileResource)
	raw, err := os.ReadFile(filepath.Join(s.dataDir, slug, "resources.json"))
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	var parsed map[string][]fileResource
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	for _, category := range domain.Categories() {
		if list, ok := parsed[string(category)]; ok {
			out[category] = list
		}
	}
	return out, nil
}

func (s *FileStore) writeResources(slug string, byCategory map[domain.Category][]fileResource) error {
	dir := filepath.Join(s.dataDir, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Always write all four category keys so the file shape stays stable.
	shaped := make(map[string][]fileResource, 4)
	for _, category := range domain.Categories() {
		list := byCategory[category]
		if list == nil {
			list = []fileResource{}
		}
		shaped[string(category)] = list
	}
	return writeJSON(filepath.Join(dir, "resources.json"), shaped)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (fr fileResource) toDomain(citySlug string, category domain.Category) domain.Resource {
	return domain.Resource{
		ExternalID:         fr.ID,
		CitySlug:           citySlug,
		Category:           category,
		Name:               fr.Name,
		Address:            fr.Address,
		Lat:                fr.Lat,
		Lng:                fr.Lng,
		Hours:              fr.Hours,
		DaysOpen:           fr.DaysOpen,
		Phone:              fr.Phone,
		Website:            fr.Website,
		RequiresID:         fr.RequiresID,
		WalkIn:             fr.WalkIn,
		Notes:              fr.Notes,
		AvailabilityStatus: domain.NormalizeAvailability(fr.AvailabilityStatus),
		LastAvailableAt:    fr.LastAvailableAt,
	}
}
