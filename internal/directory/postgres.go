package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ournewbridge/directory/internal/domain"
)

// PgStore implements Store on Postgres.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a Postgres-backed directory store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Mode() string { return "postgres" }

const resourceColumns = `external_id, category, name, address, lat, lng, hours, days_open,
	phone, website, requires_id, walk_in, notes, availability_status, last_available_at`

// ListCities returns all cities with their resources loaded.
func (s *PgStore) ListCities(ctx context.Context) ([]domain.City, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT slug, name, state, full_name, tagline, description, center_lat, center_lng, default_zoom
		 FROM cities ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.Slug, &c.Name, &c.State, &c.FullName, &c.Tagline, &c.Description,
			&c.CenterLat, &c.CenterLng, &c.DefaultZoom); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cities {
		resources, err := s.listResources(ctx, cities[i].Slug)
		if err != nil {
			return nil, err
		}
		cities[i].Resources = resources
	}
	return cities, nil
}

// FindCity returns one city with resources, or nil when absent.
func (s *PgStore) FindCity(ctx context.Context, slug string) (*domain.City, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT slug, name, state, full_name, tagline, description, center_lat, center_lng, default_zoom
		 FROM cities WHERE slug = $1`, slug)

	c := &domain.City{}
	err := row.Scan(&c.Slug, &c.Name, &c.State, &c.FullName, &c.Tagline, &c.Description,
		&c.CenterLat, &c.CenterLng, &c.DefaultZoom)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Resources, err = s.listResources(ctx, slug)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCity adds a new city.
func (s *PgStore) CreateCity(ctx context.Context, city domain.City) (*domain.City, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cities (id, slug, name, state, full_name, tagline, description, center_lat, center_lng, default_zoom)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.New(), city.Slug, city.Name, city.State, city.FullName, city.Tagline, city.Description,
		city.CenterLat, city.CenterLng, city.DefaultZoom)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict("city already exists: " + city.Slug)
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// UpsertResource creates or replaces a resource. last_available_at is only
// advanced when the caller supplies a value; upserts without one preserve the
// existing stamp.
func (s *PgStore) UpsertResource(ctx context.Context, citySlug string, category domain.Category, externalID string, fields domain.ResourceFields) (*domain.Resource, error) {
	var cityID uuid.UUID
	err := s.pool.QueryRow(ctx, `SELECT id FROM cities WHERE slug = $1`, citySlug).Scan(&cityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("city", citySlug)
	}
	if err != nil {
		return nil, err
	}

	var availability *string
	if fields.AvailabilityStatus != "" {
		v := string(fields.AvailabilityStatus)
		availability = &v
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO resources (id, city_id, category, external_id, name, address, lat, lng, hours,
		   days_open, phone, website, requires_id, walk_in, notes, availability_status, last_available_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 ON CONFLICT (city_id, category, external_id) DO UPDATE SET
		   name = EXCLUDED.name,
		   address = EXCLUDED.address,
		   lat = EXCLUDED.lat,
		   lng = EXCLUDED.lng,
		   hours = EXCLUDED.hours,
		   days_open = EXCLUDED.days_open,
		   phone = EXCLUDED.phone,
		   website = EXCLUDED.website,
		   requires_id = EXCLUDED.requires_id,
		   walk_in = EXCLUDED.walk_in,
		   notes = EXCLUDED.notes,
		   availability_status = COALESCE(EXCLUDED.availability_status, resources.availability_status),
		   last_available_at = COALESCE(EXCLUDED.last_available_at, resources.last_available_at),
		   updated_at = now()`,
		uuid.New(), cityID, string(category), externalID, fields.Name, fields.Address,
		fields.Lat, fields.Lng, fields.Hours, fields.DaysOpen, fields.Phone, fields.Website,
		fields.RequiresID, fields.WalkIn, fields.Notes, availability, fields.LastAvailableAt)
	if err != nil {
		return nil, err
	}

	return s.findResource(ctx, cityID, category, externalID)
}

// DeleteResource removes a resource.
func (s *PgStore) DeleteResource(ctx context.Context, citySlug string, category domain.Category, externalID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM resources r
		 USING cities c
		 WHERE r.city_id = c.id AND c.slug = $1 AND r.category = $2 AND r.external_id = $3`,
		citySlug, string(category), externalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("resource", externalID)
	}
	return nil
}

func (s *PgStore) listResources(ctx context.Context, citySlug string) ([]domain.Resource, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+resourceColumns+`
		 FROM resources r JOIN cities c ON r.city_id = c.id
		 WHERE c.slug = $1
		 ORDER BY r.name ASC`, citySlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		r.CitySlug = citySlug
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *PgStore) findResource(ctx context.Context, cityID uuid.UUID, category domain.Category, externalID string) (*domain.Resource, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+resourceColumns+`
		 FROM resources r
		 WHERE r.city_id = $1 AND r.category = $2 AND r.external_id = $3`,
		cityID, string(category), externalID)
	return scanResource(row)
}

func scanResource(row pgx.Row) (*domain.Resource, error) {
	r := &domain.Resource{}
	var category string
	var availability *string
	err := row.Scan(&r.ExternalID, &category, &r.Name, &r.Address, &r.Lat, &r.Lng, &r.Hours,
		&r.DaysOpen, &r.Phone, &r.Website, &r.RequiresID, &r.WalkIn, &r.Notes,
		&availability, &r.LastAvailableAt)
	if err != nil {
		return nil, err
	}
	r.Category = domain.Category(category)
	if availability != nil {
		r.AvailabilityStatus = domain.NormalizeAvailability(*availability)
	}
	return r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
