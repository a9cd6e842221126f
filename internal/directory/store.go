// Package directory stores city and resource records. Two implementations
// exist: a Postgres store and a file store matching the original JSON
// deployment layout (config/cities/<slug>.json + data/<slug>/resources.json).
package directory

import (
	"context"

	"github.com/ournewbridge/directory/internal/domain"
)

// Store is the resource repository consumed by the moderation workflow and
// the admin surface. FindCity returns nil (not an error) for unknown slugs.
type Store interface {
	// Mode identifies the backing deployment ("postgres" or "file").
	Mode() string

	// ListCities returns all cities with their resources loaded.
	ListCities(ctx context.Context) ([]domain.City, error)

	// FindCity returns one city with resources, or nil when absent.
	FindCity(ctx context.Context, slug string) (*domain.City, error)

	// CreateCity adds a new city. Fails with Conflict when the slug exists.
	CreateCity(ctx context.Context, city domain.City) (*domain.City, error)

	// UpsertResource creates or replaces the resource identified by
	// (citySlug, category, externalID) with the given fields.
	UpsertResource(ctx context.Context, citySlug string, category domain.Category, externalID string, fields domain.ResourceFields) (*domain.Resource, error)

	// DeleteResource removes a resource. NotFound when absent.
	DeleteResource(ctx context.Context, citySlug string, category domain.Category, externalID string) error
}
