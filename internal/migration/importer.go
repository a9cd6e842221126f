// Package migration moves a file-based deployment into the database. A city
// that started on hand-maintained JSON files can be imported once and then
// run in database mode with the full contributor workflow.
package migration

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/ournewbridge/directory/internal/directory"
	"github.com/ournewbridge/directory/internal/domain"
)

// Importer copies cities and resources from a source store into a target
// store. Re-running is safe: existing cities are kept, resources are
// upserted in place.
type Importer struct {
	source directory.Store
	target directory.Store
	logger *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(source, target directory.Store, logger *slog.Logger) *Importer {
	return &Importer{source: source, target: target, logger: logger}
}

// ImportReport summarizes one import run.
type ImportReport struct {
	CitiesCreated  int `json:"cities_created"`
	CitiesExisting int `json:"cities_existing"`
	Resources      int `json:"resources"`
	AssignedIDs    int `json:"assigned_ids"`
}

// ImportAll copies every city from source to target.
func (im *Importer) ImportAll(ctx context.Context) (*ImportReport, error) {
	cities, err := im.source.ListCities(ctx)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}
	for _, city := range cities {
		if err := im.importCity(ctx, city, report); err != nil {
			return nil, err
		}
	}

	im.logger.Info("import finished",
		"cities_created", report.CitiesCreated,
		"cities_existing", report.CitiesExisting,
		"resources", report.Resources,
		"assigned_ids", report.AssignedIDs,
	)
	return report, nil
}

func (im *Importer) importCity(ctx context.Context, city domain.City, report *ImportReport) error {
	existing, err := im.target.FindCity(ctx, city.Slug)
	if err != nil {
		return err
	}
	if existing == nil {
		config := city
		config.Resources = nil
		if _, err := im.target.CreateCity(ctx, config); err != nil {
			return err
		}
		report.CitiesCreated++
	} else {
		report.CitiesExisting++
	}

	for _, res := range city.Resources {
		externalID := strings.TrimSpace(res.ExternalID)
		if externalID == "" {
			// Hand-maintained files sometimes omit ids. Derive a stable one
			// from the identifying fields so re-imports hit the same row.
			externalID = StableResourceID(city.Slug, string(res.Category), res.Name, res.Address)
			report.AssignedIDs++
		}

		fields := domain.ResourceFields{
			Name:               res.Name,
			Address:            res.Address,
			Lat:                res.Lat,
			Lng:                res.Lng,
			Hours:              res.Hours,
			DaysOpen:           res.DaysOpen,
			Phone:              res.Phone,
			Website:            res.Website,
			RequiresID:         res.RequiresID,
			WalkIn:             res.WalkIn,
			Notes:              res.Notes,
			AvailabilityStatus: res.AvailabilityStatus,
			LastAvailableAt:    res.LastAvailableAt,
		}
		if _, err := im.target.UpsertResource(ctx, city.Slug, res.Category, externalID, fields); err != nil {
			return err
		}
		report.Resources++
	}

	im.logger.Info("imported city", "slug", city.Slug, "resources", len(city.Resources))
	return nil
}

// StableResourceID derives a deterministic UUID string from a resource's
// identifying fields. The same inputs always map to the same id, so imports
// stay idempotent across runs.
func StableResourceID(parts ...string) string {
	h := sha256.New()
	for i, part := range parts {
		if i > 0 {
			h.Write([]byte(":"))
		}
		h.Write([]byte(strings.ToLower(strings.TrimSpace(part))))
	}
	digest := h.Sum(nil)

	var id uuid.UUID
	copy(id[:], digest[:16])
	id[6] = (id[6] & 0x0f) | 0x50 // version 5
	id[8] = (id[8] & 0x3f) | 0x80 // variant RFC4122
	return id.String()
}
