package migration

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/ournewbridge/directory/internal/directory"
	"github.com/ournewbridge/directory/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *directory.FileStore {
	t.Helper()
	base := t.TempDir()
	return directory.NewFileStore(filepath.Join(base, "config", "cities"), filepath.Join(base, "data"))
}

func TestStableResourceID_Deterministic(t *testing.T) {
	id1 := StableResourceID("ames", "food", "Downtown Pantry", "1 Main St")
	id2 := StableResourceID("ames", "food", "Downtown Pantry", "1 Main St")
	assert.Equal(t, id1, id2)

	// Case and whitespace variations collapse to the same id.
	id3 := StableResourceID("ames", "food", "  downtown pantry ", "1 MAIN ST")
	assert.Equal(t, id1, id3)

	other := StableResourceID("ames", "food", "Other Pantry", "1 Main St")
	assert.NotEqual(t, id1, other)
}

func TestStableResourceID_ValidUUID(t *testing.T) {
	id := StableResourceID("ames", "food", "Pantry", "1 Main St")
	assert.Len(t, id, 36)
}

func TestImportAll_CopiesCitiesAndResources(t *testing.T) {
	ctx := context.Background()
	source := newFileStore(t)
	target := newFileStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := source.CreateCity(ctx, domain.City{Slug: "ames", Name: "Ames", State: "IA", CenterLat: 42, CenterLng: -93.6})
	require.NoError(t, err)
	_, err = source.UpsertResource(ctx, "ames", domain.CategoryFood, "pantry-1", domain.ResourceFields{
		Name: "Downtown Pantry", Address: "1 Main St",
	})
	require.NoError(t, err)

	report, err := NewImporter(source, target, logger).ImportAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.CitiesCreated)
	assert.Equal(t, 1, report.Resources)

	city, err := target.FindCity(ctx, "ames")
	require.NoError(t, err)
	require.NotNil(t, city)
	require.Len(t, city.Resources, 1)
	assert.Equal(t, "pantry-1", city.Resources[0].ExternalID)
}

func TestImportAll_Rerunnable(t *testing.T) {
	ctx := context.Background()
	source := newFileStore(t)
	target := newFileStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := source.CreateCity(ctx, domain.City{Slug: "ames", Name: "Ames", CenterLat: 42, CenterLng: -93.6})
	require.NoError(t, err)
	_, err = source.UpsertResource(ctx, "ames", domain.CategoryFood, "pantry-1", domain.ResourceFields{
		Name: "Pantry", Address: "1 Main St",
	})
	require.NoError(t, err)

	importer := NewImporter(source, target, logger)
	_, err = importer.ImportAll(ctx)
	require.NoError(t, err)

	report, err := importer.ImportAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.CitiesCreated)
	assert.Equal(t, 1, report.CitiesExisting)

	city, err := target.FindCity(ctx, "ames")
	require.NoError(t, err)
	assert.Len(t, city.Resources, 1)
}
