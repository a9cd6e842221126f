package service

import (
	"context"
	"testing"

	"github.com/ournewbridge/directory/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCityFixture(t *testing.T, slugs ...string) (*CityService, *memStore) {
	t.Helper()
	store := newMemStore(slugs...)
	return NewCityService(store, discardLogger()), store
}

func TestListCities_Summaries(t *testing.T) {
	svc, store := newCityFixture(t, "boone", "ames")
	ctx := context.Background()

	_, err := store.UpsertResource(ctx, "ames", domain.CategoryFood, "r1", domain.ResourceFields{Name: "P", Address: "A"})
	require.NoError(t, err)

	summaries, err := svc.ListCities(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "ames", summaries[0].Slug)
	assert.Equal(t, 1, summaries[0].ResourceCount)
	assert.Equal(t, "boone", summaries[1].Slug)
}

func TestGetCity_NotFound(t *testing.T) {
	svc, _ := newCityFixture(t, "ames")

	_, err := svc.GetCity(context.Background(), "nowhere")
	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}

func TestCityResources_CategoryFilter(t *testing.T) {
	svc, store := newCityFixture(t, "ames")
	ctx := context.Background()

	_, err := store.UpsertResource(ctx, "ames", domain.CategoryFood, "r1", domain.ResourceFields{Name: "P", Address: "A"})
	require.NoError(t, err)
	_, err = store.UpsertResource(ctx, "ames", domain.CategoryShelter, "r2", domain.ResourceFields{Name: "S", Address: "B"})
	require.NoError(t, err)

	all, err := svc.CityResources(ctx, "ames", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	food, err := svc.CityResources(ctx, "ames", "food")
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, "r1", food[0].ExternalID)

	_, err = svc.CityResources(ctx, "ames", "transport")
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestCreateCity(t *testing.T) {
	svc, _ := newCityFixture(t)
	ctx := context.Background()

	created, err := svc.CreateCity(ctx, superAccess(), CreateCityInput{
		Slug: "Des-Moines", Name: "Des Moines", State: "IA", CenterLat: 41.6, CenterLng: -93.6,
	})
	require.NoError(t, err)
	assert.Equal(t, "des-moines", created.Slug)

	_, err = svc.CreateCity(ctx, superAccess(), CreateCityInput{
		Slug: "des-moines", Name: "Again", CenterLat: 41.6, CenterLng: -93.6,
	})
	assert.Equal(t, "CONFLICT", appCode(t, err))

	_, err = svc.CreateCity(ctx, cityAccess("ames"), CreateCityInput{
		Slug: "boone", Name: "Boone", CenterLat: 42, CenterLng: -93,
	})
	assert.Equal(t, "FORBIDDEN", appCode(t, err))

	_, err = svc.CreateCity(ctx, superAccess(), CreateCityInput{
		Slug: "Bad Slug!", Name: "Bad", CenterLat: 42, CenterLng: -93,
	})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))

	_, err = svc.CreateCity(ctx, superAccess(), CreateCityInput{Slug: "nocoords", Name: "No Coords"})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestUpsertResource_Permissions(t *testing.T) {
	svc, store := newCityFixture(t, "ames")
	ctx := context.Background()
	edit := ResourceEditInput{Name: "Pantry", Address: "1 Main St"}

	// Creating needs city rights.
	_, err := svc.UpsertResource(ctx, locationAccess("ames", "pantry-1"), "ames", "food", "", edit)
	assert.Equal(t, "FORBIDDEN", appCode(t, err))

	created, err := svc.UpsertResource(ctx, cityAccess("ames"), "ames", "food", "", edit)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ExternalID)

	// Editing an existing id needs only location rights.
	_, err = store.UpsertResource(ctx, "ames", domain.CategoryFood, "pantry-1", domain.ResourceFields{Name: "P", Address: "A"})
	require.NoError(t, err)

	edit.Hours = "9-17"
	updated, err := svc.UpsertResource(ctx, locationAccess("ames", "pantry-1"), "ames", "food", "pantry-1", edit)
	require.NoError(t, err)
	assert.Equal(t, "9-17", updated.Hours)

	_, err = svc.UpsertResource(ctx, locationAccess("ames", "pantry-1"), "ames", "food", "other", edit)
	assert.Equal(t, "FORBIDDEN", appCode(t, err))
}

func TestUpsertResource_StampsAvailability(t *testing.T) {
	svc, _ := newCityFixture(t, "ames")

	created, err := svc.UpsertResource(context.Background(), superAccess(), "ames", "food", "pantry-1", ResourceEditInput{
		Name: "Pantry", Address: "1 Main St", AvailabilityStatus: "yes",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityYes, created.AvailabilityStatus)
	assert.NotNil(t, created.LastAvailableAt)
}

func TestDeleteResource(t *testing.T) {
	svc, store := newCityFixture(t, "ames")
	ctx := context.Background()

	_, err := store.UpsertResource(ctx, "ames", domain.CategoryFood, "pantry-1", domain.ResourceFields{Name: "P", Address: "A"})
	require.NoError(t, err)

	err = svc.DeleteResource(ctx, locationAccess("ames", "other"), "ames", "food", "pantry-1")
	assert.Equal(t, "FORBIDDEN", appCode(t, err))

	require.NoError(t, svc.DeleteResource(ctx, cityAccess("ames"), "ames", "food", "pantry-1"))
	assert.Nil(t, store.resource("ames", "pantry-1"))
}

func TestValidate_FlagsProblems(t *testing.T) {
	svc, store := newCityFixture(t, "ames")
	ctx := context.Background()

	_, err := store.CreateCity(ctx, domain.City{Slug: "empty-town", Name: ""})
	require.NoError(t, err)
	_, err = store.UpsertResource(ctx, "ames", domain.CategoryFood, "r1", domain.ResourceFields{Name: "P", Address: ""})
	require.NoError(t, err)

	report, err := svc.Validate(ctx, superAccess())
	require.NoError(t, err)
	require.Len(t, report, 2)

	byslug := make(map[string]CityHealth)
	for _, health := range report {
		byslug[health.Slug] = health
	}
	assert.Equal(t, "issues", byslug["ames"].Status)
	assert.NotEmpty(t, byslug["ames"].ResourceIssues)
	assert.Equal(t, "issues", byslug["empty-town"].Status)
	assert.NotEmpty(t, byslug["empty-town"].ConfigIssues)

	_, err = svc.Validate(ctx, cityAccess("ames"))
	assert.Equal(t, "FORBIDDEN", appCode(t, err))
}

func TestExport_GroupsByCityAndCategory(t *testing.T) {
	svc, store := newCityFixture(t, "ames")
	ctx := context.Background()

	_, err := store.UpsertResource(ctx, "ames", domain.CategoryFood, "r1", domain.ResourceFields{Name: "P", Address: "A"})
	require.NoError(t, err)

	export, err := svc.Export(ctx, superAccess())
	require.NoError(t, err)
	assert.False(t, export.ExportedAt.IsZero())
	require.Contains(t, export.Cities, "ames")

	ames := export.Cities["ames"]
	assert.Empty(t, ames.City.Resources)
	assert.Len(t, ames.Resources["food"], 1)
	assert.Empty(t, ames.Resources["shelter"])

	_, err = svc.Export(ctx, cityAccess("ames"))
	assert.Equal(t, "FORBIDDEN", appCode(t, err))
}
