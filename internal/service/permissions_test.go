package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ournewbridge/directory/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPermissionFixture(t *testing.T, slugs ...string) (*PermissionService, *memStore, *memAccounts, *memAssignments) {
	t.Helper()
	store := newMemStore(slugs...)
	accounts := &memAccounts{}
	assignments := &memAssignments{}
	svc := NewPermissionService(stubDB{}, assignments, accounts, store, discardLogger())
	return svc, store, accounts, assignments
}

func seedAccount(t *testing.T, accounts *memAccounts, email, name string) {
	t.Helper()
	err := accounts.Create(context.Background(), stubDB{}, &domain.UserAccount{
		ID: uuid.New(), Email: email, Name: name,
	})
	require.NoError(t, err)
}

func TestCreateGrant_SuperAdminOnly(t *testing.T) {
	svc, _, _, _ := newPermissionFixture(t, "ames")

	_, err := svc.CreateGrant(context.Background(), cityAccess("ames"), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "city_admin", CitySlug: "ames",
	})
	assert.Equal(t, "FORBIDDEN", appCode(t, err))
}

func TestCreateGrant_FileModeDegrades(t *testing.T) {
	svc := NewPermissionService(nil, &memAssignments{}, &memAccounts{}, newMemStore("ames"), discardLogger())

	_, err := svc.CreateGrant(context.Background(), superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "city_admin", CitySlug: "ames",
	})
	assert.Equal(t, "STORE_UNAVAILABLE", appCode(t, err))
}

func TestCreateGrant_UnknownUserRefused(t *testing.T) {
	svc, _, _, _ := newPermissionFixture(t, "ames")

	_, err := svc.CreateGrant(context.Background(), superAccess(), CreateGrantInput{
		UserEmail: "stranger@example.org", Role: "city_admin", CitySlug: "ames",
	})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestCreateGrant_GrantedEmailCountsAsKnown(t *testing.T) {
	// An email holding a grant is a known user even without an account row.
	svc, _, _, assignments := newPermissionFixture(t, "ames", "boone")
	ctx := context.Background()

	slug := "boone"
	require.NoError(t, assignments.Insert(ctx, stubDB{}, &domain.AdminRoleAssignment{
		ID: uuid.New(), UserEmail: "vol@example.org", Role: domain.RoleCityAdmin,
		ScopeType: domain.ScopeCity, CitySlug: &slug,
	}))

	created, err := svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "city_admin", CitySlug: "ames",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCityAdmin, created.Role)
}

func TestCreateGrant_DerivesScopeFromRole(t *testing.T) {
	svc, store, accounts, _ := newPermissionFixture(t, "ames")
	ctx := context.Background()
	seedAccount(t, accounts, "vol@example.org", "Vol")

	_, err := store.UpsertResource(ctx, "ames", domain.CategoryFood, "pantry-1", domain.ResourceFields{
		Name: "Pantry", Address: "1 Main St",
	})
	require.NoError(t, err)

	super, err := svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "super_admin",
		CitySlug: "ames", LocationID: "pantry-1", // ignored for this role
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeGlobal, super.ScopeType)
	assert.Nil(t, super.CitySlug)
	assert.Nil(t, super.LocationID)

	city, err := svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "city_admin", CitySlug: "Ames",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeCity, city.ScopeType)
	require.NotNil(t, city.CitySlug)
	assert.Equal(t, "ames", *city.CitySlug)
	assert.Nil(t, city.LocationID)

	local, err := svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "local_admin", CitySlug: "ames", LocationID: "pantry-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeLocation, local.ScopeType)
	require.NotNil(t, local.LocationID)
	assert.Equal(t, "pantry-1", *local.LocationID)
}

func TestCreateGrant_MissingScopeFields(t *testing.T) {
	svc, _, accounts, _ := newPermissionFixture(t, "ames")
	ctx := context.Background()
	seedAccount(t, accounts, "vol@example.org", "Vol")

	_, err := svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "city_admin",
	})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))

	_, err = svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "local_admin", CitySlug: "ames",
	})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestCreateGrant_UnknownCityAndLocation(t *testing.T) {
	svc, _, accounts, _ := newPermissionFixture(t, "ames")
	ctx := context.Background()
	seedAccount(t, accounts, "vol@example.org", "Vol")

	_, err := svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "city_admin", CitySlug: "nowhere",
	})
	assert.Equal(t, "NOT_FOUND", appCode(t, err))

	_, err = svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "local_admin", CitySlug: "ames", LocationID: "ghost",
	})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestCreateGrant_InvalidRole(t *testing.T) {
	svc, _, accounts, _ := newPermissionFixture(t, "ames")
	seedAccount(t, accounts, "vol@example.org", "Vol")

	_, err := svc.CreateGrant(context.Background(), superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "owner", CitySlug: "ames",
	})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestCreateGrant_DuplicateTuple(t *testing.T) {
	svc, _, accounts, _ := newPermissionFixture(t, "ames")
	ctx := context.Background()
	seedAccount(t, accounts, "vol@example.org", "Vol")

	input := CreateGrantInput{UserEmail: "vol@example.org", Role: "city_admin", CitySlug: "ames"}
	_, err := svc.CreateGrant(ctx, superAccess(), input)
	require.NoError(t, err)

	_, err = svc.CreateGrant(ctx, superAccess(), input)
	assert.Equal(t, "CONFLICT", appCode(t, err))
}

func TestDeleteGrant(t *testing.T) {
	svc, _, accounts, assignments := newPermissionFixture(t, "ames")
	ctx := context.Background()
	seedAccount(t, accounts, "vol@example.org", "Vol")

	created, err := svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "city_admin", CitySlug: "ames",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGrant(ctx, superAccess(), created.ID))
	rows, err := assignments.List(ctx, stubDB{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = svc.DeleteGrant(ctx, cityAccess("ames"), created.ID)
	assert.Equal(t, "FORBIDDEN", appCode(t, err))
}

func TestOverview(t *testing.T) {
	svc, store, accounts, _ := newPermissionFixture(t, "ames")
	ctx := context.Background()
	seedAccount(t, accounts, "vol@example.org", "Vol")
	seedAccount(t, accounts, "zed@example.org", "")

	_, err := store.UpsertResource(ctx, "ames", domain.CategoryFood, "pantry-1", domain.ResourceFields{
		Name: "Pantry", Address: "1 Main St",
	})
	require.NoError(t, err)

	_, err = svc.CreateGrant(ctx, superAccess(), CreateGrantInput{
		UserEmail: "vol@example.org", Role: "local_admin", CitySlug: "ames", LocationID: "pantry-1",
	})
	require.NoError(t, err)

	overview, err := svc.Overview(ctx, superAccess())
	require.NoError(t, err)
	assert.Len(t, overview.Assignments, 1)
	assert.Len(t, overview.Users, 2)
	require.Len(t, overview.Cities, 1)
	assert.Equal(t, "ames", overview.Cities[0].Slug)
	require.Contains(t, overview.LocationsByCity, "ames")
	require.Len(t, overview.LocationsByCity["ames"], 1)
	assert.Equal(t, "pantry-1", overview.LocationsByCity["ames"][0].ID)

	_, err = svc.Overview(ctx, cityAccess("ames"))
	assert.Equal(t, "FORBIDDEN", appCode(t, err))
}
