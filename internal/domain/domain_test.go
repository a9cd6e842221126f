package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.org",
		"tagged+inbox@example.co",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"not-an-email",
		"@example.com",
		"user@",
		"user@host",
		"user @example.com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidateSlug(t *testing.T) {
	valid := []string{"ames", "des-moines", "cedar-rapids-2"}
	for _, slug := range valid {
		assert.NoError(t, ValidateSlug(slug), slug)
	}

	invalid := []string{"", "Ames", "des moines", "-ames", "ames-", "des--moines", "des_moines"}
	for _, slug := range invalid {
		assert.Error(t, ValidateSlug(slug), slug)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"super_admin", "city_admin", "local_admin"} {
		role, ok := ParseRole(s)
		require.True(t, ok, s)
		assert.Equal(t, Role(s), role)
	}

	_, ok := ParseRole("moderator")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestParseScopeType(t *testing.T) {
	for _, s := range []string{"global", "city", "location"} {
		scope, ok := ParseScopeType(s)
		require.True(t, ok, s)
		assert.Equal(t, ScopeType(s), scope)
	}

	_, ok := ParseScopeType("region")
	assert.False(t, ok)
}

func TestScopeForRole(t *testing.T) {
	assert.Equal(t, ScopeGlobal, ScopeForRole(RoleSuperAdmin))
	assert.Equal(t, ScopeCity, ScopeForRole(RoleCityAdmin))
	assert.Equal(t, ScopeLocation, ScopeForRole(RoleLocalAdmin))
}

func TestParseCategory(t *testing.T) {
	for _, s := range []string{"food", "shelter", "housing", "legal"} {
		cat, ok := ParseCategory(s)
		require.True(t, ok, s)
		assert.Equal(t, Category(s), cat)
	}

	_, ok := ParseCategory("medical")
	assert.False(t, ok)
}

func TestCategories_CoversAllKnown(t *testing.T) {
	cats := Categories()
	assert.Equal(t, []Category{CategoryFood, CategoryShelter, CategoryHousing, CategoryLegal}, cats)
}

func TestNormalizeAvailability(t *testing.T) {
	assert.Equal(t, AvailabilityYes, NormalizeAvailability("yes"))
	assert.Equal(t, AvailabilityNo, NormalizeAvailability("no"))
	assert.Equal(t, AvailabilityNotSure, NormalizeAvailability("not_sure"))
	assert.Equal(t, AvailabilityStatus(""), NormalizeAvailability("maybe"))
	assert.Equal(t, AvailabilityStatus(""), NormalizeAvailability(""))
}

func TestAdminAccess_Helpers(t *testing.T) {
	a := AdminAccess{
		IsAdmin:   true,
		Roles:     []Role{RoleCityAdmin, RoleLocalAdmin},
		CitySlugs: []string{"ames"},
		LocationScopes: []LocationScope{
			{CitySlug: "des-moines", LocationID: "loc-1"},
		},
	}

	assert.True(t, a.HasRole(RoleCityAdmin))
	assert.False(t, a.HasRole(RoleSuperAdmin))

	assert.True(t, a.HasCitySlug("ames"))
	assert.False(t, a.HasCitySlug("des-moines"))

	assert.True(t, a.HasLocationScope("des-moines", "loc-1"))
	assert.False(t, a.HasLocationScope("des-moines", "loc-2"))
	assert.False(t, a.HasLocationScope("ames", "loc-1"))
}

func TestSuperAdminAccess(t *testing.T) {
	a := SuperAdminAccess()
	assert.True(t, a.IsAdmin)
	assert.True(t, a.IsSuperAdmin)
	assert.True(t, a.HasRole(RoleSuperAdmin))
}

func TestAppError(t *testing.T) {
	t.Run("formats code and message", func(t *testing.T) {
		err := ErrNotFound("city", "nowhere")
		assert.Equal(t, "NOT_FOUND", err.Code)
		assert.Equal(t, 404, err.Status)
		assert.Equal(t, "NOT_FOUND: city nowhere not found", err.Error())
	})

	t.Run("wraps cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrInternal("query failed", cause)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("status codes", func(t *testing.T) {
		assert.Equal(t, 409, ErrConflict("dup").Status)
		assert.Equal(t, 400, ErrValidation("bad").Status)
		assert.Equal(t, 401, ErrUnauthorized("no").Status)
		assert.Equal(t, 403, ErrForbidden("no").Status)
		assert.Equal(t, 400, ErrStoreUnavailable("feature").Status)
		assert.Equal(t, 429, ErrRateLimited("slow").Status)
	})

	t.Run("store unavailable names the feature", func(t *testing.T) {
		err := ErrStoreUnavailable("permission management")
		assert.Contains(t, err.Message, "permission management")
		assert.Contains(t, err.Message, "database-backed")
	})
}
