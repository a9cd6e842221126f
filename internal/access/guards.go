package access

import "github.com/ournewbridge/directory/internal/domain"

// Guards are pure predicates over a resolved AdminAccess. They do no I/O and
// compare slugs and ids exactly as given; callers lowercase city slugs before
// calling.

// CanManageCity reports whether the access grants city-wide management. A
// local_admin's city appears in the derived city set, but without the
// city_admin role that never unlocks full-city control.
func CanManageCity(a domain.AdminAccess, citySlug string) bool {
	if a.IsSuperAdmin {
		return true
	}
	return a.HasCitySlug(citySlug) && a.HasRole(domain.RoleCityAdmin)
}

// CanManageLocation reports whether the access grants management of one
// specific location, either through city-wide rights or a direct location
// scope.
func CanManageLocation(a domain.AdminAccess, citySlug, locationID string) bool {
	if a.IsSuperAdmin {
		return true
	}
	if CanManageCity(a, citySlug) {
		return true
	}
	return a.HasLocationScope(citySlug, locationID)
}

// CanReviewResourceUpdate reports whether the access may approve or reject a
// suggestion. A new-resource proposal (no external id) needs city-wide
// rights; an edit to an existing resource only needs rights over that
// location.
func CanReviewResourceUpdate(a domain.AdminAccess, citySlug, resourceExternalID string) bool {
	if a.IsSuperAdmin {
		return true
	}
	if resourceExternalID == "" {
		return CanManageCity(a, citySlug)
	}
	return CanManageLocation(a, citySlug, resourceExternalID)
}
