package domain

import "time"

// Category is the kind of help a resource provides.
type Category string

const (
	CategoryFood    Category = "food"
	CategoryShelter Category = "shelter"
	CategoryHousing Category = "housing"
	CategoryLegal   Category = "legal"
)

// Categories lists all resource categories in display order.
func Categories() []Category {
	return []Category{CategoryFood, CategoryShelter, CategoryHousing, CategoryLegal}
}

// ParseCategory returns the category and whether the string names a known one.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryFood, CategoryShelter, CategoryHousing, CategoryLegal:
		return Category(s), true
	}
	return "", false
}

// City is one deployment city of the directory.
type City struct {
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	State       string     `json:"state"`
	FullName    string     `json:"full_name,omitempty"`
	Tagline     string     `json:"tagline,omitempty"`
	Description string     `json:"description,omitempty"`
	CenterLat   float64    `json:"center_lat"`
	CenterLng   float64    `json:"center_lng"`
	DefaultZoom int        `json:"default_zoom"`
	Resources   []Resource `json:"resources,omitempty"`
}

// Resource is one location on the map. ExternalID is the stable identifier
// carried across imports and exports; it is unique per (city, category).
type Resource struct {
	ExternalID         string             `json:"id"`
	CitySlug           string             `json:"city_slug,omitempty"`
	Category           Category           `json:"category"`
	Name               string             `json:"name"`
	Address            string             `json:"address"`
	Lat                *float64           `json:"lat"`
	Lng                *float64           `json:"lng"`
	Hours              string             `json:"hours,omitempty"`
	DaysOpen           string             `json:"days_open,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	Website            string             `json:"website,omitempty"`
	RequiresID         bool               `json:"requires_id"`
	WalkIn             bool               `json:"walk_in"`
	Notes              string             `json:"notes,omitempty"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status,omitempty"`
	LastAvailableAt    *time.Time         `json:"last_available_at,omitempty"`
}

// ResourceFields is the writable field set passed to the directory store on
// upsert. All payload fields flow through here; identity (city, category,
// external id) travels separately.
type ResourceFields struct {
	Name               string
	Address            string
	Lat                *float64
	Lng                *float64
	Hours              string
	DaysOpen           string
	Phone              string
	Website            string
	RequiresID         bool
	WalkIn             bool
	Notes              string
	AvailabilityStatus AvailabilityStatus
	LastAvailableAt    *time.Time
}
