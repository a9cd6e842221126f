package domain

import (
	"time"

	"github.com/google/uuid"
)

// UpdateStatus is the moderation state of a contributor suggestion. The only
// legal transition is out of pending; approved and rejected are terminal.
type UpdateStatus string

const (
	UpdatePending  UpdateStatus = "pending"
	UpdateApproved UpdateStatus = "approved"
	UpdateRejected UpdateStatus = "rejected"
)

// ChangeType distinguishes a brand-new resource proposal from an edit.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeUpdate ChangeType = "update"
)

// AvailabilityStatus is a contributor's report of whether a resource still
// operates.
type AvailabilityStatus string

const (
	AvailabilityYes     AvailabilityStatus = "yes"
	AvailabilityNo      AvailabilityStatus = "no"
	AvailabilityNotSure AvailabilityStatus = "not_sure"
)

// NormalizeAvailability maps arbitrary input to a valid availability status,
// or empty when the value is unrecognized.
func NormalizeAvailability(s string) AvailabilityStatus {
	switch AvailabilityStatus(s) {
	case AvailabilityYes, AvailabilityNo, AvailabilityNotSure:
		return AvailabilityStatus(s)
	}
	return ""
}

// UpdatePayload is the proposed field set of a suggestion. Fields are
// optional at submission; name and address are enforced at approval time.
type UpdatePayload struct {
	ResourceID         string             `json:"resource_id,omitempty"`
	Name               string             `json:"name"`
	Address            string             `json:"address"`
	Lat                *float64           `json:"lat,omitempty"`
	Lng                *float64           `json:"lng,omitempty"`
	Hours              string             `json:"hours,omitempty"`
	DaysOpen           string             `json:"days_open,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	Website            string             `json:"website,omitempty"`
	RequiresID         bool               `json:"requires_id,omitempty"`
	WalkIn             bool               `json:"walk_in,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	Category           Category           `json:"category,omitempty"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status,omitempty"`
}

// ResourceUpdateRequest is one proposed change to exactly one resource,
// queued for admin review.
type ResourceUpdateRequest struct {
	ID                 uuid.UUID     `json:"id"`
	CitySlug           string        `json:"city_slug"`
	ResourceExternalID *string       `json:"resource_external_id"`
	Category           Category      `json:"category"`
	ChangeType         ChangeType    `json:"change_type"`
	Payload            UpdatePayload `json:"payload"`
	Status             UpdateStatus  `json:"status"`
	SubmittedByEmail   string        `json:"submitted_by_email"`
	SubmittedByName    *string       `json:"submitted_by_name"`
	SubmittedAt        time.Time     `json:"submitted_at"`
	ReviewedByEmail    *string       `json:"reviewed_by_email"`
	ReviewedAt         *time.Time    `json:"reviewed_at"`
	ReviewNote         *string       `json:"review_note"`
}
