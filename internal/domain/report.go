package domain

import "time"

// IssueReport is an anonymous "something is wrong with this listing" report.
// Reports bypass the moderation queue and go straight to the notification
// sink; they never mutate directory data.
type IssueReport struct {
	ResourceID      string    `json:"resource_id"`
	ResourceName    string    `json:"resource_name,omitempty"`
	ResourceAddress string    `json:"resource_address,omitempty"`
	IssueType       string    `json:"issue_type"`
	Description     string    `json:"description"`
	ReporterEmail   string    `json:"reporter_email,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}
