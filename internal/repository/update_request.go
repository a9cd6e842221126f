package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ournewbridge/directory/internal/domain"
)

// PgUpdateRequestRepository implements UpdateRequestRepository using pgx.
// The payload column is jsonb.
type PgUpdateRequestRepository struct{}

// NewPgUpdateRequestRepository creates a new PgUpdateRequestRepository.
func NewPgUpdateRequestRepository() *PgUpdateRequestRepository {
	return &PgUpdateRequestRepository{}
}

const updateRequestColumns = `id, city_slug, resource_external_id, category, change_type, payload,
	status, submitted_by_email, submitted_by_name, submitted_at,
	reviewed_by_email, reviewed_at, review_note`

// Insert persists a new pending request.
func (r *PgUpdateRequestRepository) Insert(ctx context.Context, db DBTX, req *domain.ResourceUpdateRequest) error {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx,
		`INSERT INTO resource_update_requests
		   (id, city_slug, resource_external_id, category, change_type, payload, status, submitted_by_email, submitted_by_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID, req.CitySlug, req.ResourceExternalID, string(req.Category), string(req.ChangeType),
		payload, string(req.Status), req.SubmittedByEmail, req.SubmittedByName)
	return err
}

// FindByID returns a request by id, or nil when absent.
func (r *PgUpdateRequestRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.ResourceUpdateRequest, error) {
	row := db.QueryRow(ctx,
		`SELECT `+updateRequestColumns+` FROM resource_update_requests WHERE id = $1`, id)

	req, err := scanUpdateRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListPending returns all pending requests, most recent first.
func (r *PgUpdateRequestRepository) ListPending(ctx context.Context, db DBTX) ([]domain.ResourceUpdateRequest, error) {
	rows, err := db.Query(ctx,
		`SELECT `+updateRequestColumns+`
		 FROM resource_update_requests
		 WHERE status = 'pending'
		 ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ResourceUpdateRequest
	for rows.Next() {
		req, err := scanUpdateRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// MarkResolved flips a pending request to a terminal status. The WHERE clause
// doubles as the concurrency guard: when two reviewers race, the second one
// matches zero rows.
func (r *PgUpdateRequestRepository) MarkResolved(ctx context.Context, db DBTX, id uuid.UUID, status domain.UpdateStatus, reviewerEmail string, reviewedAt time.Time, note *string) (bool, error) {
	tag, err := db.Exec(ctx,
		`UPDATE resource_update_requests
		 SET status = $2, reviewed_by_email = $3, reviewed_at = $4, review_note = $5
		 WHERE id = $1 AND status = 'pending'`,
		id, string(status), reviewerEmail, reviewedAt, note)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanUpdateRequest(row pgx.Row) (*domain.ResourceUpdateRequest, error) {
	req := &domain.ResourceUpdateRequest{}
	var category, changeType, status string
	var payload []byte
	err := row.Scan(&req.ID, &req.CitySlug, &req.ResourceExternalID, &category, &changeType, &payload,
		&status, &req.SubmittedByEmail, &req.SubmittedByName, &req.SubmittedAt,
		&req.ReviewedByEmail, &req.ReviewedAt, &req.ReviewNote)
	if err != nil {
		return nil, err
	}
	req.Category = domain.Category(category)
	req.ChangeType = domain.ChangeType(changeType)
	req.Status = domain.UpdateStatus(status)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req.Payload); err != nil {
			return nil, err
		}
	}
	return req, nil
}
