package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ournewbridge/directory/internal/domain"
)

// PgAssignmentRepository implements AssignmentRepository using pgx.
type PgAssignmentRepository struct{}

// NewPgAssignmentRepository creates a new PgAssignmentRepository.
func NewPgAssignmentRepository() *PgAssignmentRepository {
	return &PgAssignmentRepository{}
}

const assignmentColumns = `id, user_email, role, scope_type, city_slug, location_id, created_at, updated_at`

// ListByEmail returns every assignment row for the normalized email. Role and
// scope strings are returned as stored; the access resolver filters unknown
// values.
func (r *PgAssignmentRepository) ListByEmail(ctx context.Context, db DBTX, email string) ([]domain.AdminRoleAssignment, error) {
	rows, err := db.Query(ctx,
		`SELECT `+assignmentColumns+`
		 FROM admin_role_assignments
		 WHERE LOWER(user_email) = $1`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// List returns all assignments ordered for the admin UI.
func (r *PgAssignmentRepository) List(ctx context.Context, db DBTX) ([]domain.AdminRoleAssignment, error) {
	rows, err := db.Query(ctx,
		`SELECT `+assignmentColumns+`
		 FROM admin_role_assignments
		 ORDER BY user_email ASC, role ASC, city_slug ASC NULLS FIRST, location_id ASC NULLS FIRST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// Exists reports whether an identical grant tuple is already present.
func (r *PgAssignmentRepository) Exists(ctx context.Context, db DBTX, email string, role domain.Role, scope domain.ScopeType, citySlug, locationID *string) (bool, error) {
	var found bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM admin_role_assignments
		   WHERE user_email = $1
		     AND role = $2
		     AND scope_type = $3
		     AND city_slug IS NOT DISTINCT FROM $4
		     AND location_id IS NOT DISTINCT FROM $5
		 )`, email, string(role), string(scope), citySlug, locationID).Scan(&found)
	return found, err
}

// Insert creates a new assignment.
func (r *PgAssignmentRepository) Insert(ctx context.Context, db DBTX, a *domain.AdminRoleAssignment) error {
	_, err := db.Exec(ctx,
		`INSERT INTO admin_role_assignments (id, user_email, role, scope_type, city_slug, location_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.UserEmail, string(a.Role), string(a.ScopeType), a.CitySlug, a.LocationID)
	return err
}

// Delete removes an assignment by id.
func (r *PgAssignmentRepository) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, `DELETE FROM admin_role_assignments WHERE id = $1`, id)
	return err
}

// DistinctEmails returns every email holding at least one assignment.
func (r *PgAssignmentRepository) DistinctEmails(ctx context.Context, db DBTX) ([]string, error) {
	rows, err := db.Query(ctx,
		`SELECT DISTINCT user_email FROM admin_role_assignments ORDER BY user_email ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func scanAssignments(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.AdminRoleAssignment, error) {
	var out []domain.AdminRoleAssignment
	for rows.Next() {
		var a domain.AdminRoleAssignment
		var role, scope string
		if err := rows.Scan(&a.ID, &a.UserEmail, &role, &scope, &a.CitySlug, &a.LocationID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Role = domain.Role(role)
		a.ScopeType = domain.ScopeType(scope)
		out = append(out, a)
	}
	return out, rows.Err()
}
