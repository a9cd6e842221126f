package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ournewbridge/directory/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// AssignmentRepository provides access to admin_role_assignments.
type AssignmentRepository interface {
	// ListByEmail returns every assignment row for the normalized email.
	ListByEmail(ctx context.Context, db DBTX, email string) ([]domain.AdminRoleAssignment, error)

	// List returns all assignments ordered for the admin UI.
	List(ctx context.Context, db DBTX) ([]domain.AdminRoleAssignment, error)

	// Exists reports whether an identical grant tuple is already present.
	Exists(ctx context.Context, db DBTX, email string, role domain.Role, scope domain.ScopeType, citySlug, locationID *string) (bool, error)

	// Insert creates a new assignment.
	Insert(ctx context.Context, db DBTX, a *domain.AdminRoleAssignment) error

	// Delete removes an assignment by id. Deleting a missing id is not an error.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// DistinctEmails returns every email holding at least one assignment.
	DistinctEmails(ctx context.Context, db DBTX) ([]string, error)
}

// UpdateRequestRepository provides access to resource_update_requests.
type UpdateRequestRepository interface {
	// Insert persists a new pending request.
	Insert(ctx context.Context, db DBTX, req *domain.ResourceUpdateRequest) error

	// FindByID returns a request by id, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.ResourceUpdateRequest, error)

	// ListPending returns all pending requests, most recent first.
	ListPending(ctx context.Context, db DBTX) ([]domain.ResourceUpdateRequest, error)

	// MarkResolved flips a pending request to the given terminal status and
	// stamps the reviewer metadata. The update is conditional on the row
	// still being pending; it returns false when another reviewer won.
	MarkResolved(ctx context.Context, db DBTX, id uuid.UUID, status domain.UpdateStatus, reviewerEmail string, reviewedAt time.Time, note *string) (bool, error)
}

// AccountRepository provides access to user_accounts.
type AccountRepository interface {
	// FindByEmail returns an account by normalized email, or nil if not found.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.UserAccount, error)

	// Create inserts a new account.
	Create(ctx context.Context, db DBTX, account *domain.UserAccount) error

	// List returns all accounts ordered by email.
	List(ctx context.Context, db DBTX) ([]domain.UserAccount, error)
}
