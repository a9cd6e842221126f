package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ournewbridge/directory/internal/domain"
)

// PgAccountRepository implements AccountRepository using pgx.
type PgAccountRepository struct{}

// NewPgAccountRepository creates a new PgAccountRepository.
func NewPgAccountRepository() *PgAccountRepository {
	return &PgAccountRepository{}
}

// FindByEmail returns an account by normalized email, or nil if not found.
func (r *PgAccountRepository) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.UserAccount, error) {
	row := db.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at
		 FROM user_accounts WHERE email = $1`, email)

	a := &domain.UserAccount{}
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new account.
func (r *PgAccountRepository) Create(ctx context.Context, db DBTX, account *domain.UserAccount) error {
	_, err := db.Exec(ctx,
		`INSERT INTO user_accounts (id, email, name, password_hash) VALUES ($1, $2, $3, $4)`,
		account.ID, account.Email, account.Name, account.PasswordHash)
	return err
}

// List returns all accounts ordered by email.
func (r *PgAccountRepository) List(ctx context.Context, db DBTX) ([]domain.UserAccount, error) {
	rows, err := db.Query(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at
		 FROM user_accounts ORDER BY email ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserAccount
	for rows.Next() {
		var a domain.UserAccount
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
