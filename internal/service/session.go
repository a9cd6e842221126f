package service

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/ournewbridge/directory/internal/auth"
	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// SessionService handles contributor registration and login, plus the
// password-gated super-admin session flow.
type SessionService struct {
	db                repository.DBTX
	accounts          repository.AccountRepository
	jwtMgr            *auth.JWTManager
	adminPassword     string
	adminPasswordHash string
	logger            *slog.Logger
}

// NewSessionService creates a SessionService. db may be nil in file mode, in
// which case contributor accounts are unavailable but the admin password flow
// still works.
func NewSessionService(db repository.DBTX, accounts repository.AccountRepository, jwtMgr *auth.JWTManager, adminPassword, adminPasswordHash string, logger *slog.Logger) *SessionService {
	return &SessionService{
		db:                db,
		accounts:          accounts,
		jwtMgr:            jwtMgr,
		adminPassword:     adminPassword,
		adminPasswordHash: adminPasswordHash,
		logger:            logger,
	}
}

// SessionResult is a freshly minted session.
type SessionResult struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// RegisterInput is a new contributor account request.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates a contributor account and returns a session for it.
func (s *SessionService) Register(ctx context.Context, input RegisterInput) (*SessionResult, error) {
	if s.db == nil {
		return nil, domain.ErrStoreUnavailable("contributor accounts")
	}

	email := domain.NormalizeEmail(input.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}

	existing, err := s.accounts.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	account := &domain.UserAccount{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
	}
	if err := s.accounts.Create(ctx, s.db, account); err != nil {
		return nil, domain.ErrInternal("create account", err)
	}

	token, err := s.jwtMgr.GenerateContributorToken(account.Email, account.Name)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	s.logger.Info("account registered", "email", account.Email)
	return &SessionResult{Token: token, Email: account.Email, Name: account.Name, Role: auth.RoleContributor}, nil
}

// Login authenticates a contributor by email and password.
func (s *SessionService) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	if s.db == nil {
		return nil, domain.ErrStoreUnavailable("contributor accounts")
	}

	email = domain.NormalizeEmail(email)
	account, err := s.accounts.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if account == nil {
		return nil, domain.ErrUnauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid email or password")
	}

	token, err := s.jwtMgr.GenerateContributorToken(account.Email, account.Name)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}
	return &SessionResult{Token: token, Email: account.Email, Name: account.Name, Role: auth.RoleContributor}, nil
}

// AdminLogin exchanges the deployment admin password for a super-admin
// session. ADMIN_PASSWORD_HASH (bcrypt) wins over the plaintext
// ADMIN_PASSWORD when both are set.
func (s *SessionService) AdminLogin(_ context.Context, password string) (*SessionResult, error) {
	if password == "" {
		return nil, domain.ErrUnauthorized("invalid password")
	}

	switch {
	case s.adminPasswordHash != "":
		if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)); err != nil {
			return nil, domain.ErrUnauthorized("invalid password")
		}
	case s.adminPassword != "":
		if subtle.ConstantTimeCompare([]byte(s.adminPassword), []byte(password)) != 1 {
			return nil, domain.ErrUnauthorized("invalid password")
		}
	default:
		return nil, domain.ErrUnauthorized("admin login is not configured")
	}

	token, err := s.jwtMgr.GenerateAdminToken()
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	s.logger.Info("admin session issued")
	return &SessionResult{Token: token, Name: "admin", Role: auth.RoleAdmin}, nil
}
