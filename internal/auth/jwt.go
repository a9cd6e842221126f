package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session roles. Contributors are ordinary signed-in users; the admin role is
// only issued by the privileged password flow and carries super-admin rights.
const (
	RoleContributor = "contributor"
	RoleAdmin       = "admin"
)

// Claims holds the custom JWT claims for directory sessions.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role"`
	SuperAdmin bool   `json:"super_admin,omitempty"`
}

// JWTManager handles session token generation and validation.
type JWTManager struct {
	secret            []byte
	contributorExpiry time.Duration
	adminExpiry       time.Duration
}

// NewJWTManager creates a JWT manager with role-specific expiry durations.
func NewJWTManager(secret string, contributorExpiry, adminExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:            []byte(secret),
		contributorExpiry: contributorExpiry,
		adminExpiry:       adminExpiry,
	}
}

// GenerateContributorToken creates a signed session token for a contributor.
func (m *JWTManager) GenerateContributorToken(email, name string) (string, error) {
	return m.generate(RoleContributor, email, name, false, m.contributorExpiry)
}

// GenerateAdminToken creates a signed session token for the password-flow
// super admin.
func (m *JWTManager) GenerateAdminToken() (string, error) {
	return m.generate(RoleAdmin, "", "admin", true, m.adminExpiry)
}

func (m *JWTManager) generate(role, email, name string, superAdmin bool, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
		Email:      email,
		Name:       name,
		Role:       role,
		SuperAdmin: superAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a session token, returning claims if valid.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
