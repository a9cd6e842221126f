package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type contextKey string

const principalKey contextKey = "auth_principal"

// Principal is the authenticated identity attached to a request context.
type Principal struct {
	Email      string
	Name       string
	Role       string
	SuperAdmin bool
}

// PrincipalFromContext extracts the principal from a request context, or nil
// when the request is anonymous.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// Authenticate returns middleware that requires a valid bearer session token.
func Authenticate(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr)
			if err != nil {
				http.Error(w, `{"code":"UNAUTHORIZED","message":"`+err.Error()+`"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), claims)))
		})
	}
}

// MaybeAuthenticate returns middleware that attaches a principal when a valid
// token is present but lets anonymous requests through. Used on endpoints that
// accept both (issue reports).
func MaybeAuthenticate(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := extractAndValidate(r, jwtMgr); err == nil {
				r = r.WithContext(withPrincipal(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withPrincipal(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, principalKey, &Principal{
		Email:      claims.Email,
		Name:       claims.Name,
		Role:       claims.Role,
		SuperAdmin: claims.SuperAdmin,
	})
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("invalid Authorization format")
	}

	return jwtMgr.ValidateToken(parts[1])
}
