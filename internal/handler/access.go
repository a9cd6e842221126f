package handler

import (
	"net/http"

	"github.com/ournewbridge/directory/internal/access"
	"github.com/ournewbridge/directory/internal/auth"
	"github.com/ournewbridge/directory/internal/domain"
)

// ResolveAccess computes the effective admin rights for the request's
// principal. Anonymous requests get Unauthorized; authenticated requests get
// a fresh access snapshot (which may grant nothing).
func ResolveAccess(r *http.Request, resolver *access.Resolver) (domain.AdminAccess, error) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		return domain.AdminAccess{}, domain.ErrUnauthorized("authentication required")
	}
	return resolver.ResolveForSession(r.Context(), access.SessionUser{
		Email:        principal.Email,
		IsSuperAdmin: principal.SuperAdmin,
	})
}
