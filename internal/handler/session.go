package handler

import (
	"net/http"

	"github.com/ournewbridge/directory/internal/access"
	"github.com/ournewbridge/directory/internal/auth"
	"github.com/ournewbridge/directory/internal/service"
)

// SessionHandler handles registration, login and the admin password flow.
type SessionHandler struct {
	sessions *service.SessionService
	resolver *access.Resolver
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService, resolver *access.Resolver) *SessionHandler {
	return &SessionHandler{sessions: sessions, resolver: resolver}
}

// Register handles POST /auth/register.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.sessions.Register(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

// Login handles POST /auth/login.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.sessions.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// AdminLogin handles POST /auth/admin-login.
func (h *SessionHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password string `json:"password"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.sessions.AdminLogin(r.Context(), input.Password)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// Me handles GET /auth/me. Returns the principal plus its resolved admin
// rights, which is what the frontend gates its UI on.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	adminAccess, err := ResolveAccess(r, h.resolver)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"email":  principal.Email,
		"name":   principal.Name,
		"role":   principal.Role,
		"access": adminAccess,
	})
}
