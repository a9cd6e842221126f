package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ournewbridge/directory/internal/access"
	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/handler"
	"github.com/ournewbridge/directory/internal/service"
)

// PermissionsHandler handles role assignment administration.
type PermissionsHandler struct {
	permissions *service.PermissionService
	resolver    *access.Resolver
}

// NewPermissionsHandler creates a new PermissionsHandler.
func NewPermissionsHandler(permissions *service.PermissionService, resolver *access.Resolver) *PermissionsHandler {
	return &PermissionsHandler{permissions: permissions, resolver: resolver}
}

// Overview handles GET /admin/permissions.
func (h *PermissionsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	overview, err := h.permissions.Overview(r.Context(), adminAccess)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, overview)
}

// Create handles POST /admin/permissions.
func (h *PermissionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var input service.CreateGrantInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	assignment, err := h.permissions.CreateGrant(r.Context(), adminAccess, input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, assignment)
}

// Delete handles DELETE /admin/permissions/{id}.
func (h *PermissionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid assignment id"))
		return
	}

	if err := h.permissions.DeleteGrant(r.Context(), adminAccess, id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
