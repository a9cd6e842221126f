package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ournewbridge/directory/internal/access"
	"github.com/ournewbridge/directory/internal/auth"
	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/handler"
	"github.com/ournewbridge/directory/internal/service"
)

// UpdatesHandler handles the admin review queue.
type UpdatesHandler struct {
	updates  *service.UpdateService
	resolver *access.Resolver
}

// NewUpdatesHandler creates a new UpdatesHandler.
func NewUpdatesHandler(updates *service.UpdateService, resolver *access.Resolver) *UpdatesHandler {
	return &UpdatesHandler{updates: updates, resolver: resolver}
}

// ListPending handles GET /admin/updates.
func (h *UpdatesHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	pending, err := h.updates.ListPending(r.Context(), adminAccess)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if pending == nil {
		pending = []domain.ResourceUpdateRequest{}
	}
	handler.RespondJSON(w, http.StatusOK, pending)
}

// Resolve handles POST /admin/updates/{id}/resolve.
func (h *UpdatesHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid update request id"))
		return
	}

	var input struct {
		Action string `json:"action"`
		Note   string `json:"note"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	reviewer := ""
	if principal := auth.PrincipalFromContext(r.Context()); principal != nil {
		reviewer = domain.NormalizeEmail(principal.Email)
	}

	resolved, err := h.updates.Resolve(r.Context(), adminAccess, reviewer, id, service.ResolveAction(input.Action), input.Note)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, resolved)
}
