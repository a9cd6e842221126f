package handler

import (
	"net/http"

	"github.com/ournewbridge/directory/internal/auth"
	"github.com/ournewbridge/directory/internal/service"
)

// UpdateHandler handles contributor update submission.
type UpdateHandler struct {
	updates *service.UpdateService
}

// NewUpdateHandler creates a new UpdateHandler.
func NewUpdateHandler(updates *service.UpdateService) *UpdateHandler {
	return &UpdateHandler{updates: updates}
}

// Submit handles POST /updates.
func (h *UpdateHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input service.SubmitInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	req, err := h.updates.Submit(r.Context(), auth.PrincipalFromContext(r.Context()), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, req)
}
