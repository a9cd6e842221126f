package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ournewbridge/directory/internal/access"
	"github.com/ournewbridge/directory/internal/handler"
	"github.com/ournewbridge/directory/internal/service"
)

// CitiesHandler handles city onboarding, direct resource edits and the
// operational tooling (validation report, full export).
type CitiesHandler struct {
	cities   *service.CityService
	resolver *access.Resolver
}

// NewCitiesHandler creates a new CitiesHandler.
func NewCitiesHandler(cities *service.CityService, resolver *access.Resolver) *CitiesHandler {
	return &CitiesHandler{cities: cities, resolver: resolver}
}

// CreateCity handles POST /admin/cities.
func (h *CitiesHandler) CreateCity(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var input service.CreateCityInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	city, err := h.cities.CreateCity(r.Context(), adminAccess, input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, city)
}

// UpsertResource handles PUT /admin/cities/{slug}/resources/{category} for
// creation and PUT .../resources/{category}/{id} for edits.
func (h *CitiesHandler) UpsertResource(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var input service.ResourceEditInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	resource, err := h.cities.UpsertResource(r.Context(), adminAccess,
		chi.URLParam(r, "slug"), chi.URLParam(r, "category"), chi.URLParam(r, "id"), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, resource)
}

// DeleteResource handles DELETE /admin/cities/{slug}/resources/{category}/{id}.
func (h *CitiesHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	err = h.cities.DeleteResource(r.Context(), adminAccess,
		chi.URLParam(r, "slug"), chi.URLParam(r, "category"), chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Validate handles GET /admin/cities/validate.
func (h *CitiesHandler) Validate(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	report, err := h.cities.Validate(r.Context(), adminAccess)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, report)
}

// Export handles GET /admin/export.
func (h *CitiesHandler) Export(w http.ResponseWriter, r *http.Request) {
	adminAccess, err := handler.ResolveAccess(r, h.resolver)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	export, err := h.cities.Export(r.Context(), adminAccess)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, export)
}
