package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ournewbridge/directory/internal/service"
)

// PublicHandler serves the unauthenticated directory reads.
type PublicHandler struct {
	cities *service.CityService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(cities *service.CityService) *PublicHandler {
	return &PublicHandler{cities: cities}
}

// ListCities handles GET /cities.
func (h *PublicHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.cities.ListCities(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, summaries)
}

// GetCity handles GET /cities/{slug}.
func (h *PublicHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	city, err := h.cities.GetCity(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, city)
}

// ListResources handles GET /cities/{slug}/resources?category=food.
func (h *PublicHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.cities.CityResources(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("category"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, resources)
}
