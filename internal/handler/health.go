package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ournewbridge/directory/internal/infra"
)

// HealthHandler reports process liveness and store health.
type HealthHandler struct {
	pool *pgxpool.Pool
	mode string
}

// NewHealthHandler creates a HealthHandler. pool is nil in file mode.
func NewHealthHandler(pool *pgxpool.Pool, mode string) *HealthHandler {
	return &HealthHandler{pool: pool, mode: mode}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok", "mode": h.mode}

	if h.pool != nil {
		if err := infra.HealthCheck(r.Context(), h.pool); err != nil {
			body["status"] = "degraded"
			body["database"] = "unreachable"
			RespondJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "ok"
	}

	RespondJSON(w, http.StatusOK, body)
}
