package handler

import (
	"net/http"

	"github.com/ournewbridge/directory/internal/auth"
	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/service"
)

// ReportHandler handles anonymous issue reports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Submit handles POST /reports. Works signed in or anonymous; a signed-in
// reporter's email is attached and used as the rate-limit key.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var report domain.IssueReport
	if err := DecodeJSON(r, &report); err != nil {
		RespondBadBody(w)
		return
	}

	clientKey := ClientIP(r)
	if principal := auth.PrincipalFromContext(r.Context()); principal != nil && principal.Email != "" {
		report.ReporterEmail = principal.Email
		clientKey = domain.NormalizeEmail(principal.Email)
	}

	if err := h.reports.Submit(r.Context(), clientKey, report); err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusAccepted, map[string]string{"status": "received"})
}
