package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/guard"
	"github.com/ournewbridge/directory/internal/infra"
)

// ReportService accepts "something is wrong with this listing" reports and
// forwards them to the notification sink. Reports never touch directory data.
type ReportService struct {
	limiter  *guard.FixedWindowLimiter
	producer *infra.KafkaProducer
	topic    string
	logger   *slog.Logger
}

// NewReportService creates a ReportService.
func NewReportService(limiter *guard.FixedWindowLimiter, producer *infra.KafkaProducer, topic string, logger *slog.Logger) *ReportService {
	return &ReportService{limiter: limiter, producer: producer, topic: topic, logger: logger}
}

// Submit validates, rate-limits and forwards one issue report. clientKey
// identifies the sender for rate limiting (client IP, or email when signed
// in).
func (s *ReportService) Submit(ctx context.Context, clientKey string, report domain.IssueReport) error {
	if strings.TrimSpace(report.ResourceID) == "" ||
		strings.TrimSpace(report.IssueType) == "" ||
		strings.TrimSpace(report.Description) == "" {
		return domain.ErrValidation("resourceId, issueType and description are required")
	}

	if allowed, retryAfter := s.limiter.Allow(clientKey); !allowed {
		return domain.ErrRateLimited(fmt.Sprintf("too many reports, retry in %s", retryAfter.Round(time.Second)))
	}

	if report.SubmittedAt.IsZero() {
		report.SubmittedAt = time.Now().UTC()
	}

	if !s.producer.Enabled() {
		// No sink configured. The structured log line is the delivery.
		s.logger.Info("issue report received",
			"resource_id", report.ResourceID,
			"resource_name", report.ResourceName,
			"issue_type", report.IssueType,
			"description", report.Description,
			"reporter", report.ReporterEmail,
		)
		return nil
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return domain.ErrInternal("encode issue report", err)
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(report.ResourceID), payload); err != nil {
		return domain.ErrInternal("publish issue report", err)
	}

	s.logger.Info("issue report published", "resource_id", report.ResourceID, "issue_type", report.IssueType)
	return nil
}
