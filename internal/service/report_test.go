package service

import (
	"context"
	"testing"
	"time"

	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/guard"
	"github.com/ournewbridge/directory/internal/infra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportFixture(limit int) *ReportService {
	limiter := guard.NewFixedWindowLimiter(limit, time.Hour)
	producer := infra.NewKafkaProducer("", false, discardLogger())
	return NewReportService(limiter, producer, "issue-reports", discardLogger())
}

func validReport() domain.IssueReport {
	return domain.IssueReport{
		ResourceID:  "pantry-1",
		IssueType:   "closed",
		Description: "permanently closed since June",
	}
}

func TestReportSubmit_MissingFields(t *testing.T) {
	svc := newReportFixture(5)

	for _, report := range []domain.IssueReport{
		{IssueType: "closed", Description: "x"},
		{ResourceID: "r1", Description: "x"},
		{ResourceID: "r1", IssueType: "closed"},
	} {
		err := svc.Submit(context.Background(), "1.2.3.4", report)
		assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
	}
}

func TestReportSubmit_RateLimitPerClient(t *testing.T) {
	svc := newReportFixture(2)
	ctx := context.Background()

	require.NoError(t, svc.Submit(ctx, "1.2.3.4", validReport()))
	require.NoError(t, svc.Submit(ctx, "1.2.3.4", validReport()))

	err := svc.Submit(ctx, "1.2.3.4", validReport())
	assert.Equal(t, "RATE_LIMITED", appCode(t, err))

	// A different client is unaffected.
	assert.NoError(t, svc.Submit(ctx, "5.6.7.8", validReport()))
}

func TestReportSubmit_ValidationBeforeRateLimit(t *testing.T) {
	// Validation runs first, so garbage does not burn the window.
	svc := newReportFixture(1)
	ctx := context.Background()

	err := svc.Submit(ctx, "1.2.3.4", domain.IssueReport{})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))

	assert.NoError(t, svc.Submit(ctx, "1.2.3.4", validReport()))
}
