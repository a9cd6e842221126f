package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/infra"
)

// report-consumer drains the issue-report topic and surfaces each report as a
// structured log line for the on-call maintainer. It is the smallest possible
// sink; notification fan-out (email, Slack) hangs off these logs.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("report consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	groupID := os.Getenv("REPORT_CONSUMER_GROUP")
	if groupID == "" {
		groupID = "directory-report-consumer"
	}

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, cfg.ReportTopic, groupID, logger)
	defer consumer.Close()

	logger.Info("report-consumer starting", "topic", cfg.ReportTopic, "group", groupID)

	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("report-consumer shutting down")
				return nil
			}
			logger.Error("read message", "error", err)
			continue
		}

		var report domain.IssueReport
		if err := json.Unmarshal(msg.Value, &report); err != nil {
			logger.Error("malformed issue report", "error", err, "offset", msg.Offset)
			continue
		}

		logger.Info("issue report",
			"resource_id", report.ResourceID,
			"resource_name", report.ResourceName,
			"issue_type", report.IssueType,
			"description", report.Description,
			"reporter", report.ReporterEmail,
			"submitted_at", report.SubmittedAt,
		)
	}
}
