package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ournewbridge/directory/internal/app"
	"github.com/ournewbridge/directory/internal/auth"
	"github.com/ournewbridge/directory/internal/directory"
	"github.com/ournewbridge/directory/internal/guard"
	"github.com/ournewbridge/directory/internal/infra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// Storage: Postgres when DATABASE_URL is set, JSON files otherwise.
	// File mode serves the public directory; database-only features
	// (contributor updates, permissions, accounts) degrade per endpoint.
	var pool *pgxpool.Pool
	var store directory.Store

	if cfg.UseDatabase() {
		if err := infra.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		pool, err = infra.NewPostgresPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		store = directory.NewPgStore(pool)
		logger.Info("running in database mode")
	} else {
		store = directory.NewFileStore(cfg.ConfigDir, cfg.DataDir)
		logger.Info("running in file mode", "config_dir", cfg.ConfigDir, "data_dir", cfg.DataDir)
	}

	// Parse JWT expiry durations
	sessionExpiry, err := time.ParseDuration(cfg.JWTSessionExpiry)
	if err != nil {
		return fmt.Errorf("parse session JWT expiry: %w", err)
	}
	adminExpiry, err := time.ParseDuration(cfg.JWTAdminExpiry)
	if err != nil {
		return fmt.Errorf("parse admin JWT expiry: %w", err)
	}
	reportWindow, err := time.ParseDuration(cfg.ReportRateWindow)
	if err != nil {
		return fmt.Errorf("parse report rate window: %w", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, sessionExpiry, adminExpiry)

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	r := app.NewRouter(app.RouterDeps{
		Pool:               pool,
		Store:              store,
		JWTMgr:             jwtMgr,
		Logger:             logger,
		SuperAdminEmails:   cfg.SuperAdminEmails,
		AdminPassword:      cfg.AdminPassword,
		AdminPasswordHash:  cfg.AdminPasswordHash,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ReportLimiter:      guard.NewFixedWindowLimiter(cfg.ReportRateLimit, reportWindow),
		ReportProducer:     producer,
		ReportTopic:        cfg.ReportTopic,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr, "mode", store.Mode())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
