package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ournewbridge/directory/internal/directory"
	"github.com/ournewbridge/directory/internal/infra"
	"github.com/ournewbridge/directory/internal/migration"
)

// import copies a file-based deployment (CONFIG_DIR + DATA_DIR) into the
// database named by DATABASE_URL. Run once when a city graduates from JSON
// files to database mode; re-running is safe.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("import failed", "error", err)
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
	if !cfg.UseDatabase() {
		return fmt.Errorf("DATABASE_URL must be set; the importer targets a database deployment")
	}

	if err := infra.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	source := directory.NewFileStore(cfg.ConfigDir, cfg.DataDir)
	target := directory.NewPgStore(pool)

	report, err := migration.NewImporter(source, target, logger).ImportAll(ctx)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	logger.Info("import complete",
		"cities_created", report.CitiesCreated,
		"cities_existing", report.CitiesExisting,
		"resources", report.Resources,
	)
	return nil
}
