// migrate-images copies images stored inline in the database by older
// deployments into blob storage. Safe to run repeatedly.
// Run: go run ./cmd/migrate-images
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/ErlanBelekov/campus-marketplace/config"
	"github.com/ErlanBelekov/campus-marketplace/internal/filestore"
	"github.com/ErlanBelekov/campus-marketplace/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/campus-marketplace/internal/log"
	"github.com/ErlanBelekov/campus-marketplace/internal/migration"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	blobs, err := filestore.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("blob storage: %v", err)
	}

	m := migration.NewImageMigrator(postgres.NewLegacyImageRepository(pool), blobs, logger)
	results, err := m.Run(ctx)
	if err != nil {
		log.Fatalf("migrate images: %v", err)
	}

	failed := 0
	for kind, res := range results {
		logger.Info("migration summary", "kind", kind, "migrated", res.Migrated, "failed", res.Failed)
		failed += res.Failed
	}
	if failed > 0 {
		stop()
		pool.Close()
		os.Exit(1)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
