package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/road-accident-insight/internal/adapter/http"
	"github.com/couchcryptid/road-accident-insight/internal/config"
	"github.com/couchcryptid/road-accident-insight/internal/observability"
	"github.com/couchcryptid/road-accident-insight/internal/pipeline"
	"github.com/couchcryptid/road-accident-insight/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := pipeline.NewLoader(logger, metrics)
	datasets := store.New(loader, logger, metrics, cfg.DatasetCacheSize)

	// Warm the cache so the first request doesn't pay the cleaning cost and
	// a bad dataset path fails at startup instead of at request time.
	if _, diag, err := datasets.Load(cfg.DatasetPath); err != nil {
		logger.Error("failed to load dataset", "path", cfg.DatasetPath, "error", err)
		os.Exit(1)
	} else {
		logger.Info("dataset ready",
			"path", cfg.DatasetPath,
			"rows_raw", diag.RowsRaw,
			"rows_clean", diag.RowsClean,
			"duplicates_dropped", diag.DuplicateAccidentIndex,
		)
	}

	srv := httpadapter.NewServer(cfg, datasets, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
