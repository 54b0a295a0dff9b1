package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Apurer/go-gin-supply-api/internal/platform/database"
	"github.com/Apurer/go-gin-supply-api/internal/platform/metrics"
	"github.com/Apurer/go-gin-supply-api/internal/platform/migrations"
	"github.com/Apurer/go-gin-supply-api/internal/platform/observability"
)

const shutdownTimeout = 10 * time.Second

// Run boots the supply API and blocks until ctx is cancelled or the server
// fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := observability.Init(ctx, observability.Options{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, err := database.Open(ctx, cfg.Database.options())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()
	logger.Info("database connected", slog.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := migrations.Run(ctx, db, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	router := NewRouter(RouterOptions{
		DB:          db,
		Logger:      logger,
		Instruments: instruments,
		Registry:    metrics.NewRegistry(),
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("supply API listening", slog.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("supply API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down supply API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
