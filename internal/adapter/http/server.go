package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoapi/internal/adapter/http/routes"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
	"todoapi/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// StartServer serves the API until ctx is cancelled or SIGINT/SIGTERM
// arrives, then drains in-flight requests.
func StartServer(ctx context.Context, cfg *config.AppConfig, container *Container, metrics *telemetry.AppMetrics, log *logger.Logger) error {
	router := routes.SetupRouter(routes.RouterConfig{
		TodoHandler: container.TodoHandler,
		Metrics:     metrics,
		Logger:      log,
		Cache:       container.Cache,
		Config:      cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	slog.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"database_driver", cfg.Database.Driver,
		"rate_limit_enabled", cfg.RateLimitEnabled,
		"cache_enabled", cfg.CacheEnabled,
		"https_enforced", cfg.EnforceHTTPS)

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
