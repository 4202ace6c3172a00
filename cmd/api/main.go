package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	httpadapter "todoapi/internal/adapter/http"
	"todoapi/internal/adapter/telemetry"
	"todoapi/pkg/config"
	"todoapi/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()

	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger, err := logger.New(cfg.ServiceName, cfg.Environment)

	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	defer appLogger.Sync()

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})

	if err != nil {
		log.Fatal("Failed to initialize telemetry: ", err)
	}

	defer func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	tel.StartMetricsServer()
	tel.AppMetrics.StartSystemMetrics(ctx, 15*time.Second)

	container, err := httpadapter.NewContainer(ctx, cfg, appLogger, tel.NewTelemetryProbe(appLogger))

	if err != nil {
		log.Fatal("Failed to build container: ", err)
	}

	defer container.Close()

	if err := httpadapter.StartServer(ctx, cfg, container, tel.AppMetrics, appLogger); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}
}
