package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/microkern/bootpack/cmd/bootpack/config"
	"github.com/microkern/bootpack/lib/boot"
	"github.com/microkern/bootpack/lib/bundler"
	"github.com/microkern/bootpack/lib/otel"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bootpack terminated", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load config early for OTel initialization
	cfg := config.Load()

	otelProvider, otelShutdown, err := otel.Init(context.Background(), otel.Config{
		Enabled:     cfg.OtelEnabled,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		ServiceName: cfg.OtelService,
		Version:     cfg.Version,
	})
	if err != nil {
		// Log warning but don't fail - graceful degradation
		slog.Warn("failed to initialize OpenTelemetry, continuing without telemetry", "error", err)
	}
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				slog.Warn("error shutting down OpenTelemetry", "error", err)
			}
		}()
	}

	// Initialize bundler and boot metrics if OTel is enabled
	if otelProvider != nil && otelProvider.Meter != nil {
		if m, err := bundler.NewMetrics(otelProvider.MeterFor("bundler"), otelProvider.TracerFor("bundler")); err == nil {
			bundler.SetMetrics(m)
		}
		if m, err := boot.NewMetrics(otelProvider.MeterFor("boot")); err == nil {
			boot.SetMetrics(m)
		}
	}

	// Initialize app with wire
	app, cleanup, err := initializeApp(otelProvider)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCommand(app).ExecuteContext(ctx)
}
