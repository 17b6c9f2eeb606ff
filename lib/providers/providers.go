package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c2h5oh/datasize"

	"github.com/microkern/bootpack/cmd/bootpack/config"
	"github.com/microkern/bootpack/lib/bundler"
	"github.com/microkern/bootpack/lib/logger"
	"github.com/microkern/bootpack/lib/otel"
	"github.com/microkern/bootpack/lib/paths"
)

// ProvideConfig provides the application configuration
func ProvideConfig() *config.Config {
	return config.Load()
}

// ProvideLogger provides a structured logger, routed through the OTel bridge
// when telemetry is enabled and teed to a log file when one is configured
func ProvideLogger(cfg *config.Config, provider *otel.Provider) *slog.Logger {
	var handler slog.Handler
	if provider != nil && provider.LogHandler != nil {
		handler = provider.LogHandler
	} else {
		handler = logger.NewHandler(cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.LogFile != "" {
		handler = logger.NewFileTeeHandler(handler, cfg.LogFile)
	}
	return slog.New(handler)
}

// ProvideContext provides a context with logger attached
func ProvideContext(log *slog.Logger) context.Context {
	return logger.AddToContext(context.Background(), log)
}

// ProvidePaths provides path construction for the data directory
func ProvidePaths(cfg *config.Config) *paths.Paths {
	return paths.New(cfg.DataDir)
}

// ProvideBundlerConfig translates application configuration into bundler
// settings
func ProvideBundlerConfig(cfg *config.Config) (bundler.Config, error) {
	var maxSize datasize.ByteSize
	if cfg.MaxImageSize != "" {
		if err := maxSize.UnmarshalText([]byte(cfg.MaxImageSize)); err != nil {
			return bundler.Config{}, fmt.Errorf("invalid max image size %q: %w", cfg.MaxImageSize, err)
		}
	}
	return bundler.Config{
		BuildRoot:    cfg.BuildRoot,
		Alignment:    uint64(cfg.Alignment),
		MaxImageSize: maxSize.Bytes(),
	}, nil
}

// ProvideBundler provides the payload bundler
func ProvideBundler(p *paths.Paths, cfg bundler.Config) bundler.Manager {
	return bundler.NewManager(p, cfg)
}
