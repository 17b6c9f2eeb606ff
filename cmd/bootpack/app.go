package main

import (
	"context"
	"log/slog"

	"github.com/microkern/bootpack/cmd/bootpack/config"
	"github.com/microkern/bootpack/lib/bundler"
	"github.com/microkern/bootpack/lib/paths"
)

// application holds the initialized components shared by every command.
type application struct {
	Ctx     context.Context
	Logger  *slog.Logger
	Config  *config.Config
	Paths   *paths.Paths
	Bundler bundler.Manager
}
