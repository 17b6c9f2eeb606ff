//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/microkern/bootpack/lib/otel"
	"github.com/microkern/bootpack/lib/providers"
)

// initializeApp is the injector function
func initializeApp(provider *otel.Provider) (*application, func(), error) {
	panic(wire.Build(
		providers.ProvideConfig,
		providers.ProvideLogger,
		providers.ProvideContext,
		providers.ProvidePaths,
		providers.ProvideBundlerConfig,
		providers.ProvideBundler,
		wire.Struct(new(application), "*"),
	))
}
