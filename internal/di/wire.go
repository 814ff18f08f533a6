//go:build wireinject
// +build wireinject

package di

import (
	"FinSight/pkg/config"
	"FinSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Storage tiers
		ProvideCacheStore,
		ProvideBarCache,
		ProvideArchive,

		// Providers and audit trail
		ProvideBarProviders,
		ProvideFundamentalsProviders,
		ProvideAuditSink,
		ProvideStream,

		// Pipeline
		ProvideChain,
		ProvideAnalyzer,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
