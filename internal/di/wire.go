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
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure
		ProvideSeriesStore,
		ProvideKafkaProducer,
		ProvideEventPublisher,
		ProvideMarketDataProvider,

		// Use cases
		ProvideResolver,
		ProvideComparator,
		ProvideForecaster,
		ProvideIngestor,

		// HTTP
		ProvideStocksHandler,
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
