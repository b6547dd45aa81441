package repository

import (
	"context"

	"FinSight/internal/domain/models"
)

// SeriesStore holds manually ingested series keyed by uppercased ticker.
type SeriesStore interface {
	Get(ctx context.Context, ticker string) (models.PriceSeries, bool, error)
	Put(ctx context.Context, ticker string, series models.PriceSeries) error
	Close() error
}

// MarketDataProvider fetches daily history from an external source.
type MarketDataProvider interface {
	TimeSeries(ctx context.Context, symbol string) (models.PriceSeries, error)
}

// EventPublisher emits domain events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.Event) error
	Close() error
}

type Metrics interface {
	RecordResolution(source string)
	RecordProviderRequest(outcome string)
	RecordError(kind string)
	RecordIngested(ticker string, records int)
	RecordForecast(seconds float64, accuracy float64)
}
