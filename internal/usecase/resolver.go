package usecase

import (
	"context"
	"fmt"

	"FinSight/internal/domain/models"
	domrepo "FinSight/internal/domain/repository"
	xlogger "FinSight/pkg/logger"
	pkgmetrics "FinSight/pkg/metrics"
	"FinSight/pkg/util"
)

// Resolver serves a ticker from the local store first and falls back to the
// external provider.
type Resolver struct {
	store    domrepo.SeriesStore
	provider domrepo.MarketDataProvider
	metrics  domrepo.Metrics
	logger   *xlogger.Logger
}

func NewResolver(store domrepo.SeriesStore, provider domrepo.MarketDataProvider, metrics domrepo.Metrics, logger *xlogger.Logger) *Resolver {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	if metrics == nil {
		metrics = pkgmetrics.Nop{}
	}
	return &Resolver{store: store, provider: provider, metrics: metrics, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, ticker string) (*models.Resolution, error) {
	ticker = util.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, models.NewError(models.KindNotFound, "empty ticker")
	}

	series, ok, err := r.store.Get(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("local store get %s: %w", ticker, err)
	}
	if ok {
		r.logger.Debug("series served from local store", xlogger.String("ticker", ticker), xlogger.Int("rows", series.Len()))
		r.metrics.RecordResolution(string(models.SourceLocal))
		return &models.Resolution{Ticker: ticker, Series: series, Source: models.SourceLocal}, nil
	}

	r.logger.Debug("series not in local store, querying provider", xlogger.String("ticker", ticker))
	series, err = r.provider.TimeSeries(ctx, ticker)
	if err != nil {
		if _, typed := models.KindOf(err); !typed {
			err = models.WrapError(models.KindProvider, err, "provider request for %s failed", ticker)
		}
		kind, _ := models.KindOf(err)
		r.metrics.RecordProviderRequest(string(kind))
		recordError(r.metrics, err)
		return nil, err
	}
	r.metrics.RecordProviderRequest("ok")
	r.metrics.RecordResolution(string(models.SourceExternal))
	series.Symbol = ticker
	return &models.Resolution{Ticker: ticker, Series: series, Source: models.SourceExternal}, nil
}
