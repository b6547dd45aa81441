package usecase

import (
	"context"
	"fmt"
	"sort"

	"FinSight/internal/domain/models"
	domrepo "FinSight/internal/domain/repository"
	xlogger "FinSight/pkg/logger"
	pkgmetrics "FinSight/pkg/metrics"
	"FinSight/pkg/util"

	"github.com/guregu/null/v6"
)

// requiredFields is checked in order; the first one missing from any record is reported.
var requiredFields = []string{"date", "open", "high", "low", "close", "volume"}

// Ingestor validates manually submitted records and stores them.
type Ingestor struct {
	store     domrepo.SeriesStore
	metrics   domrepo.Metrics
	publisher domrepo.EventPublisher
	logger    *xlogger.Logger
}

func NewIngestor(store domrepo.SeriesStore, metrics domrepo.Metrics, publisher domrepo.EventPublisher, logger *xlogger.Logger) *Ingestor {
	if metrics == nil {
		metrics = pkgmetrics.Nop{}
	}
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &Ingestor{store: store, metrics: metrics, publisher: publisher, logger: logger}
}

// Ingest replaces the stored series of ticker with records sorted by date.
func (i *Ingestor) Ingest(ctx context.Context, ticker string, records []models.RawRecord) (*models.Confirmation, error) {
	conf, err := i.ingest(ctx, ticker, records)
	if err != nil {
		recordError(i.metrics, err)
		return nil, err
	}
	return conf, nil
}

func (i *Ingestor) ingest(ctx context.Context, ticker string, records []models.RawRecord) (*models.Confirmation, error) {
	ticker = util.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, models.MissingField("ticker")
	}
	if err := checkSchema(records); err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(records))
	seen := make(map[string]int, len(records))
	for idx, r := range records {
		raw, _ := r.DateValue()
		ts, ok := util.ParseTime(raw)
		if !ok {
			return nil, &models.Error{
				Kind:    models.KindParse,
				Message: fmt.Sprintf("record %d: cannot parse date %q", idx, raw),
				Field:   "date",
			}
		}
		ts = util.StripZone(ts)
		// bars are daily, so two records on the same calendar day collide
		key := util.DateKey(ts)
		if prev, dup := seen[key]; dup {
			return nil, &models.Error{
				Kind:    models.KindSchema,
				Message: fmt.Sprintf("records %d and %d share date %s", prev, idx, raw),
				Field:   "date",
			}
		}
		seen[key] = idx
		bars = append(bars, models.Bar{
			Date:   ts,
			Open:   *r.Open,
			High:   *r.High,
			Low:    *r.Low,
			Close:  *r.Close,
			Volume: null.FloatFrom(*r.Volume),
		})
	}
	sort.Slice(bars, func(a, b int) bool { return bars[a].Date.Before(bars[b].Date) })

	if err := i.store.Put(ctx, ticker, models.PriceSeries{Symbol: ticker, Bars: bars}); err != nil {
		return nil, fmt.Errorf("local store put %s: %w", ticker, err)
	}
	i.metrics.RecordIngested(ticker, len(bars))
	i.logger.Info("manual series stored", xlogger.String("ticker", ticker), xlogger.Int("records", len(bars)))
	publishEvent(ctx, i.publisher, i.logger, models.EventSeriesIngested, ticker, map[string]any{
		"records": len(bars),
		"first":   util.DateKey(bars[0].Date),
		"last":    util.DateKey(bars[len(bars)-1].Date),
	})

	return &models.Confirmation{
		Ticker:  ticker,
		Records: len(bars),
		Message: fmt.Sprintf("%s loaded with %d records", ticker, len(bars)),
	}, nil
}

// checkSchema reports the first required field missing from any record. An
// empty batch is missing every field.
func checkSchema(records []models.RawRecord) error {
	if len(records) == 0 {
		return models.MissingField(requiredFields[0])
	}
	for _, field := range requiredFields {
		for _, r := range records {
			if !hasField(r, field) {
				return models.MissingField(field)
			}
		}
	}
	return nil
}

func hasField(r models.RawRecord, field string) bool {
	switch field {
	case "date":
		_, ok := r.DateValue()
		return ok
	case "open":
		return r.Open != nil
	case "high":
		return r.High != nil
	case "low":
		return r.Low != nil
	case "close":
		return r.Close != nil
	case "volume":
		return r.Volume != nil
	}
	return false
}
