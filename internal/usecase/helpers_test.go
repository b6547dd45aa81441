package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/repository"

	"github.com/guregu/null/v6"
)

type fakeProvider struct {
	mu     sync.Mutex
	calls  []string
	series map[string]models.PriceSeries
	errs   map[string]error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{series: map[string]models.PriceSeries{}, errs: map[string]error{}}
}

func (p *fakeProvider) TimeSeries(_ context.Context, symbol string) (models.PriceSeries, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, symbol)
	if err, ok := p.errs[symbol]; ok {
		return models.PriceSeries{}, err
	}
	if ps, ok := p.series[symbol]; ok {
		return ps, nil
	}
	return models.PriceSeries{}, models.NewError(models.KindNotFound, "no data found for %s", symbol)
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type failingStore struct{ repository.MemoryStore }

func (*failingStore) Get(context.Context, string) (models.PriceSeries, bool, error) {
	return models.PriceSeries{}, false, errors.New("connection refused")
}

type capturePublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *capturePublisher) Publish(_ context.Context, ev models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// linearSeries returns n daily bars with close = base + step*i and constant volume.
func linearSeries(symbol string, n int, base, step float64) models.PriceSeries {
	ps := models.PriceSeries{Symbol: symbol}
	for i := 0; i < n; i++ {
		c := base + step*float64(i)
		ps.Bars = append(ps.Bars, models.Bar{
			Date:   day0.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: null.FloatFrom(1_000_000),
		})
	}
	return ps
}

func ptr[T any](v T) *T { return &v }

func record(date string, close float64) models.RawRecord {
	return models.RawRecord{
		Date:   ptr(date),
		Open:   ptr(close - 1),
		High:   ptr(close + 1),
		Low:    ptr(close - 2),
		Close:  ptr(close),
		Volume: ptr(1000.0),
	}
}
