package repository

import (
	"context"
	"sync"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/pkg/util"
)

// MemoryStore is the default process-local SeriesStore.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]models.PriceSeries
}

var _ repository.SeriesStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]models.PriceSeries)}
}

func (s *MemoryStore) Get(_ context.Context, ticker string) (models.PriceSeries, bool, error) {
	s.mu.RLock()
	ps, ok := s.m[util.NormalizeTicker(ticker)]
	s.mu.RUnlock()
	if !ok {
		return models.PriceSeries{}, false, nil
	}
	return cloneSeries(ps), true, nil
}

// Put replaces any series stored under ticker.
func (s *MemoryStore) Put(_ context.Context, ticker string, series models.PriceSeries) error {
	key := util.NormalizeTicker(ticker)
	series = cloneSeries(series)
	series.Symbol = key
	s.mu.Lock()
	s.m[key] = series
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.m = make(map[string]models.PriceSeries)
	s.mu.Unlock()
	return nil
}

func cloneSeries(ps models.PriceSeries) models.PriceSeries {
	out := models.PriceSeries{Symbol: ps.Symbol}
	if ps.Bars != nil {
		out.Bars = append([]models.Bar(nil), ps.Bars...)
	}
	return out
}
