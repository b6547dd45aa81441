package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"FinSight/internal/domain/models"

	"github.com/guregu/null/v6"
)

func sampleSeries(n int) models.PriceSeries {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ps := models.PriceSeries{Symbol: "abc"}
	for i := 0; i < n; i++ {
		ps.Bars = append(ps.Bars, models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   10,
			High:   11,
			Low:    9,
			Close:  10 + float64(i),
			Volume: null.FloatFrom(1000),
		})
	}
	return ps
}

func TestMemoryStoreUppercasesAndReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, _ := s.Get(ctx, "abc"); ok {
		t.Fatalf("empty store should miss")
	}
	if err := s.Put(ctx, "abc", sampleSeries(3)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "ABC", sampleSeries(5)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := s.Get(ctx, "Abc")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Len() != 5 || got.Symbol != "ABC" {
		t.Fatalf("last write should win, got %d bars symbol %q", got.Len(), got.Symbol)
	}
	if len(s.m) != 1 {
		t.Fatalf("expected one ticker, got %d", len(s.m))
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	in := sampleSeries(2)
	_ = s.Put(ctx, "X", in)
	in.Bars[0].Close = -1

	got, _, _ := s.Get(ctx, "X")
	got.Bars[1].Close = -1
	again, _, _ := s.Get(ctx, "X")
	if again.Bars[0].Close != 10 || again.Bars[1].Close != 11 {
		t.Fatalf("store leaked mutable state: %+v", again.Bars)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Put(ctx, "T", sampleSeries(i+1))
			_, _, _ = s.Get(ctx, "T")
		}(i)
	}
	wg.Wait()
	if _, ok, _ := s.Get(ctx, "T"); !ok {
		t.Fatalf("expected series after concurrent writes")
	}
}
