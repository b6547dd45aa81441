package usecase

import (
	"context"
	"errors"
	"testing"

	"FinSight/internal/domain/models"
	"FinSight/internal/repository"
)

func TestResolvePrefersLocalStore(t *testing.T) {
	store := repository.NewMemoryStore()
	prov := newFakeProvider()
	prov.series["AAPL"] = linearSeries("AAPL", 30, 100, 1)
	_ = store.Put(context.Background(), "aapl", linearSeries("AAPL", 3, 10, 1))

	r := NewResolver(store, prov, nil, nil)
	res, err := r.Resolve(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != models.SourceLocal || res.Ticker != "AAPL" || res.Series.Len() != 3 {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if prov.callCount() != 0 {
		t.Fatalf("provider must not be called for a local ticker")
	}
}

func TestResolveFallsBackToProvider(t *testing.T) {
	prov := newFakeProvider()
	prov.series["MSFT"] = linearSeries("", 30, 100, 1)

	r := NewResolver(repository.NewMemoryStore(), prov, nil, nil)
	res, err := r.Resolve(context.Background(), " msft ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != models.SourceExternal || res.Series.Symbol != "MSFT" || res.Series.Len() != 30 {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if prov.calls[0] != "MSFT" {
		t.Fatalf("provider should receive the uppercased ticker, got %q", prov.calls[0])
	}
}

func TestResolvePropagatesProviderErrors(t *testing.T) {
	prov := newFakeProvider()
	prov.errs["BAD"] = models.NewError(models.KindAuth, "invalid key")
	prov.errs["RAW"] = errors.New("socket closed")
	r := NewResolver(repository.NewMemoryStore(), prov, nil, nil)

	if _, err := r.Resolve(context.Background(), "BAD"); !models.IsKind(err, models.KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), "nope"); !models.IsKind(err, models.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), "RAW"); !models.IsKind(err, models.KindProvider) {
		t.Fatalf("untyped provider failures should become provider errors, got %v", err)
	}
}

func TestResolveStoreFailureIsNotDomainError(t *testing.T) {
	r := NewResolver(&failingStore{}, newFakeProvider(), nil, nil)
	_, err := r.Resolve(context.Background(), "X")
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := models.KindOf(err); ok {
		t.Fatalf("store failures should surface as internal errors, got %v", err)
	}
}
