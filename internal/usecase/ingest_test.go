package usecase

import (
	"context"
	"testing"

	"FinSight/internal/domain/models"
	"FinSight/internal/repository"
	"FinSight/pkg/util"
)

func TestIngestStoresSortedSeries(t *testing.T) {
	store := repository.NewMemoryStore()
	pub := &capturePublisher{}
	ing := NewIngestor(store, nil, pub, nil)

	recs := []models.RawRecord{
		record("2024-03-03", 12),
		record("2024-03-01", 10),
		record("2024-03-02", 11),
	}
	conf, err := ing.Ingest(context.Background(), "demo", recs)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if conf.Ticker != "DEMO" || conf.Records != 3 {
		t.Fatalf("unexpected confirmation %+v", conf)
	}
	ps, ok, _ := store.Get(context.Background(), "DEMO")
	if !ok || ps.Len() != 3 {
		t.Fatalf("series not stored: %+v", ps)
	}
	if ps.Bars[0].Close != 10 || ps.Bars[2].Close != 12 {
		t.Fatalf("bars not sorted: %+v", ps.Bars)
	}
	if len(pub.events) != 1 || pub.events[0].Type != models.EventSeriesIngested {
		t.Fatalf("expected ingestion event, got %+v", pub.events)
	}

	// resolver serves the ingested series without the provider
	prov := newFakeProvider()
	res, err := NewResolver(store, prov, nil, nil).Resolve(context.Background(), "Demo")
	if err != nil || res.Source != models.SourceLocal || prov.callCount() != 0 {
		t.Fatalf("resolve after ingest: %+v %v", res, err)
	}
}

func TestIngestReplacesPreviousEntry(t *testing.T) {
	store := repository.NewMemoryStore()
	ing := NewIngestor(store, nil, nil, nil)
	ctx := context.Background()
	if _, err := ing.Ingest(ctx, "X", []models.RawRecord{record("2024-01-01", 1), record("2024-01-02", 2)}); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if _, err := ing.Ingest(ctx, "x", []models.RawRecord{record("2024-02-01", 5)}); err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	ps, _, _ := store.Get(ctx, "X")
	if ps.Len() != 1 || ps.Bars[0].Close != 5 {
		t.Fatalf("expected replacement, got %+v", ps.Bars)
	}
}

func TestIngestSchemaErrors(t *testing.T) {
	noVolume := record("2024-01-02", 2)
	noVolume.Volume = nil
	noOpenNoVolume := record("2024-01-03", 3)
	noOpenNoVolume.Open = nil
	noOpenNoVolume.Volume = nil
	noDate := record("2024-01-04", 4)
	noDate.Date = nil

	cases := []struct {
		name    string
		records []models.RawRecord
		field   string
	}{
		{"empty batch", nil, "date"},
		{"missing volume", []models.RawRecord{record("2024-01-01", 1), noVolume}, "volume"},
		{"first field in order wins", []models.RawRecord{noVolume, noOpenNoVolume}, "open"},
		{"missing date", []models.RawRecord{noDate}, "date"},
		{"duplicate date", []models.RawRecord{record("2024-01-01", 1), record("2024-01-01T00:00:00Z", 2)}, "date"},
		{"same day different time", []models.RawRecord{record("2024-01-05", 1), record("2024-01-05T16:00:00", 2)}, "date"},
	}
	ing := NewIngestor(repository.NewMemoryStore(), nil, nil, nil)
	for _, tc := range cases {
		_, err := ing.Ingest(context.Background(), "X", tc.records)
		if !models.IsKind(err, models.KindSchema) {
			t.Fatalf("%s: expected schema error, got %v", tc.name, err)
		}
		if de := err.(*models.Error); de.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", tc.name, tc.field, de.Field)
		}
	}
}

func TestIngestParseError(t *testing.T) {
	ing := NewIngestor(repository.NewMemoryStore(), nil, nil, nil)
	for _, raw := range []string{"not-a-date", "12345", "2024-02-30", "31/12/2023"} {
		_, err := ing.Ingest(context.Background(), "X", []models.RawRecord{record(raw, 1)})
		if !models.IsKind(err, models.KindParse) {
			t.Fatalf("%q: expected parse error, got %v", raw, err)
		}
	}
}

func TestIngestDateFormats(t *testing.T) {
	store := repository.NewMemoryStore()
	ing := NewIngestor(store, nil, nil, nil)
	recs := []models.RawRecord{
		record("20240105", 1),
		record("20240108", 2),
		record("01/09/2024", 3),
	}
	if _, err := ing.Ingest(context.Background(), "cmp", recs); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	ps, _, _ := store.Get(context.Background(), "CMP")
	want := []string{"2024-01-05", "2024-01-08", "2024-01-09"}
	if ps.Len() != len(want) {
		t.Fatalf("expected %d bars, got %d", len(want), ps.Len())
	}
	for i, b := range ps.Bars {
		if got := util.DateKey(b.Date); got != want[i] {
			t.Fatalf("bar %d: date %s, want %s", i, got, want[i])
		}
	}
}

func TestIngestAcceptsDatetimeAlias(t *testing.T) {
	r := record("", 1)
	r.Date = nil
	r.Datetime = ptr("2024-05-01 00:00:00")
	conf, err := NewIngestor(repository.NewMemoryStore(), nil, nil, nil).Ingest(context.Background(), "X", []models.RawRecord{r})
	if err != nil || conf.Records != 1 {
		t.Fatalf("datetime alias rejected: %v", err)
	}
}
