package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

func newTestClient(t *testing.T, key string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: key, BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestTimeSeriesParsesAndSorts(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/time_series" || q.Get("symbol") != "AAPL" || q.Get("outputsize") != "365" ||
			q.Get("interval") != "1day" || q.Get("order") != "ASC" || q.Get("apikey") != "k" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meta":{"symbol":"AAPL"},"status":"ok","values":[
			{"datetime":"2024-01-03","open":"11","high":"12","low":"10","close":"11.5","volume":"2000"},
			{"datetime":"2024-01-02","open":"10","high":"11","low":"9","close":"10.5"}
		]}`))
	})

	ps, err := c.TimeSeries(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("TimeSeries: %v", err)
	}
	if ps.Symbol != "AAPL" || ps.Len() != 2 {
		t.Fatalf("unexpected series %+v", ps)
	}
	if !ps.Bars[0].Date.Before(ps.Bars[1].Date) {
		t.Fatalf("bars not ascending")
	}
	if ps.Bars[0].Volume.Valid {
		t.Fatalf("missing volume should be null")
	}
	if ps.Bars[1].Volume.Float64 != 2000 || ps.Bars[1].Close != 11.5 {
		t.Fatalf("unexpected row %+v", ps.Bars[1])
	}
}

func TestTimeSeriesErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   models.ErrorKind
	}{
		{"bad key in body", 200, `{"status":"error","code":401,"message":"**apikey** parameter is incorrect"}`, models.KindAuth},
		{"bad symbol", 200, `{"status":"error","code":400,"message":"**symbol** not found"}`, models.KindNotFound},
		{"not found code", 200, `{"status":"error","code":404,"message":"Not Found"}`, models.KindNotFound},
		{"empty values", 200, `{"status":"ok","values":[]}`, models.KindNotFound},
		{"rate limited", 200, `{"status":"error","code":429,"message":"run out of API credits"}`, models.KindProvider},
		{"http 403", 403, `forbidden`, models.KindAuth},
		{"http 500", 500, `oops`, models.KindProvider},
		{"garbage", 200, `not json`, models.KindProvider},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.TimeSeries(context.Background(), "XYZ")
			if !models.IsKind(err, tc.want) {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestTimeSeriesMissingKeyIsConfigError(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) { called = true })
	_, err := c.TimeSeries(context.Background(), "AAPL")
	if !models.IsKind(err, models.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
	if called {
		t.Fatalf("provider must not be called without a key")
	}
}

func TestTimeSeriesTransportError(t *testing.T) {
	c := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond})
	if _, err := c.TimeSeries(context.Background(), "AAPL"); !models.IsKind(err, models.KindProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
