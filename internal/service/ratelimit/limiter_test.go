package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestAllowRefills(t *testing.T) {
	l := New(1, 2, 10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Fatalf("third request should be rejected")
	}
	if !l.Allow("b") {
		t.Fatalf("other keys have their own bucket")
	}
	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Fatalf("bucket should refill after one second")
	}
}

func TestAllowEvictsOldKeys(t *testing.T) {
	l := New(0, 1, 1)
	if !l.Allow("a") {
		t.Fatalf("first request allowed")
	}
	if !l.Allow("b") {
		t.Fatalf("second key allowed")
	}
	// "a" was evicted, so it starts with a full bucket again.
	if !l.Allow("a") {
		t.Fatalf("evicted key should start full")
	}
}

func TestMiddlewareRejects(t *testing.T) {
	e := echo.New()
	l := New(0, 1, 10)
	e.Use(Middleware(l, nil))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: got %d want %d", i, rec.Code, want)
		}
	}
}
