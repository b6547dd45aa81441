package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping/:symbol", func(c echo.Context) error {
		var req struct {
			Symbol string `param:"symbol" validate:"required,max=3"`
			Days   int    `query:"days" default:"15" validate:"gte=1,lte=365"`
		}
		if errs := ReadAndValidateRequest(c, &req); errs != nil {
			return BadRequestResponse(c, errs)
		}
		return SuccessResponse(c, map[string]interface{}{"symbol": req.Symbol, "days": req.Days})
	})
	e.GET("/boom", func(c echo.Context) error {
		return NotFoundError("nothing here")
	})
}

func newTestServer() *Server {
	reg := prometheus.NewRegistry()
	return NewServer(nil, []Handler{pingHandler{}}, WithMetrics("/metrics", reg, reg))
}

func TestServerEnvelopeAndDefaults(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping/abc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var body struct {
		Status    int                    `json:"status"`
		RequestID string                 `json:"request_id"`
		Data      map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != 200 || body.Data["days"].(float64) != 15 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if id := rec.Header().Get(echo.HeaderXRequestID); id == "" || id != body.RequestID {
		t.Fatalf("request id header %q should match body %q", id, body.RequestID)
	}
}

func TestServerValidationError(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping/abcdef?days=999", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ERR_MAX") || !strings.Contains(rec.Body.String(), "ERR_LTE") {
		t.Fatalf("expected max and lte errors, got %s", rec.Body.String())
	}
}

func TestServerReturnedAppErrorUsesStatus(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "ERR_NOT_FOUND") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestServerHealthAndMetrics(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{"/health", "/ping/abc", "/metrics"} {
		rec := httptest.NewRecorder()
		s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: got %d", path, rec.Code)
		}
		if path == "/metrics" && !strings.Contains(rec.Body.String(), "http_requests_total") {
			t.Fatalf("metrics missing http_requests_total")
		}
	}
}
