package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	xhttp "FinSight/pkg/http"
	"FinSight/pkg/util"

	"github.com/guregu/null/v6"
)

const DefaultBaseURL = "https://api.twelvedata.com"

// Config holds Twelve Data settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Interval   string
	OutputSize int
	Timeout    time.Duration
}

// Client implements MarketDataProvider on the Twelve Data REST API.
type Client struct {
	cfg  Config
	http *xhttp.Client
}

var _ repository.MarketDataProvider = (*Client)(nil)

// New creates a client. The API key is checked when TimeSeries is called.
func New(cfg Config, opts ...xhttp.ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Interval == "" {
		cfg.Interval = "1day"
	}
	if cfg.OutputSize <= 0 {
		cfg.OutputSize = 365
	}
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(cfg.Timeout)}, opts...)
	return &Client{cfg: cfg, http: xhttp.NewClient(opts...)}
}

type timeSeriesResponse struct {
	Status  string  `json:"status"`
	Code    int     `json:"code"`
	Message string  `json:"message"`
	Values  []value `json:"values"`
}

type value struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

// TimeSeries fetches up to OutputSize daily bars in ascending order.
func (c *Client) TimeSeries(ctx context.Context, symbol string) (models.PriceSeries, error) {
	if c.cfg.APIKey == "" {
		return models.PriceSeries{}, models.NewError(models.KindConfig, "TWELVE_DATA_KEY is not configured")
	}
	symbol = util.NormalizeTicker(symbol)

	var resp timeSeriesResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    strings.TrimRight(c.cfg.BaseURL, "/") + "/time_series",
		QueryParams: url.Values{
			"symbol":     {symbol},
			"interval":   {c.cfg.Interval},
			"outputsize": {strconv.Itoa(c.cfg.OutputSize)},
			"order":      {"ASC"},
			"apikey":     {c.cfg.APIKey},
		},
		Headers: map[string]string{"Accept": "application/json"},
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			var body timeSeriesResponse
			_ = json.Unmarshal(se.Body, &body)
			if body.Message == "" {
				body.Message = http.StatusText(se.StatusCode)
			}
			return models.PriceSeries{}, classify(symbol, se.StatusCode, body.Message)
		}
		return models.PriceSeries{}, models.WrapError(models.KindProvider, err, "twelve data request for %s failed", symbol)
	}
	if strings.EqualFold(resp.Status, "error") {
		return models.PriceSeries{}, classify(symbol, resp.Code, resp.Message)
	}
	if len(resp.Values) == 0 {
		return models.PriceSeries{}, models.NewError(models.KindNotFound, "no data found for %s", symbol)
	}

	bars, err := toBars(resp.Values)
	if err != nil {
		return models.PriceSeries{}, models.WrapError(models.KindProvider, err, "twelve data returned malformed rows for %s", symbol)
	}
	return models.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// classify maps a provider error code and message to a domain error.
func classify(symbol string, code int, message string) error {
	msg := strings.ToLower(message)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden ||
		strings.Contains(msg, "api key") || strings.Contains(msg, "apikey"):
		return models.NewError(models.KindAuth, "invalid or expired API key: %s", message)
	case code == http.StatusNotFound || (code == http.StatusBadRequest && strings.Contains(msg, "symbol")):
		return models.NewError(models.KindNotFound, "no data found for %s: %s", symbol, message)
	default:
		return models.NewError(models.KindProvider, "twelve data error (code %d): %s", code, message)
	}
}

// toBars converts provider rows, strips the zone, sorts ascending and keeps
// the last row of any duplicated date.
func toBars(values []value) ([]models.Bar, error) {
	bars := make([]models.Bar, 0, len(values))
	for i, v := range values {
		ts, ok := util.ParseTime(v.Datetime)
		if !ok {
			return nil, fmt.Errorf("row %d: bad datetime %q", i, v.Datetime)
		}
		var b models.Bar
		b.Date = util.StripZone(ts)
		for _, f := range []struct {
			raw string
			dst *float64
			key string
		}{{v.Open, &b.Open, "open"}, {v.High, &b.High, "high"}, {v.Low, &b.Low, "low"}, {v.Close, &b.Close, "close"}} {
			x, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s %q", i, f.key, f.raw)
			}
			*f.dst = x
		}
		if vol, err := strconv.ParseFloat(strings.TrimSpace(v.Volume), 64); err == nil {
			b.Volume = null.FloatFrom(vol)
		}
		bars = append(bars, b)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
