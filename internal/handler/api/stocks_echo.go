package api

import (
	"errors"
	"net/http"

	models "FinSight/internal/domain/models"
	"FinSight/internal/usecase"
	xhttp "FinSight/pkg/http"
	xlogger "FinSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StocksEchoHandler serves the stock, compare, predict and manual ingestion routes.
type StocksEchoHandler struct {
	logger     *xlogger.Logger
	resolver   *usecase.Resolver
	comparator *usecase.Comparator
	forecaster *usecase.Forecaster
	ingestor   *usecase.Ingestor
}

func NewStocksEchoHandler(
	logger *xlogger.Logger,
	resolver *usecase.Resolver,
	comparator *usecase.Comparator,
	forecaster *usecase.Forecaster,
	ingestor *usecase.Ingestor,
) *StocksEchoHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &StocksEchoHandler{
		logger:     logger,
		resolver:   resolver,
		comparator: comparator,
		forecaster: forecaster,
		ingestor:   ingestor,
	}
}

func (h *StocksEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/stock/:symbol", h.Stock)
	e.GET("/compare/:symbol1/:symbol2", h.Compare)
	e.GET("/predict/:symbol", h.Predict)
	e.POST("/insert-manual", h.InsertManual)
}

type stockResponse struct {
	Ticker       string             `json:"ticker"`
	Source       models.Source      `json:"source"`
	Metrics      models.StatSummary `json:"metrics"`
	CloseHistory map[string]float64 `json:"close_history"`
}

type forecastAccuracy struct {
	AccuracyPct   float64 `json:"accuracy_pct"`
	ValidationMAE float64 `json:"validation_mae"`
	Reliability   string  `json:"reliability"`
	TrainedRows   int     `json:"trained_rows"`
}

type forecastBody struct {
	Accuracy    forecastAccuracy   `json:"accuracy"`
	Predictions map[string]float64 `json:"predictions"`
}

type predictResponse struct {
	Ticker   string       `json:"ticker"`
	Forecast forecastBody `json:"forecast"`
}

// Stock returns summary statistics and the recent close history of a ticker.
func (h *StocksEchoHandler) Stock(c echo.Context) error {
	req := &models.StockRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.resolver.Resolve(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "stock", err, http.StatusBadRequest)
	}
	return xhttp.SuccessResponse(c, stockResponse{
		Ticker:       res.Ticker,
		Source:       res.Source,
		Metrics:      usecase.Summarize(res.Series),
		CloseHistory: priceMap(usecase.CloseHistory(res.Series, req.Days)),
	})
}

func (h *StocksEchoHandler) Compare(c echo.Context) error {
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.comparator.Compare(c.Request().Context(), req.Symbol1, req.Symbol2)
	if err != nil {
		return h.fail(c, "compare", err, http.StatusBadRequest)
	}
	return xhttp.SuccessResponse(c, res)
}

// Predict resolves the ticker (404 on failure) and forecasts it (400 on failure).
func (h *StocksEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	res, err := h.resolver.Resolve(ctx, req.Symbol)
	if err != nil {
		return h.fail(c, "predict", err, http.StatusNotFound)
	}
	fc, err := h.forecaster.Forecast(ctx, res.Series)
	if err != nil {
		return h.fail(c, "predict", err, http.StatusBadRequest)
	}
	return xhttp.SuccessResponse(c, predictResponse{
		Ticker: res.Ticker,
		Forecast: forecastBody{
			Accuracy: forecastAccuracy{
				AccuracyPct:   fc.AccuracyPct,
				ValidationMAE: fc.ValidationMAE,
				Reliability:   fc.Reliability,
				TrainedRows:   fc.TrainedRows,
			},
			Predictions: priceMap(fc.Predictions),
		},
	})
}

func (h *StocksEchoHandler) InsertManual(c echo.Context) error {
	req := &models.InsertManualRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	conf, err := h.ingestor.Ingest(c.Request().Context(), req.Ticker, req.Records)
	if err != nil {
		return h.fail(c, "insert-manual", err, http.StatusBadRequest)
	}
	return xhttp.SuccessResponse(c, conf)
}

// fail renders a domain error with status, anything else as a 500.
func (h *StocksEchoHandler) fail(c echo.Context, route string, err error, status int) error {
	var de *models.Error
	if !errors.As(err, &de) {
		h.logger.Error("request failed", xlogger.String("route", route), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	h.logger.Warn("request rejected",
		xlogger.String("route", route),
		xlogger.String("kind", string(de.Kind)),
		xlogger.String("message", de.Message),
	)
	return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_"+string(de.Kind), de.Field, de.Error(), status).WithError(err))
}

// priceMap renders dated values as an ISO date to price object. encoding/json
// sorts map keys, so dates come out ascending.
func priceMap(values []models.DatedValue) map[string]float64 {
	out := make(map[string]float64, len(values))
	for _, v := range values {
		out[v.Date] = v.Value
	}
	return out
}
