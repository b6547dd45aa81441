package usecase

import (
	"context"
	"math"
	"time"

	"FinSight/internal/domain/models"
	domrepo "FinSight/internal/domain/repository"
	domsvc "FinSight/internal/domain/service"
	xlogger "FinSight/pkg/logger"
	pkgmetrics "FinSight/pkg/metrics"
	"FinSight/pkg/timeseries"
	"FinSight/pkg/util"

	"gonum.org/v1/gonum/stat"
)

const volumeRegressor = "volume"

// ForecastConfig holds the forecast window sizes.
type ForecastConfig struct {
	MinObservations int
	Holdout         int
	Horizon         int
	HighAccuracy    float64
	Timeout         time.Duration
}

// DefaultForecastConfig returns 15 minimum rows, a 5 row holdout and a 7 day horizon.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{MinObservations: 15, Holdout: 5, Horizon: 7, HighAccuracy: 85}
}

// DefaultModelFactory builds the additive model with yearly seasonality on
// and daily seasonality off. Weekly seasonality follows the auto rules.
func DefaultModelFactory() domsvc.SeriesModel {
	return timeseries.New(
		timeseries.WithYearlySeasonality(timeseries.On),
		timeseries.WithDailySeasonality(timeseries.Off),
	)
}

// Forecaster validates the model on a trailing holdout, then refits on the
// full history and predicts the horizon.
type Forecaster struct {
	cfg       ForecastConfig
	newModel  domsvc.ModelFactory
	metrics   domrepo.Metrics
	publisher domrepo.EventPublisher
	logger    *xlogger.Logger
}

func NewForecaster(cfg ForecastConfig, factory domsvc.ModelFactory, metrics domrepo.Metrics, publisher domrepo.EventPublisher, logger *xlogger.Logger) *Forecaster {
	def := DefaultForecastConfig()
	if cfg.MinObservations <= 0 {
		cfg.MinObservations = def.MinObservations
	}
	if cfg.Holdout <= 0 {
		cfg.Holdout = def.Holdout
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = def.Horizon
	}
	if cfg.HighAccuracy <= 0 {
		cfg.HighAccuracy = def.HighAccuracy
	}
	if factory == nil {
		factory = DefaultModelFactory
	}
	if metrics == nil {
		metrics = pkgmetrics.Nop{}
	}
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &Forecaster{cfg: cfg, newModel: factory, metrics: metrics, publisher: publisher, logger: logger}
}

func (f *Forecaster) Forecast(ctx context.Context, series models.PriceSeries) (*models.ForecastResult, error) {
	res, err := f.forecast(ctx, series)
	if err != nil {
		recordError(f.metrics, err)
		return nil, err
	}
	return res, nil
}

func (f *Forecaster) forecast(ctx context.Context, series models.PriceSeries) (*models.ForecastResult, error) {
	if n := series.Len(); n < f.cfg.MinObservations {
		return nil, models.NewError(models.KindInsufficientData,
			"insufficient data (%d rows), at least %d required", n, f.cfg.MinObservations)
	}
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()

	frame := Reshape(series)
	if frame.Len() <= f.cfg.Holdout+1 {
		return nil, models.NewError(models.KindForecastFailure,
			"only %d rows with volume remain after cleaning", frame.Len())
	}

	mae, accuracy, err := f.validate(ctx, frame)
	if err != nil {
		return nil, err
	}
	preds, err := f.predictFuture(ctx, frame)
	if err != nil {
		return nil, err
	}

	reliability := models.ReliabilityMedium
	if accuracy > f.cfg.HighAccuracy {
		reliability = models.ReliabilityHigh
	}
	res := &models.ForecastResult{
		Ticker:        series.Symbol,
		ValidationMAE: mae,
		AccuracyPct:   accuracy,
		Reliability:   reliability,
		TrainedRows:   frame.Len(),
		Predictions:   preds,
	}

	elapsed := time.Since(start)
	f.metrics.RecordForecast(elapsed.Seconds(), accuracy)
	f.logger.Info("forecast completed",
		xlogger.String("ticker", series.Symbol),
		xlogger.Int("rows", frame.Len()),
		xlogger.Float64("mae", mae),
		xlogger.Float64("accuracy_pct", accuracy),
		xlogger.Duration("duration_ms", elapsed),
	)
	publishEvent(ctx, f.publisher, f.logger, models.EventForecastCompleted, series.Symbol, map[string]any{
		"validation_mae": mae,
		"accuracy_pct":   accuracy,
		"reliability":    reliability,
		"predictions":    preds,
	})
	return res, nil
}

// Reshape converts a series into the model frame: ds without zone, y =
// close, volume regressor. Rows with a null volume or a non-finite close are
// dropped.
func Reshape(series models.PriceSeries) *timeseries.Frame {
	frame := timeseries.NewFrame(series.Len())
	vols := make([]float64, 0, series.Len())
	for _, b := range series.Bars {
		if !b.Volume.Valid || !util.IsFinite(b.Volume.Float64) || !util.IsFinite(b.Close) {
			continue
		}
		frame.DS = append(frame.DS, util.StripZone(b.Date))
		frame.Y = append(frame.Y, b.Close)
		vols = append(vols, b.Volume.Float64)
	}
	frame.SetRegressor(volumeRegressor, vols)
	return frame
}

// validate fits on all but the holdout rows and scores the holdout.
func (f *Forecaster) validate(ctx context.Context, frame *timeseries.Frame) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, cancelled(err)
	}
	n := frame.Len()
	train := frame.Slice(0, n-f.cfg.Holdout)
	test := frame.Slice(n-f.cfg.Holdout, n)

	m, err := f.fit(train)
	if err != nil {
		return 0, 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, cancelled(err)
	}
	preds, err := m.Predict(test)
	if err != nil {
		return 0, 0, models.WrapError(models.KindForecastFailure, err, "holdout prediction failed")
	}

	var absErr float64
	for i, p := range preds {
		absErr += math.Abs(test.Y[i] - p.YHat)
	}
	mae := absErr / float64(len(preds))
	accuracy := (1 - mae/stat.Mean(test.Y, nil)) * 100
	if !util.IsFinite(mae) || !util.IsFinite(accuracy) {
		return 0, 0, models.NewError(models.KindForecastFailure, "validation produced a non-finite score")
	}
	return util.Round2(mae), util.Round2(accuracy), nil
}

// predictFuture refits on the whole frame and predicts Horizon days after the
// last date. Future rows use the historical mean volume.
func (f *Forecaster) predictFuture(ctx context.Context, frame *timeseries.Frame) ([]models.DatedValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	m, err := f.fit(frame)
	if err != nil {
		return nil, err
	}

	future, err := m.MakeFutureFrame(f.cfg.Horizon, true)
	if err != nil {
		return nil, models.WrapError(models.KindForecastFailure, err, "future frame")
	}
	hist := frame.Regressors[volumeRegressor]
	meanVol := stat.Mean(hist, nil)
	vols := make([]float64, 0, future.Len())
	vols = append(vols, hist...)
	for len(vols) < future.Len() {
		vols = append(vols, meanVol)
	}
	future.SetRegressor(volumeRegressor, vols)

	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	preds, err := m.Predict(future)
	if err != nil {
		return nil, models.WrapError(models.KindForecastFailure, err, "future prediction failed")
	}

	tail := preds[len(preds)-f.cfg.Horizon:]
	out := make([]models.DatedValue, 0, len(tail))
	for _, p := range tail {
		if !util.IsFinite(p.YHat) {
			return nil, models.NewError(models.KindForecastFailure, "non-finite prediction for %s", util.DateKey(p.DS))
		}
		out = append(out, models.DatedValue{Date: util.DateKey(p.DS), Value: util.Round2(p.YHat)})
	}
	return out, nil
}

func (f *Forecaster) fit(frame *timeseries.Frame) (domsvc.SeriesModel, error) {
	m := f.newModel()
	if err := m.AddRegressor(volumeRegressor); err != nil {
		return nil, models.WrapError(models.KindForecastFailure, err, "add regressor")
	}
	if err := m.Fit(frame); err != nil {
		return nil, models.WrapError(models.KindForecastFailure, err, "model fit failed on %d rows", frame.Len())
	}
	return m, nil
}

func cancelled(err error) error {
	return models.WrapError(models.KindForecastFailure, err, "forecast aborted")
}
