package service

import "FinSight/pkg/timeseries"

// SeriesModel is the additive model contract used by the forecast engine.
type SeriesModel interface {
	AddRegressor(name string) error
	Fit(history *timeseries.Frame) error
	Predict(df *timeseries.Frame) ([]timeseries.Prediction, error)
	MakeFutureFrame(periods int, includeHistory bool) (*timeseries.Frame, error)
}

// ModelFactory creates a fresh, unfitted model.
type ModelFactory func() SeriesModel
