package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	resolutions      *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	ingested         *prometheus.CounterVec
	forecastLatency  prometheus.Histogram
	forecastAccuracy prometheus.Gauge
}

// New creates a recorder registered on reg. Pass prometheus.DefaultRegisterer
// to expose the metrics on the default /metrics handler.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		resolutions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_resolutions_total",
				Help: "Series resolutions by data source",
			},
			[]string{"source"},
		),
		providerRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_provider_requests_total",
				Help: "Requests to the market data provider by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_errors_total",
				Help: "Domain errors by kind",
			},
			[]string{"kind"},
		),
		ingested: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_ingested_records_total",
				Help: "Manually ingested records",
			},
			[]string{"ticker"},
		),
		forecastLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "finsight_forecast_duration_seconds",
				Help:    "Duration of validated forecasts",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		forecastAccuracy: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "finsight_forecast_accuracy_percent",
				Help: "Holdout accuracy of the last forecast",
			},
		),
	}
}

// RecordResolution counts a resolved series by source.
func (r *Recorder) RecordResolution(source string) {
	r.resolutions.WithLabelValues(source).Inc()
}

// RecordProviderRequest counts a provider call by outcome.
func (r *Recorder) RecordProviderRequest(outcome string) {
	r.providerRequests.WithLabelValues(outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordIngested counts manually stored records.
func (r *Recorder) RecordIngested(ticker string, records int) {
	r.ingested.WithLabelValues(ticker).Add(float64(records))
}

// RecordForecast records forecast latency and accuracy.
func (r *Recorder) RecordForecast(seconds float64, accuracy float64) {
	r.forecastLatency.Observe(seconds)
	r.forecastAccuracy.Set(accuracy)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordResolution(string)         {}
func (Nop) RecordProviderRequest(string)    {}
func (Nop) RecordError(string)              {}
func (Nop) RecordIngested(string, int)      {}
func (Nop) RecordForecast(float64, float64) {}
