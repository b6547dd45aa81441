package models

// StatSummary holds descriptive statistics of a series.
type StatSummary struct {
	LastClose  float64 `json:"last_close"`
	LastRange  float64 `json:"last_range"`
	MeanVolume int64   `json:"mean_volume"`
}

// DatedValue is a price keyed by its ISO date.
type DatedValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// TickerPerformance is one side of a comparison.
type TickerPerformance struct {
	Ticker          string  `json:"ticker"`
	LastPrice       float64 `json:"last_price"`
	PeriodReturnPct float64 `json:"period_return_pct"`
	Source          Source  `json:"source"`
}

// ComparisonResult is the return comparison of two tickers.
type ComparisonResult struct {
	First  TickerPerformance `json:"first"`
	Second TickerPerformance `json:"second"`
	Leader string            `json:"leader"`
}

// Reliability labels.
const (
	ReliabilityHigh   = "high"
	ReliabilityMedium = "medium"
)

// ForecastResult is the outcome of a validated forecast.
type ForecastResult struct {
	Ticker        string       `json:"ticker"`
	ValidationMAE float64      `json:"validation_mae"`
	AccuracyPct   float64      `json:"accuracy_pct"`
	Reliability   string       `json:"reliability"`
	TrainedRows   int          `json:"trained_rows"`
	Predictions   []DatedValue `json:"predictions"`
}

// Confirmation acknowledges a manual ingestion.
type Confirmation struct {
	Ticker  string `json:"ticker"`
	Records int    `json:"records"`
	Message string `json:"message"`
}
