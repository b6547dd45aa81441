package timeseries

// Toggle controls whether a built-in seasonality is fitted.
type Toggle int

const (
	// Auto enables the seasonality when the history is long and dense enough.
	Auto Toggle = iota
	On
	Off
)

// Config holds model hyperparameters.
type Config struct {
	Yearly Toggle
	Weekly Toggle
	Daily  Toggle

	YearlyOrder int
	WeeklyOrder int
	DailyOrder  int

	NChangepoints    int
	ChangepointRange float64

	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	RegressorPriorScale   float64
	TrendPriorScale       float64
}

// Option configures a Model.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Yearly:                Auto,
		Weekly:                Auto,
		Daily:                 Auto,
		YearlyOrder:           10,
		WeeklyOrder:           3,
		DailyOrder:            4,
		NChangepoints:         25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		RegressorPriorScale:   10,
		TrendPriorScale:       1000,
	}
}

// WithYearlySeasonality sets the yearly seasonality mode.
func WithYearlySeasonality(t Toggle) Option {
	return func(c *Config) { c.Yearly = t }
}

// WithWeeklySeasonality sets the weekly seasonality mode.
func WithWeeklySeasonality(t Toggle) Option {
	return func(c *Config) { c.Weekly = t }
}

// WithDailySeasonality sets the daily seasonality mode.
func WithDailySeasonality(t Toggle) Option {
	return func(c *Config) { c.Daily = t }
}

// WithChangepoints sets the number of potential changepoints and the share of history they span.
func WithChangepoints(n int, historyRange float64) Option {
	return func(c *Config) {
		c.NChangepoints = n
		c.ChangepointRange = historyRange
	}
}

// WithPriorScales sets the changepoint, seasonality and regressor prior scales.
// Non-positive values keep the defaults.
func WithPriorScales(changepoint, seasonality, regressor float64) Option {
	return func(c *Config) {
		if changepoint > 0 {
			c.ChangepointPriorScale = changepoint
		}
		if seasonality > 0 {
			c.SeasonalityPriorScale = seasonality
		}
		if regressor > 0 {
			c.RegressorPriorScale = regressor
		}
	}
}
