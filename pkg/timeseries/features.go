package timeseries

import (
	"math"
	"time"
)

const secondsPerDay = 86400.0

// seasonality is a Fourier series with a fixed period in days.
type seasonality struct {
	name   string
	period float64
	order  int
}

func (s seasonality) columns() int { return 2 * s.order }

// fill writes the 2*order Fourier terms of ds into dst.
func (s seasonality) fill(ds time.Time, dst []float64) {
	t := float64(ds.Unix()) / secondsPerDay
	for i := 0; i < s.order; i++ {
		x := 2 * math.Pi * float64(i+1) * t / s.period
		dst[2*i] = math.Sin(x)
		dst[2*i+1] = math.Cos(x)
	}
}

// resolveSeasonalities applies the auto rules against the fitted history.
func resolveSeasonalities(cfg Config, ds []time.Time) []seasonality {
	span := ds[len(ds)-1].Sub(ds[0])
	minGap := time.Duration(math.MaxInt64)
	for i := 1; i < len(ds); i++ {
		if d := ds[i].Sub(ds[i-1]); d > 0 && d < minGap {
			minGap = d
		}
	}

	day := 24 * time.Hour
	var out []seasonality
	if enabled(cfg.Yearly, span < 730*day) && cfg.YearlyOrder > 0 {
		out = append(out, seasonality{name: "yearly", period: 365.25, order: cfg.YearlyOrder})
	}
	if enabled(cfg.Weekly, span < 14*day || minGap >= 7*day) && cfg.WeeklyOrder > 0 {
		out = append(out, seasonality{name: "weekly", period: 7, order: cfg.WeeklyOrder})
	}
	if enabled(cfg.Daily, span < 2*day || minGap >= day) && cfg.DailyOrder > 0 {
		out = append(out, seasonality{name: "daily", period: 1, order: cfg.DailyOrder})
	}
	return out
}

func enabled(t Toggle, autoDisable bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	default:
		return !autoDisable
	}
}

// placeChangepoints spreads n changepoints uniformly over the first share of
// the scaled history t, skipping the first row.
func placeChangepoints(t []float64, n int, share float64) []float64 {
	histSize := int(math.Floor(float64(len(t)) * share))
	if n+1 > histSize {
		n = histSize - 1
	}
	if n <= 0 {
		return nil
	}
	out := make([]float64, 0, n)
	step := float64(histSize-1) / float64(n)
	for i := 1; i <= n; i++ {
		idx := int(math.RoundToEven(step * float64(i)))
		out = append(out, t[idx])
	}
	return out
}
