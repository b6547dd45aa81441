package usecase

import (
	"math"

	"FinSight/internal/domain/models"
	"FinSight/pkg/util"

	"gonum.org/v1/gonum/stat"
)

// Summarize computes last close, last daily range and mean volume. An empty
// series yields the zero summary.
func Summarize(ps models.PriceSeries) models.StatSummary {
	last, ok := ps.Last()
	if !ok {
		return models.StatSummary{}
	}
	vols := make([]float64, 0, ps.Len())
	for _, b := range ps.Bars {
		if b.Volume.Valid && util.IsFinite(b.Volume.Float64) {
			vols = append(vols, b.Volume.Float64)
		}
	}
	var meanVol int64
	if len(vols) > 0 {
		meanVol = int64(math.Trunc(stat.Mean(vols, nil)))
	}
	return models.StatSummary{
		LastClose:  util.Round2(last.Close),
		LastRange:  util.Round2(last.High - last.Low),
		MeanVolume: meanVol,
	}
}

// CloseHistory returns the last n closes in ascending date order.
func CloseHistory(ps models.PriceSeries, n int) []models.DatedValue {
	if n <= 0 || ps.Len() == 0 {
		return []models.DatedValue{}
	}
	start := ps.Len() - n
	if start < 0 {
		start = 0
	}
	out := make([]models.DatedValue, 0, ps.Len()-start)
	for _, b := range ps.Bars[start:] {
		out = append(out, models.DatedValue{Date: util.DateKey(b.Date), Value: util.Round2(b.Close)})
	}
	return out
}
