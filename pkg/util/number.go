package util

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to two decimals (half away from zero). Non-finite values are returned as is.
func Round2(v float64) float64 {
	return RoundN(v, 2)
}

// RoundN rounds v to places decimals.
func RoundN(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
