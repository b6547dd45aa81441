package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// Source tags where a resolved series came from.
type Source string

const (
	SourceLocal    Source = "Local"
	SourceExternal Source = "External"
)

// Bar is one daily OHLCV row. Volume is null when the provider omits it.
type Bar struct {
	Date   time.Time  `json:"date"`
	Open   float64    `json:"open"`
	High   float64    `json:"high"`
	Low    float64    `json:"low"`
	Close  float64    `json:"close"`
	Volume null.Float `json:"volume"`
}

// PriceSeries is an ascending, duplicate-free list of bars for a ticker.
type PriceSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Resolution is a series together with its origin.
type Resolution struct {
	Ticker string
	Series PriceSeries
	Source Source
}
