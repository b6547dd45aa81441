package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type StockRequest struct {
	Symbol string `param:"symbol" validate:"required,max=15"`
	Days   int    `query:"days" default:"15" validate:"gte=1,lte=365"`
}

type CompareRequest struct {
	Symbol1 string `param:"symbol1" validate:"required,max=15"`
	Symbol2 string `param:"symbol2" validate:"required,max=15"`
}

type PredictRequest struct {
	Symbol string `param:"symbol" validate:"required,max=15"`
}

// RawRecord is a manually submitted row. Pointers distinguish missing fields from zero.
type RawRecord struct {
	Date     *string  `json:"date,omitempty"`
	Datetime *string  `json:"datetime,omitempty"`
	Open     *float64 `json:"open,omitempty"`
	High     *float64 `json:"high,omitempty"`
	Low      *float64 `json:"low,omitempty"`
	Close    *float64 `json:"close,omitempty"`
	Volume   *float64 `json:"volume,omitempty"`
}

// DateValue returns the record date, accepting datetime as an alias.
func (r RawRecord) DateValue() (string, bool) {
	if r.Date != nil {
		return *r.Date, true
	}
	if r.Datetime != nil {
		return *r.Datetime, true
	}
	return "", false
}

type InsertManualRequest struct {
	Ticker  string      `json:"ticker" validate:"required,max=15"`
	Records []RawRecord `json:"records"`
}
