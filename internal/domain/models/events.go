package models

import "time"

// Event types published to the event stream.
const (
	EventSeriesIngested    = "series.ingested"
	EventForecastCompleted = "forecast.completed"
)

// Event is a domain event. Payload is encoded as JSON.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Ticker    string    `json:"ticker"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}
