package util

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical day key used in responses ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

// minUnixDigits keeps compact dates and small integers out of the unix fallback.
const minUnixDigits = 10

// ParseTime tries RFC3339 variants, plain and compact dates (slashed dates are
// month first) and unix seconds of at least 10 digits. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if len(s) < minUnixDigits {
		return time.Time{}, false
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// StripZone drops the zone of t and keeps its wall clock, returned as UTC.
func StripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DateKey formats t as YYYY-MM-DD.
func DateKey(t time.Time) string { return t.Format(DateLayout) }
