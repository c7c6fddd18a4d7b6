package codec

import (
	"errors"
	"math"
	"time"

	"github.com/reoring/skema"
)

// dateLayouts are tried in order by ParseTime. Layouts without a zone are
// read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var errInvalidTime = errors.New("invalid RFC3339 time")

// ParseTime accepts RFC 3339 timestamps (fraction optional), zone-less
// date-times and plain dates.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errInvalidTime
}

// FormatTime renders t in UTC using RFC3339Nano (trailing zeros trimmed).
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Date converts v into a time.Time. Dates pass through unchanged, strings
// go through ParseTime, numbers are Unix milliseconds and nil is the epoch.
// Anything else, including unparseable strings, is returned as-is so that
// the date constraint rejects it.
func Date(v any) any {
	if skema.IsDate(v) {
		return v
	}
	if v == nil {
		return time.UnixMilli(0).UTC()
	}
	if s, ok := skema.AsString(v); ok {
		if t, err := ParseTime(s); err == nil {
			return t
		}
		return v
	}
	if f, ok := skema.AsNumber(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v
		}
		return time.UnixMilli(int64(f)).UTC()
	}
	return v
}
