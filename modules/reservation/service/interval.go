package service

import (
	"fmt"
	"time"

	// Embedded tz database so normalization works in minimal containers.
	_ "time/tzdata"
)

// Interval is a half-open time range [Start, End) in UTC.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant. An
// interval ending exactly when another begins does not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// NormalizeToUTC reinterprets the wall-clock fields of ts in the named IANA
// zone and returns the corresponding UTC instant. The same wall clock under
// different zones yields different instants.
func NormalizeToUTC(ts time.Time, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timezone %q: %w", timezone, err)
	}

	local := time.Date(ts.Year(), ts.Month(), ts.Day(),
		ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), loc)
	return local.UTC(), nil
}

// ParseAndNormalize parses an ISO-8601 timestamp and normalizes its wall
// clock through the given zone.
func ParseAndNormalize(value, timezone string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", value, err)
	}
	return NormalizeToUTC(ts, timezone)
}
