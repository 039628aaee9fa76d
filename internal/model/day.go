package model

import (
	"errors"
	"fmt"
	"time"
)

// DayLayout is the key format of a day record.
const DayLayout = "2006-01-02"

// ErrInvalidDay is returned for day keys that are not YYYY-MM-DD.
var ErrInvalidDay = errors.New("invalid day")

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD key into midnight UTC.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return t, nil
}

// Midnight drops the time of day, keeping t's civil date, in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b, ignoring time of day,
// zone offsets and DST.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)) / (24 * time.Hour))
}
