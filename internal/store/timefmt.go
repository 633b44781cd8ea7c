package store

import (
	"fmt"
	"time"
)

// TimestampLayout is the on-disk form of session timestamps. It is fixed width
// and zone-less, so string comparison in SQL orders chronologically.
const TimestampLayout = "2006-01-02T15:04:05.000000"

var inputLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// FormatTimestamp renders t's wall clock in TimestampLayout, ignoring its location.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp accepts ISO-8601 date-times with or without fractional
// seconds or offset. The wall clock is kept as written and returned in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range inputLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return Naive(t), nil
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: not ISO-8601", s)
}

// Naive drops t's location while keeping its wall clock.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
