package stats

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Day truncates t to midnight of its calendar day, dropping its location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayEnd is the last timestamp the store can represent on t's day.
func DayEnd(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1).Add(-time.Microsecond)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange lists every calendar day from start to end inclusive.
func DateRange(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
