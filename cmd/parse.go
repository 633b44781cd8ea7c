package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
)

// parseSeconds accepts a whole number of seconds or a Go duration such as
// "1h30m". Negative values are allowed.
func parseSeconds(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: want seconds or a value like 1h30m", s)
	}
	return int64(math.Round(d.Seconds())), nil
}

// parseTimestamp reads a wall clock timestamp in any form store.ParseTimestamp
// accepts, or a bare date meaning midnight. An empty string means now. An
// RFC 3339 offset is dropped and the wall clock kept as written.
func parseTimestamp(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if t, err := store.ParseTimestamp(s); err == nil {
		return t, nil
	}
	if t, err := stats.ParseDate(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: want YYYY-MM-DDTHH:MM:SS", s)
}

// parseDateOr reads a YYYY-MM-DD date, falling back when s is empty.
func parseDateOr(s string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return stats.Day(fallback), nil
	}
	t, err := stats.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// reportWindow resolves the --from/--to flags of the daily commands. The
// window ends today and spans days days unless given.
func reportWindow(from, to string, days int, now time.Time) (time.Time, time.Time, error) {
	end, err := parseDateOr(to, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := parseDateOr(from, end.AddDate(0, 0, -(days - 1)))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func currentTime() time.Time {
	return store.Naive(time.Now())
}
