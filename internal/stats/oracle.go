package stats

import (
	"context"
	"fmt"
	"time"
)

// oracle answers whether data exists outside a report window without loading it.
type oracle struct {
	src Source
}

// dayWindow checks for sessions strictly before start's midnight and strictly
// after the last microsecond of end's day.
func (o oracle) dayWindow(ctx context.Context, start, end time.Time) (hasPrev, hasNext bool, err error) {
	hasPrev, err = o.src.HasSessionsBefore(ctx, Day(start))
	if err != nil {
		return false, false, fmt.Errorf("check sessions before %s: %w", FormatDate(start), err)
	}
	hasNext, err = o.src.HasSessionsAfter(ctx, DayEnd(end))
	if err != nil {
		return false, false, fmt.Errorf("check sessions after %s: %w", FormatDate(end), err)
	}
	return hasPrev, hasNext, nil
}

// yearWindow checks whether the game has any session in the neighbouring years.
func (o oracle) yearWindow(ctx context.Context, gameID string, year int) (hasPrev, hasNext bool, err error) {
	hasPrev, err = o.src.HasSessionsInYear(ctx, gameID, year-1)
	if err != nil {
		return false, false, fmt.Errorf("check %q in %d: %w", gameID, year-1, err)
	}
	hasNext, err = o.src.HasSessionsInYear(ctx, gameID, year+1)
	if err != nil {
		return false, false, fmt.Errorf("check %q in %d: %w", gameID, year+1, err)
	}
	return hasPrev, hasNext, nil
}
