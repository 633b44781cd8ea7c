package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sadopc/playtime/internal/store"
)

// dayGroup holds one calendar day's per-game stats in order of first appearance.
type dayGroup struct {
	order []string
	games map[string]*GameDayStat
}

// DailyReport returns one bucket per calendar day from start to end inclusive.
// Only the date part of start and end is used.
func (r *Reporter) DailyReport(ctx context.Context, start, end time.Time) (*DailyReport, error) {
	defer observe("daily", time.Now())

	start, end = Day(start), Day(end)
	if start.After(end) {
		return nil, fmt.Errorf("daily report %s..%s: %w", FormatDate(start), FormatDate(end), ErrInvalidRange)
	}
	if start.AddDate(0, 0, MaxReportDays-1).Before(end) {
		return nil, fmt.Errorf("daily report %s..%s: %w", FormatDate(start), FormatDate(end), ErrRangeTooLarge)
	}

	rows, err := r.src.SessionsBetween(ctx, start, DayEnd(end))
	if err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}

	groups := bucketRows(rows)
	if err := r.attachLastSessions(ctx, groups, len(rows)); err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}

	report := &DailyReport{Days: fillDays(groups, start, end)}
	report.HasPrev, report.HasNext, err = r.oracle.dayWindow(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}

	r.logger.Debug().
		Str("start", FormatDate(start)).
		Str("end", FormatDate(end)).
		Int("sessions", len(rows)).
		Bool("has_prev", report.HasPrev).
		Bool("has_next", report.HasNext).
		Msg("Daily report built")
	return report, nil
}

// bucketRows merges rows by (day, game) regardless of the order they arrive in.
func bucketRows(rows []store.SessionRow) map[string]*dayGroup {
	groups := make(map[string]*dayGroup)
	for _, row := range rows {
		day := FormatDate(row.StartedAt)
		g, ok := groups[day]
		if !ok {
			g = &dayGroup{games: make(map[string]*GameDayStat)}
			groups[day] = g
		}
		stat, ok := g.games[row.GameID]
		if !ok {
			stat = &GameDayStat{Game: GameRef{ID: row.GameID, Name: row.GameName}}
			g.games[row.GameID] = stat
			g.order = append(g.order, row.GameID)
		}
		stat.Seconds += row.Duration
		stat.SessionCount++
	}
	return groups
}

// attachLastSessions stamps every game-day with the game's most recent session
// overall. Each game is looked up once per report.
func (r *Reporter) attachLastSessions(ctx context.Context, groups map[string]*dayGroup, size int) error {
	if len(groups) == 0 {
		return nil
	}
	memo, err := lru.New[string, *store.Session](max(size, 1))
	if err != nil {
		return err
	}

	for _, g := range groups {
		for _, id := range g.order {
			last, ok := memo.Get(id)
			if !ok {
				last, err = r.src.LastSession(ctx, id)
				if err != nil && !errors.Is(err, store.ErrNotFound) {
					return err
				}
				memo.Add(id, last)
			}
			if last == nil {
				continue
			}
			stat := g.games[id]
			stat.LastPlayedAt = last.StartedAt
			stat.LastPlayDuration = last.Duration
		}
	}
	return nil
}

func fillDays(groups map[string]*dayGroup, start, end time.Time) []DayBucket {
	days := DateRange(start, end)
	buckets := make([]DayBucket, 0, len(days))
	for _, d := range days {
		date := FormatDate(d)
		bucket := DayBucket{Date: date, Games: []GameDayStat{}}
		if g, ok := groups[date]; ok {
			for _, id := range g.order {
				stat := *g.games[id]
				bucket.Games = append(bucket.Games, stat)
				bucket.Total += stat.Seconds
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}
