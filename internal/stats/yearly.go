package stats

import (
	"context"
	"fmt"
	"time"
)

// GameYearReport returns the twelve months of year for one game, January
// first, whether or not the game was played in them.
func (r *Reporter) GameYearReport(ctx context.Context, gameID string, year int) (*YearReport, error) {
	defer observe("year", time.Now())

	sessions, err := r.src.SessionsInYear(ctx, gameID, year)
	if err != nil {
		return nil, fmt.Errorf("year report: %w", err)
	}

	months := make([]MonthBucket, 12)
	for i := range months {
		m := time.Month(i + 1)
		months[i] = MonthBucket{
			Month:     int(m),
			MonthName: m.String()[:3],
			Sessions:  []SessionView{},
		}
	}
	for _, s := range sessions {
		b := &months[s.StartedAt.Month()-1]
		b.Total += float64(s.Duration)
		b.SessionCount++
		b.Sessions = append(b.Sessions, SessionView{
			Date:     s.StartedAt,
			Duration: float64(s.Duration),
			Migrated: s.Source,
		})
	}

	report := &YearReport{GameID: gameID, Year: year, Months: months}
	report.HasPrev, report.HasNext, err = r.oracle.yearWindow(ctx, gameID, year)
	if err != nil {
		return nil, fmt.Errorf("year report: %w", err)
	}

	r.logger.Debug().
		Str("game_id", gameID).
		Int("year", year).
		Int("sessions", len(sessions)).
		Msg("Year report built")
	return report, nil
}
