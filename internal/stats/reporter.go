// Package stats builds the daily, yearly and all-time playtime reports from
// the session log.
package stats

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sadopc/playtime/internal/metrics"
	"github.com/sadopc/playtime/internal/store"
)

// ErrInvalidRange is returned when a report window starts after it ends.
var ErrInvalidRange = errors.New("stats: start date is after end date")

// MaxReportDays caps the number of day buckets a daily report may hold.
const MaxReportDays = 366

// ErrRangeTooLarge is returned when a daily window spans more than MaxReportDays.
var ErrRangeTooLarge = errors.New("stats: report window exceeds 366 days")

// Source is the read side of the record store the reports are computed from.
type Source interface {
	SessionsBetween(ctx context.Context, from, to time.Time) ([]store.SessionRow, error)
	HasSessionsBefore(ctx context.Context, t time.Time) (bool, error)
	HasSessionsAfter(ctx context.Context, t time.Time) (bool, error)
	LastSession(ctx context.Context, gameID string) (*store.Session, error)
	SessionsInYear(ctx context.Context, gameID string, year int) ([]store.Session, error)
	HasSessionsInYear(ctx context.Context, gameID string, year int) (bool, error)
	OverallPlaytime(ctx context.Context) ([]store.GamePlaytime, error)
	GetGame(ctx context.Context, id string) (*store.GameTotal, error)
}

// Reporter builds reports on demand. Nothing is cached between calls.
type Reporter struct {
	src    Source
	oracle oracle
	logger zerolog.Logger
}

func New(src Source, logger zerolog.Logger) *Reporter {
	return &Reporter{
		src:    src,
		oracle: oracle{src: src},
		logger: logger.With().Str("component", "stats").Logger(),
	}
}

func observe(report string, started time.Time) {
	metrics.ReportDuration.WithLabelValues(report).Observe(time.Since(started).Seconds())
}
