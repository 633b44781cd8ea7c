// Package ledger records play sessions and reconciles manually entered totals
// against the session log.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sadopc/playtime/internal/metrics"
	"github.com/sadopc/playtime/internal/store"
)

// ErrMissingGameID is returned when a write names no game.
var ErrMissingGameID = errors.New("ledger: game id is required")

// TxRunner opens the transactional boundary every ledger write runs in.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(w store.Writer) error) error
}

// NewSession describes one play session to append.
type NewSession struct {
	StartedAt time.Time
	Duration  int64 // seconds
	GameID    string
	GameName  string
	Source    *string
}

// ManualTotal declares what a game's overall playtime should be at a point in time.
type ManualTotal struct {
	At       time.Time
	GameID   string
	GameName string
	Total    int64 // seconds
	Source   string
}

type Ledger struct {
	store  TxRunner
	logger zerolog.Logger
}

func New(s TxRunner, logger zerolog.Logger) *Ledger {
	return &Ledger{
		store:  s,
		logger: logger.With().Str("component", "ledger").Logger(),
	}
}

// RecordSession upserts the game, appends the session and bumps the game's
// accumulator, all in one transaction. Durations are not validated.
func (l *Ledger) RecordSession(ctx context.Context, ns NewSession) error {
	if strings.TrimSpace(ns.GameID) == "" {
		return ErrMissingGameID
	}

	err := l.store.WithTx(ctx, func(w store.Writer) error {
		if err := w.UpsertGame(ctx, ns.GameID, ns.GameName); err != nil {
			return err
		}
		return appendSession(ctx, w, ns)
	})
	if err != nil {
		metrics.LedgerErrors.WithLabelValues("record_session").Inc()
		l.logger.Error().Err(err).Str("game_id", ns.GameID).Msg("Failed to record session")
		return fmt.Errorf("record session: %w", err)
	}

	metrics.SessionsRecorded.WithLabelValues(sourceLabel(ns.Source)).Inc()
	l.logger.Info().
		Str("game_id", ns.GameID).
		Time("started_at", ns.StartedAt).
		Int64("duration", ns.Duration).
		Msg("Session recorded")
	return nil
}

// ApplyManualTotal makes the game's summed session duration equal total by
// appending one compensating session of the difference. Existing sessions are
// never edited. It returns the delta written, 0 when nothing was needed.
func (l *Ledger) ApplyManualTotal(ctx context.Context, mt ManualTotal) (int64, error) {
	if strings.TrimSpace(mt.GameID) == "" {
		return 0, ErrMissingGameID
	}

	var delta int64
	err := l.store.WithTx(ctx, func(w store.Writer) error {
		if err := w.UpsertGame(ctx, mt.GameID, mt.GameName); err != nil {
			return err
		}
		current, err := w.SumSessionDurations(ctx, mt.GameID)
		if err != nil {
			return err
		}
		delta = mt.Total - current
		if delta == 0 {
			return nil
		}
		source := mt.Source
		return appendSession(ctx, w, NewSession{
			StartedAt: mt.At,
			Duration:  delta,
			GameID:    mt.GameID,
			Source:    &source,
		})
	})
	if err != nil {
		metrics.LedgerErrors.WithLabelValues("apply_manual_total").Inc()
		l.logger.Error().Err(err).Str("game_id", mt.GameID).Msg("Failed to apply manual total")
		return 0, fmt.Errorf("apply manual total: %w", err)
	}

	if delta == 0 {
		metrics.ManualCorrections.WithLabelValues("noop").Inc()
		l.logger.Debug().Str("game_id", mt.GameID).Int64("total", mt.Total).Msg("Manual total already matches")
		return 0, nil
	}

	metrics.ManualCorrections.WithLabelValues("applied").Inc()
	metrics.SessionsRecorded.WithLabelValues(sourceManual).Inc()
	l.logger.Info().
		Str("game_id", mt.GameID).
		Int64("total", mt.Total).
		Int64("delta", delta).
		Str("source", mt.Source).
		Msg("Manual total applied")
	return delta, nil
}

func appendSession(ctx context.Context, w store.Writer, ns NewSession) error {
	if _, err := w.InsertSession(ctx, store.Session{
		GameID:    ns.GameID,
		StartedAt: ns.StartedAt,
		Duration:  ns.Duration,
		Source:    ns.Source,
	}); err != nil {
		return err
	}
	return w.AddOverallTime(ctx, ns.GameID, ns.Duration)
}

// Metric labels for session sources. Free-form tags collapse to sourceOther.
const (
	sourceOrganic = "organic"
	sourceManual  = "manual"
	sourceOther   = "other"
)

func sourceLabel(source *string) string {
	switch {
	case source == nil:
		return sourceOrganic
	case *source == sourceManual:
		return sourceManual
	default:
		return sourceOther
	}
}
