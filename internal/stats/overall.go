package stats

import (
	"context"
	"fmt"
	"time"
)

// OverallPlaytime summarises every game with at least one session, by name.
func (r *Reporter) OverallPlaytime(ctx context.Context) ([]GameSummary, error) {
	defer observe("overall", time.Now())

	rows, err := r.src.OverallPlaytime(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]GameSummary, 0, len(rows))
	for _, g := range rows {
		out = append(out, GameSummary{
			Game:             GameRef{ID: g.GameID, Name: g.GameName},
			Total:            float64(g.Total),
			SessionCount:     g.SessionCount,
			LastPlayedAt:     g.LastPlayedAt,
			LastPlayDuration: float64(g.LongestDuration),
			LatestDuration:   float64(g.LatestDuration),
		})
	}
	return out, nil
}

// GetGame returns one game's accumulated total. A game that was never played
// yields an error wrapping store.ErrNotFound.
func (r *Reporter) GetGame(ctx context.Context, id string) (*GameTotal, error) {
	g, err := r.src.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("game report: %w", err)
	}
	return &GameTotal{ID: g.ID, Name: g.Name, Total: float64(g.Total)}, nil
}
