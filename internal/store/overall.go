package store

import (
	"context"
	"fmt"
)

// AddOverallTime adds delta seconds to the game's accumulator, creating it on
// first use.
func (q *queries) AddOverallTime(ctx context.Context, gameID string, delta int64) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO overall_time (game_id, duration) VALUES (?, ?)
		ON CONFLICT (game_id) DO UPDATE SET duration = duration + excluded.duration`,
		gameID, delta,
	)
	if err != nil {
		return fmt.Errorf("add overall time for %q: %w", gameID, err)
	}
	return nil
}

// OverallPlaytime joins every accumulator with its game and session log. Games
// without sessions drop out of the inner join.
func (q *queries) OverallPlaytime(ctx context.Context) ([]GamePlaytime, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT
			ot.game_id,
			gd.name,
			ot.duration,
			COUNT(pt.id),
			MAX(pt.date_time),
			MAX(pt.duration),
			(SELECT last.duration FROM play_time last
			 WHERE last.game_id = ot.game_id
			 ORDER BY last.date_time DESC, last.id DESC LIMIT 1)
		FROM overall_time ot
		JOIN game_dict gd ON gd.game_id = ot.game_id
		JOIN play_time pt ON pt.game_id = ot.game_id
		GROUP BY ot.game_id, gd.name, ot.duration
		ORDER BY gd.name, ot.game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("overall playtime: %w", err)
	}
	defer rows.Close()

	var out []GamePlaytime
	for rows.Next() {
		var g GamePlaytime
		var lastPlayed string
		if err := rows.Scan(&g.GameID, &g.GameName, &g.Total, &g.SessionCount, &lastPlayed, &g.LongestDuration, &g.LatestDuration); err != nil {
			return nil, err
		}
		t, err := ParseTimestamp(lastPlayed)
		if err != nil {
			return nil, fmt.Errorf("overall playtime for %q: %w", g.GameID, err)
		}
		g.LastPlayedAt = t
		out = append(out, g)
	}
	return out, rows.Err()
}
