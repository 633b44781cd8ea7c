package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertGame inserts the game, or renames it when the stored name differs.
func (q *queries) UpsertGame(ctx context.Context, id, name string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO game_dict (game_id, name) VALUES (?, ?)
		ON CONFLICT (game_id) DO UPDATE SET name = excluded.name
		WHERE game_dict.name != excluded.name`,
		id, name,
	)
	if err != nil {
		return fmt.Errorf("upsert game %q: %w", id, err)
	}
	return nil
}

// GetGame returns the game joined with its accumulator. Games without an
// accumulator row are reported as ErrNotFound.
func (q *queries) GetGame(ctx context.Context, id string) (*GameTotal, error) {
	g := &GameTotal{}
	err := q.db.QueryRowContext(ctx, `
		SELECT gd.game_id, gd.name, ot.duration
		FROM game_dict gd
		JOIN overall_time ot ON ot.game_id = gd.game_id
		WHERE gd.game_id = ?`, id,
	).Scan(&g.ID, &g.Name, &g.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get game %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get game %q: %w", id, err)
	}
	return g, nil
}

func (q *queries) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT game_id, name FROM game_dict ORDER BY name, game_id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
