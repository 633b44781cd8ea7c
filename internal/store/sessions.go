package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sessionColumns = `pt.id, pt.game_id, pt.date_time, pt.duration, pt.migrated`

func (q *queries) InsertSession(ctx context.Context, sess Session) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO play_time (date_time, duration, game_id, migrated) VALUES (?, ?, ?, ?)`,
		FormatTimestamp(sess.StartedAt), sess.Duration, sess.GameID, sess.Source,
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// SumSessionDurations returns the summed duration of every session of gameID,
// or 0 when the game has none.
func (q *queries) SumSessionDurations(ctx context.Context, gameID string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration), 0) FROM play_time WHERE game_id = ?`, gameID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum sessions of %q: %w", gameID, err)
	}
	return total, nil
}

// SessionsBetween returns sessions with from <= date_time <= to, joined to the
// game name and ordered by timestamp.
func (q *queries) SessionsBetween(ctx context.Context, from, to time.Time) ([]SessionRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`, COALESCE(gd.name, pt.game_id)
		FROM play_time pt
		LEFT JOIN game_dict gd ON gd.game_id = pt.game_id
		WHERE pt.date_time BETWEEN ? AND ?
		ORDER BY pt.date_time, pt.id`,
		FormatTimestamp(from), FormatTimestamp(to),
	)
	if err != nil {
		return nil, fmt.Errorf("sessions between: %w", err)
	}
	defer rows.Close()
	return scanSessionRows(rows)
}

// HasSessionsBefore reports whether any session is strictly earlier than t.
func (q *queries) HasSessionsBefore(ctx context.Context, t time.Time) (bool, error) {
	return q.exists(ctx, `SELECT EXISTS (SELECT 1 FROM play_time WHERE date_time < ?)`, FormatTimestamp(t))
}

// HasSessionsAfter reports whether any session is strictly later than t.
func (q *queries) HasSessionsAfter(ctx context.Context, t time.Time) (bool, error) {
	return q.exists(ctx, `SELECT EXISTS (SELECT 1 FROM play_time WHERE date_time > ?)`, FormatTimestamp(t))
}

// LastSession returns the most recent session of gameID across all time.
func (q *queries) LastSession(ctx context.Context, gameID string) (*Session, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM play_time pt
		WHERE pt.game_id = ?
		ORDER BY pt.date_time DESC, pt.id DESC
		LIMIT 1`, gameID,
	)
	var s Session
	var dateTime string
	var source sql.NullString
	err := row.Scan(&s.ID, &s.GameID, &dateTime, &s.Duration, &source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("last session of %q: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("last session of %q: %w", gameID, err)
	}
	if err := fillSession(&s, dateTime, source); err != nil {
		return nil, err
	}
	return &s, nil
}

// SessionsInYear returns every session of gameID whose timestamp falls in the
// given calendar year, ordered by timestamp.
func (q *queries) SessionsInYear(ctx context.Context, gameID string, year int) ([]Session, error) {
	from, to := yearBounds(year)
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM play_time pt
		WHERE pt.game_id = ? AND pt.date_time >= ? AND pt.date_time < ?
		ORDER BY pt.date_time, pt.id`,
		gameID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("sessions of %q in %d: %w", gameID, year, err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var dateTime string
		var source sql.NullString
		if err := rows.Scan(&s.ID, &s.GameID, &dateTime, &s.Duration, &source); err != nil {
			return nil, err
		}
		if err := fillSession(&s, dateTime, source); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// HasSessionsInYear reports whether gameID has any session in the given year.
func (q *queries) HasSessionsInYear(ctx context.Context, gameID string, year int) (bool, error) {
	from, to := yearBounds(year)
	return q.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM play_time WHERE game_id = ? AND date_time >= ? AND date_time < ?)`,
		gameID, from, to,
	)
}

func (q *queries) ListSessions(ctx context.Context, f SessionFilter) ([]SessionRow, error) {
	query := `SELECT ` + sessionColumns + `, COALESCE(gd.name, pt.game_id)
		FROM play_time pt
		LEFT JOIN game_dict gd ON gd.game_id = pt.game_id
		WHERE 1=1`
	var args []any

	if f.GameID != "" {
		query += ` AND pt.game_id = ?`
		args = append(args, f.GameID)
	}
	if f.From != nil {
		query += ` AND pt.date_time >= ?`
		args = append(args, FormatTimestamp(*f.From))
	}
	if f.To != nil {
		query += ` AND pt.date_time < ?`
		args = append(args, FormatTimestamp(*f.To))
	}
	query += ` ORDER BY pt.date_time DESC, pt.id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return scanSessionRows(rows)
}

func (q *queries) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("exists query: %w", err)
	}
	return found, nil
}

func scanSessionRows(rows *sql.Rows) ([]SessionRow, error) {
	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var dateTime string
		var source sql.NullString
		if err := rows.Scan(&r.ID, &r.GameID, &dateTime, &r.Duration, &source, &r.GameName); err != nil {
			return nil, err
		}
		if err := fillSession(&r.Session, dateTime, source); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func fillSession(s *Session, dateTime string, source sql.NullString) error {
	t, err := ParseTimestamp(dateTime)
	if err != nil {
		return fmt.Errorf("session %d: %w", s.ID, err)
	}
	s.StartedAt = t
	if source.Valid {
		src := source.String
		s.Source = &src
	}
	return nil
}

func yearBounds(year int) (string, string) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return FormatTimestamp(from), FormatTimestamp(from.AddDate(1, 0, 0))
}
