package store

import "time"

type Game struct {
	ID   string
	Name string
}

// Session is one recorded interval of play. Source is nil for organically
// recorded sessions and set for manual corrections or migrated entries.
type Session struct {
	ID        int64
	GameID    string
	StartedAt time.Time
	Duration  int64 // seconds, negative for downward corrections
	Source    *string
}

// SessionRow is a Session joined with its game's display name.
type SessionRow struct {
	Session
	GameName string
}

// GamePlaytime is the per-game aggregate over the accumulator and the session log.
type GamePlaytime struct {
	GameID          string
	GameName        string
	Total           int64
	SessionCount    int64
	LastPlayedAt    time.Time
	LongestDuration int64 // MAX(duration)
	LatestDuration  int64 // duration of the session at LastPlayedAt
}

// GameTotal is a game joined with its accumulated total.
type GameTotal struct {
	ID    string
	Name  string
	Total int64
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	GameID string
	From   *time.Time
	To     *time.Time
	Limit  int
}
