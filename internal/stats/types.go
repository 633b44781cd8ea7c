package stats

import "time"

type GameRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameDayStat is one game's playtime on one day. LastPlayedAt and
// LastPlayDuration describe the game's most recent session overall, so they
// are identical in every day the game appears in.
type GameDayStat struct {
	Game             GameRef   `json:"game"`
	Seconds          int64     `json:"time"`
	SessionCount     int       `json:"total_sessions"`
	LastPlayedAt     time.Time `json:"last_play_time_date"`
	LastPlayDuration int64     `json:"last_play_duration_time"`
}

type DayBucket struct {
	Date  string        `json:"date"`
	Games []GameDayStat `json:"games"`
	Total int64         `json:"total"`
}

type DailyReport struct {
	Days    []DayBucket `json:"data"`
	HasPrev bool        `json:"hasPrev"`
	HasNext bool        `json:"hasNext"`
}

// SessionView is a session as listed inside a month bucket.
type SessionView struct {
	Date     time.Time `json:"date"`
	Duration float64   `json:"duration"`
	Migrated *string   `json:"migrated,omitempty"`
}

type MonthBucket struct {
	Month        int           `json:"month"`
	MonthName    string        `json:"month_name"`
	Total        float64       `json:"total"`
	SessionCount int           `json:"sessions_count"`
	Sessions     []SessionView `json:"sessions"`
}

type YearReport struct {
	GameID  string        `json:"game_id"`
	Year    int           `json:"year"`
	Months  []MonthBucket `json:"data"`
	HasPrev bool          `json:"hasPrev"`
	HasNext bool          `json:"hasNext"`
}

// GameSummary is one row of the all-time per-game summary. LastPlayDuration
// is the game's longest session, as the per-game aggregate has always
// reported it; LatestDuration is the length of the session at LastPlayedAt.
type GameSummary struct {
	Game             GameRef   `json:"game"`
	Total            float64   `json:"time"`
	SessionCount     int64     `json:"total_sessions"`
	LastPlayedAt     time.Time `json:"last_play_time_date"`
	LastPlayDuration float64   `json:"last_play_duration_time"`
	LatestDuration   float64   `json:"latest_session_duration"`
}

type GameTotal struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Total float64 `json:"time"`
}
