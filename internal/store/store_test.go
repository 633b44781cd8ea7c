package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseTimestamp(s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

// insertSession writes a session row directly, bypassing the accumulator.
func insertSession(t *testing.T, s *Store, gameID, at string, duration int64, source *string) int64 {
	t.Helper()
	id, err := s.InsertSession(context.Background(), Session{
		GameID:    gameID,
		StartedAt: mustTime(t, at),
		Duration:  duration,
		Source:    source,
	})
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return id
}

// addGame upserts a game and gives it an accumulator.
func addGame(t *testing.T, s *Store, id, name string, total int64) {
	t.Helper()
	ctx := context.Background()
	if err := s.UpsertGame(ctx, id, name); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOverallTime(ctx, id, total); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.sqlDB.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "playtime.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	addGame(t, s, "celeste", "Celeste", 60)
	s.Close()

	// Reopen: data survives and migrations do not run twice.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	g, err := s2.GetGame(context.Background(), "celeste")
	if err != nil {
		t.Fatal(err)
	}
	if g.Total != 60 {
		t.Fatalf("expected total 60 after reopen, got %d", g.Total)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "playtime.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Timestamps
// ============================================================

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 1, 20, 0, 0, 123456000, time.UTC)
	got := FormatTimestamp(ts)
	if got != "2024-01-01T20:00:00.123456" {
		t.Fatalf("FormatTimestamp = %q", got)
	}
	back, err := ParseTimestamp(got)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(ts) {
		t.Fatalf("round trip gave %v", back)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-01-01T20:00:00.000000",
		"2024-01-01T20:00:00",
		"2024-01-01T20:00",
		"2024-01-01 20:00:00",
		"2024-01-01T20:00:00+05:00",
	} {
		got, err := ParseTimestamp(in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want wall clock %v", in, got, want)
		}
	}

	if _, err := ParseTimestamp("01/01/2024"); err == nil {
		t.Fatal("expected error for non ISO-8601 input")
	}
}

func TestNaiveKeepsWallClock(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*3600)
	got := Naive(time.Date(2024, 1, 1, 23, 30, 0, 0, zone))
	if got.Location() != time.UTC || got.Day() != 1 || got.Hour() != 23 {
		t.Fatalf("Naive shifted the wall clock: %v", got)
	}
}

// ============================================================
// Games
// ============================================================

func TestUpsertGameRenames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addGame(t, s, "celeste", "Celeste", 0)
	if err := s.UpsertGame(ctx, "celeste", "Celeste (2018)"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertGame(ctx, "celeste", "Celeste (2018)"); err != nil {
		t.Fatal(err)
	}

	g, err := s.GetGame(ctx, "celeste")
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != "Celeste (2018)" {
		t.Fatalf("expected rename, got %q", g.Name)
	}
}

func TestGetGameNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetGame(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// A name without an accumulator is not a reportable game.
	if err := s.UpsertGame(ctx, "named", "Named"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetGame(ctx, "named"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without accumulator, got %v", err)
	}
}

func TestListGamesOrderedByName(t *testing.T) {
	s := newTestStore(t)

	addGame(t, s, "z", "Alpha", 0)
	addGame(t, s, "a", "Beta", 0)

	games, err := s.ListGames(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 || games[0].Name != "Alpha" || games[1].Name != "Beta" {
		t.Fatalf("unexpected games %+v", games)
	}
}

func TestAddOverallTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addGame(t, s, "celeste", "Celeste", 100)
	if err := s.AddOverallTime(ctx, "celeste", -40); err != nil {
		t.Fatal(err)
	}

	g, _ := s.GetGame(ctx, "celeste")
	if g.Total != 60 {
		t.Fatalf("expected 60, got %d", g.Total)
	}
}

// ============================================================
// Sessions
// ============================================================

func TestInsertSessionKeepsSource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	manual := "manual"
	insertSession(t, s, "celeste", "2024-01-01T10:00:00", 60, nil)
	insertSession(t, s, "celeste", "2024-01-02T10:00:00", -20, &manual)

	rows, err := s.ListSessions(ctx, SessionFilter{GameID: "celeste"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(rows))
	}
	// Most recent first.
	if rows[0].Source == nil || *rows[0].Source != "manual" || rows[0].Duration != -20 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Source != nil {
		t.Fatal("organic session should have no source")
	}
	// No game_dict row: the id stands in for the name.
	if rows[0].GameName != "celeste" {
		t.Fatalf("expected id fallback name, got %q", rows[0].GameName)
	}
}

func TestSumSessionDurations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	total, err := s.SumSessionDurations(ctx, "celeste")
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("expected 0 for unknown game, got %d", total)
	}

	insertSession(t, s, "celeste", "2024-01-01T10:00:00", 300, nil)
	insertSession(t, s, "celeste", "2024-01-02T10:00:00", 100, nil)
	insertSession(t, s, "hades", "2024-01-02T10:00:00", 999, nil)

	total, _ = s.SumSessionDurations(ctx, "celeste")
	if total != 400 {
		t.Fatalf("expected 400, got %d", total)
	}
}

func TestSessionsBetweenInclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addGame(t, s, "celeste", "Celeste", 0)
	insertSession(t, s, "celeste", "2023-12-31T23:59:59.999999", 1, nil)
	insertSession(t, s, "celeste", "2024-01-01T00:00:00", 2, nil)
	insertSession(t, s, "celeste", "2024-01-01T23:59:59.999999", 3, nil)
	insertSession(t, s, "celeste", "2024-01-02T00:00:00", 4, nil)

	rows, err := s.SessionsBetween(ctx,
		mustTime(t, "2024-01-01T00:00:00"),
		mustTime(t, "2024-01-01T23:59:59.999999"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Duration != 2 || rows[1].Duration != 3 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if rows[0].GameName != "Celeste" {
		t.Fatalf("expected joined name, got %q", rows[0].GameName)
	}
}

func TestHasSessionsBeforeAfter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertSession(t, s, "celeste", "2024-01-01T12:00:00", 60, nil)
	at := mustTime(t, "2024-01-01T12:00:00")

	before, _ := s.HasSessionsBefore(ctx, at)
	after, _ := s.HasSessionsAfter(ctx, at)
	if before || after {
		t.Fatal("a session exactly at the boundary is neither before nor after")
	}

	before, _ = s.HasSessionsBefore(ctx, at.Add(time.Microsecond))
	after, _ = s.HasSessionsAfter(ctx, at.Add(-time.Microsecond))
	if !before || !after {
		t.Fatal("expected the session on both sides of a shifted boundary")
	}
}

func TestLastSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LastSession(ctx, "celeste"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	insertSession(t, s, "celeste", "2024-03-01T10:00:00", 30, nil)
	insertSession(t, s, "celeste", "2024-01-01T10:00:00", 10, nil)
	insertSession(t, s, "celeste", "2024-03-01T10:00:00", 50, nil)

	last, err := s.LastSession(ctx, "celeste")
	if err != nil {
		t.Fatal(err)
	}
	// Equal timestamps resolve to the later insert.
	if last.Duration != 50 {
		t.Fatalf("expected duration 50, got %d", last.Duration)
	}
}

func TestSessionsInYear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertSession(t, s, "celeste", "2023-12-31T23:59:59.999999", 1, nil)
	insertSession(t, s, "celeste", "2024-01-01T00:00:00", 2, nil)
	insertSession(t, s, "celeste", "2024-12-31T23:59:59", 3, nil)
	insertSession(t, s, "celeste", "2025-01-01T00:00:00", 4, nil)
	insertSession(t, s, "hades", "2024-06-01T00:00:00", 5, nil)

	sessions, err := s.SessionsInYear(ctx, "celeste", 2024)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || sessions[0].Duration != 2 || sessions[1].Duration != 3 {
		t.Fatalf("unexpected sessions %+v", sessions)
	}

	for year, want := range map[int]bool{2022: false, 2023: true, 2025: true, 2026: false} {
		got, err := s.HasSessionsInYear(ctx, "celeste", year)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("HasSessionsInYear(%d) = %v, want %v", year, got, want)
		}
	}
}

func TestListSessionsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertSession(t, s, "celeste", "2024-01-01T10:00:00", 1, nil)
	insertSession(t, s, "celeste", "2024-01-02T10:00:00", 2, nil)
	insertSession(t, s, "hades", "2024-01-03T10:00:00", 3, nil)

	from := mustTime(t, "2024-01-02T00:00:00")
	to := mustTime(t, "2024-01-03T00:00:00")
	rows, err := s.ListSessions(ctx, SessionFilter{From: &from, To: &to})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Duration != 2 {
		t.Fatalf("date filter: unexpected rows %+v", rows)
	}

	rows, _ = s.ListSessions(ctx, SessionFilter{Limit: 2})
	if len(rows) != 2 || rows[0].Duration != 3 {
		t.Fatalf("limit: unexpected rows %+v", rows)
	}

	rows, _ = s.ListSessions(ctx, SessionFilter{})
	if len(rows) != 3 {
		t.Fatalf("expected all 3 sessions, got %d", len(rows))
	}
}

// ============================================================
// Overall playtime
// ============================================================

func TestOverallPlaytime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addGame(t, s, "celeste", "Celeste", 700)
	insertSession(t, s, "celeste", "2024-01-01T10:00:00", 500, nil)
	insertSession(t, s, "celeste", "2024-02-01T10:00:00", 200, nil)

	// Accumulator without sessions drops out.
	addGame(t, s, "unplayed", "Unplayed", 0)

	games, err := s.OverallPlaytime(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	g := games[0]
	if g.Total != 700 || g.SessionCount != 2 || g.LongestDuration != 500 || g.LatestDuration != 200 {
		t.Fatalf("unexpected aggregate %+v", g)
	}
	if !g.LastPlayedAt.Equal(mustTime(t, "2024-02-01T10:00:00")) {
		t.Fatalf("unexpected last played %v", g.LastPlayedAt)
	}
}

// ============================================================
// Transactions
// ============================================================

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(w Writer) error {
		if err := w.UpsertGame(ctx, "celeste", "Celeste"); err != nil {
			return err
		}
		return w.AddOverallTime(ctx, "celeste", 60)
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetGame(ctx, "celeste"); err != nil {
		t.Fatalf("committed game missing: %v", err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(w Writer) error {
		if err := w.UpsertGame(ctx, "celeste", "Celeste"); err != nil {
			return err
		}
		if _, err := w.InsertSession(ctx, Session{GameID: "celeste", StartedAt: mustTime(t, "2024-01-01T10:00:00"), Duration: 60}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	games, _ := s.ListGames(ctx)
	total, _ := s.SumSessionDurations(ctx, "celeste")
	if len(games) != 0 || total != 0 {
		t.Fatal("rolled back transaction left rows behind")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	defaults := map[string]string{
		"idle_timeout": "600",
		"idle_action":  "pause",
		"report_days":  "7",
		"daily_goal":   "7200",
	}
	for k, expected := range defaults {
		val, err := s.GetSetting(ctx, k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SetSetting(ctx, "key", "v1")
	s.SetSetting(ctx, "key", "v2")
	val, _ := s.GetSetting(ctx, "key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSetting(context.Background(), "nonexistent"); err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetIntSetting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if got := s.GetIntSetting(ctx, "report_days", 1); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := s.GetIntSetting(ctx, "missing", 42); got != 42 {
		t.Fatalf("expected fallback 42, got %d", got)
	}
	s.SetSetting(ctx, "report_days", "lots")
	if got := s.GetIntSetting(ctx, "report_days", 3); got != 3 {
		t.Fatalf("expected fallback for malformed value, got %d", got)
	}
}

func TestGetAllSettingsSorted(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
