package stats

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/playtime/internal/ledger"
	"github.com/sadopc/playtime/internal/store"
)

type fixture struct {
	store    *store.Store
	ledger   *ledger.Ledger
	reporter *Reporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return &fixture{
		store:    s,
		ledger:   ledger.New(s, zerolog.Nop()),
		reporter: New(s, zerolog.Nop()),
	}
}

func (f *fixture) play(t *testing.T, gameID, name, startedAt string, seconds int64) {
	t.Helper()
	ts, err := store.ParseTimestamp(startedAt)
	require.NoError(t, err)
	require.NoError(t, f.ledger.RecordSession(context.Background(), ledger.NewSession{
		StartedAt: ts, Duration: seconds, GameID: gameID, GameName: name,
	}))
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

// ==========================================================================
// Daily report
// ==========================================================================

func TestDailyReportScenario(t *testing.T) {
	f := newFixture(t)
	f.play(t, "a", "Game A", "2024-01-01T10:00", 600)
	f.play(t, "a", "Game A", "2024-01-01T20:00", 300)
	f.play(t, "b", "Game B", "2024-01-02T09:00", 120)

	r, err := f.reporter.DailyReport(context.Background(), date(t, "2024-01-01"), date(t, "2024-01-02"))
	require.NoError(t, err)
	require.Len(t, r.Days, 2)

	day1 := r.Days[0]
	assert.Equal(t, "2024-01-01", day1.Date)
	require.Len(t, day1.Games, 1)
	assert.Equal(t, "a", day1.Games[0].Game.ID)
	assert.Equal(t, "Game A", day1.Games[0].Game.Name)
	assert.Equal(t, int64(900), day1.Games[0].Seconds)
	assert.Equal(t, 2, day1.Games[0].SessionCount)
	assert.Equal(t, int64(900), day1.Total)

	day2 := r.Days[1]
	assert.Equal(t, "2024-01-02", day2.Date)
	require.Len(t, day2.Games, 1)
	assert.Equal(t, "b", day2.Games[0].Game.ID)
	assert.Equal(t, int64(120), day2.Games[0].Seconds)
	assert.Equal(t, 1, day2.Games[0].SessionCount)
	assert.Equal(t, int64(120), day2.Total)

	assert.False(t, r.HasPrev)
	assert.False(t, r.HasNext)
}

func TestDailyReportFillsEveryDay(t *testing.T) {
	f := newFixture(t)
	f.play(t, "a", "A", "2024-02-29T12:00", 60)

	start, end := date(t, "2023-12-30"), date(t, "2024-03-01")
	r, err := f.reporter.DailyReport(context.Background(), start, end)
	require.NoError(t, err)

	want := int(end.Sub(start).Hours()/24) + 1
	require.Len(t, r.Days, want)
	assert.Equal(t, 63, want)

	for i, d := range r.Days {
		assert.Equal(t, FormatDate(start.AddDate(0, 0, i)), d.Date)
		if d.Date == "2024-02-29" {
			assert.Equal(t, int64(60), d.Total)
			continue
		}
		assert.NotNil(t, d.Games)
		assert.Empty(t, d.Games)
		assert.Zero(t, d.Total)
	}
}

func TestDailyReportSingleEmptyDay(t *testing.T) {
	f := newFixture(t)
	r, err := f.reporter.DailyReport(context.Background(), date(t, "2024-05-05"), date(t, "2024-05-05"))
	require.NoError(t, err)
	require.Len(t, r.Days, 1)
	assert.Equal(t, []GameDayStat{}, r.Days[0].Games)
	assert.False(t, r.HasPrev)
	assert.False(t, r.HasNext)
}

func TestDailyReportTotalsMatchWindow(t *testing.T) {
	f := newFixture(t)
	f.play(t, "a", "A", "2024-03-31T23:59:59", 10)
	f.play(t, "a", "A", "2024-04-01T00:00:00", 100)
	f.play(t, "b", "B", "2024-04-02T13:00:00", 200)
	f.play(t, "a", "A", "2024-04-02T18:00:00", 300)
	f.play(t, "b", "B", "2024-04-03T23:59:59.999999", 400)
	f.play(t, "b", "B", "2024-04-04T00:00:00", 20)

	r, err := f.reporter.DailyReport(context.Background(), date(t, "2024-04-01"), date(t, "2024-04-03"))
	require.NoError(t, err)

	var sum int64
	for _, d := range r.Days {
		var daySum int64
		for _, g := range d.Games {
			daySum += g.Seconds
		}
		assert.Equal(t, daySum, d.Total, d.Date)
		sum += d.Total
	}
	assert.Equal(t, int64(1000), sum)
	assert.True(t, r.HasPrev)
	assert.True(t, r.HasNext)

	day2 := r.Days[1]
	require.Len(t, day2.Games, 2)
	assert.Equal(t, "b", day2.Games[0].Game.ID, "games keep order of first appearance")
	assert.Equal(t, "a", day2.Games[1].Game.ID)
}

func TestDailyReportBoundaries(t *testing.T) {
	ctx := context.Background()

	t.Run("session at last microsecond is inside", func(t *testing.T) {
		f := newFixture(t)
		f.play(t, "a", "A", "2024-01-02T23:59:59.999999", 50)

		r, err := f.reporter.DailyReport(ctx, date(t, "2024-01-01"), date(t, "2024-01-02"))
		require.NoError(t, err)
		assert.False(t, r.HasNext)
		assert.Equal(t, int64(50), r.Days[1].Total)
	})

	t.Run("one microsecond later is outside", func(t *testing.T) {
		f := newFixture(t)
		f.play(t, "a", "A", "2024-01-03T00:00:00.000000", 50)

		r, err := f.reporter.DailyReport(ctx, date(t, "2024-01-01"), date(t, "2024-01-02"))
		require.NoError(t, err)
		assert.True(t, r.HasNext)
		assert.Zero(t, r.Days[1].Total)
	})

	t.Run("session at start midnight is not before", func(t *testing.T) {
		f := newFixture(t)
		f.play(t, "a", "A", "2024-01-01T00:00:00", 50)

		r, err := f.reporter.DailyReport(ctx, date(t, "2024-01-01"), date(t, "2024-01-02"))
		require.NoError(t, err)
		assert.False(t, r.HasPrev)
		assert.Equal(t, int64(50), r.Days[0].Total)
	})

	t.Run("session a microsecond before start is before", func(t *testing.T) {
		f := newFixture(t)
		f.play(t, "a", "A", "2023-12-31T23:59:59.999999", 50)

		r, err := f.reporter.DailyReport(ctx, date(t, "2024-01-01"), date(t, "2024-01-02"))
		require.NoError(t, err)
		assert.True(t, r.HasPrev)
		assert.False(t, r.HasNext)
	})
}

func TestDailyReportLastSessionIsOverall(t *testing.T) {
	f := newFixture(t)
	f.play(t, "a", "A", "2024-01-01T10:00", 600)
	f.play(t, "a", "A", "2024-01-02T10:00", 60)
	f.play(t, "a", "A", "2024-01-10T08:30", 45)

	r, err := f.reporter.DailyReport(context.Background(), date(t, "2024-01-01"), date(t, "2024-01-02"))
	require.NoError(t, err)

	want, err := store.ParseTimestamp("2024-01-10T08:30")
	require.NoError(t, err)
	for _, d := range r.Days {
		require.Len(t, d.Games, 1)
		assert.Equal(t, want, d.Games[0].LastPlayedAt)
		assert.Equal(t, int64(45), d.Games[0].LastPlayDuration)
	}
}

func TestDailyReportIgnoresTimeOfDay(t *testing.T) {
	f := newFixture(t)
	f.play(t, "a", "A", "2024-01-01T01:00", 30)

	start := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	r, err := f.reporter.DailyReport(context.Background(), start, start)
	require.NoError(t, err)
	require.Len(t, r.Days, 1)
	assert.Equal(t, int64(30), r.Days[0].Total)
}

func TestDailyReportInvalidRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.reporter.DailyReport(context.Background(), date(t, "2024-01-02"), date(t, "2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDailyReportRangeCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.reporter.DailyReport(ctx, date(t, "2024-01-01"), date(t, "2024-12-31"))
	require.NoError(t, err)
	assert.Len(t, r.Days, MaxReportDays)

	_, err = f.reporter.DailyReport(ctx, date(t, "2024-01-01"), date(t, "2025-01-01"))
	assert.ErrorIs(t, err, ErrRangeTooLarge)

	_, err = f.reporter.DailyReport(ctx, date(t, "0001-01-01"), date(t, "9999-12-31"))
	assert.ErrorIs(t, err, ErrRangeTooLarge)
}

func TestBucketRowsOrderIndependent(t *testing.T) {
	mk := func(game, ts string, d int64) store.SessionRow {
		st, err := store.ParseTimestamp(ts)
		require.NoError(t, err)
		return store.SessionRow{Session: store.Session{GameID: game, StartedAt: st, Duration: d}, GameName: game}
	}
	rows := []store.SessionRow{
		mk("a", "2024-01-01T10:00", 100),
		mk("b", "2024-01-02T10:00", 5),
		mk("a", "2024-01-01T12:00", 200),
		mk("a", "2024-01-02T09:00", 7),
		mk("a", "2024-01-01T08:00", 300),
	}

	groups := bucketRows(rows)
	require.Len(t, groups, 2)

	day1 := groups["2024-01-01"]
	require.Equal(t, []string{"a"}, day1.order)
	assert.Equal(t, int64(600), day1.games["a"].Seconds)
	assert.Equal(t, 3, day1.games["a"].SessionCount)

	day2 := groups["2024-01-02"]
	require.Equal(t, []string{"b", "a"}, day2.order)
	assert.Equal(t, int64(7), day2.games["a"].Seconds)
}

// ==========================================================================
// Year report
// ==========================================================================

func TestGameYearReport(t *testing.T) {
	f := newFixture(t)
	f.play(t, "a", "A", "2023-06-01T10:00", 10)
	f.play(t, "a", "A", "2024-01-31T23:59:59.999999", 100)
	f.play(t, "a", "A", "2024-02-01T00:00", 200)
	f.play(t, "a", "A", "2024-02-15T10:00", 300)
	f.play(t, "a", "A", "2024-12-31T23:00", 400)
	f.play(t, "b", "B", "2024-03-01T10:00", 999)

	r, err := f.reporter.GameYearReport(context.Background(), "a", 2024)
	require.NoError(t, err)
	require.Len(t, r.Months, 12)

	names := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	for i, m := range r.Months {
		assert.Equal(t, i+1, m.Month)
		assert.Equal(t, names[i], m.MonthName)
		assert.NotNil(t, m.Sessions)
	}

	assert.Equal(t, 100.0, r.Months[0].Total)
	assert.Equal(t, 1, r.Months[0].SessionCount)
	assert.Equal(t, 500.0, r.Months[1].Total)
	assert.Equal(t, 2, r.Months[1].SessionCount)
	require.Len(t, r.Months[1].Sessions, 2)
	assert.Equal(t, 200.0, r.Months[1].Sessions[0].Duration)
	assert.Zero(t, r.Months[2].Total, "other games do not leak in")
	assert.Empty(t, r.Months[2].Sessions)
	assert.Equal(t, 400.0, r.Months[11].Total)

	assert.True(t, r.HasPrev)
	assert.False(t, r.HasNext)
}

func TestGameYearReportEmptyYear(t *testing.T) {
	f := newFixture(t)
	f.play(t, "a", "A", "2025-03-01T10:00", 10)

	r, err := f.reporter.GameYearReport(context.Background(), "a", 2024)
	require.NoError(t, err)
	require.Len(t, r.Months, 12)
	for _, m := range r.Months {
		assert.Zero(t, m.Total)
		assert.Zero(t, m.SessionCount)
		assert.Empty(t, m.Sessions)
	}
	assert.False(t, r.HasPrev)
	assert.True(t, r.HasNext)
}

func TestGameYearReportKeepsSourceTag(t *testing.T) {
	f := newFixture(t)
	f.play(t, "a", "A", "2024-01-01T10:00", 100)
	at, err := store.ParseTimestamp("2024-01-15T00:00")
	require.NoError(t, err)
	_, err = f.ledger.ApplyManualTotal(context.Background(), ledger.ManualTotal{
		At: at, GameID: "a", GameName: "A", Total: 50, Source: "manual",
	})
	require.NoError(t, err)

	r, err := f.reporter.GameYearReport(context.Background(), "a", 2024)
	require.NoError(t, err)
	jan := r.Months[0]
	require.Len(t, jan.Sessions, 2)
	assert.Nil(t, jan.Sessions[0].Migrated)
	require.NotNil(t, jan.Sessions[1].Migrated)
	assert.Equal(t, "manual", *jan.Sessions[1].Migrated)
	assert.Equal(t, -50.0, jan.Sessions[1].Duration)
	assert.Equal(t, 50.0, jan.Total)
}

// ==========================================================================
// Overall
// ==========================================================================

func TestOverallPlaytime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.play(t, "z", "Zelda", "2024-01-01T10:00", 1200)
	f.play(t, "z", "Zelda", "2024-01-03T10:00", 300)
	f.play(t, "c", "Celeste", "2024-01-02T10:00", 60)

	_, err := f.ledger.ApplyManualTotal(ctx, ledger.ManualTotal{GameID: "n", GameName: "Never Played", Total: 0, Source: "manual"})
	require.NoError(t, err)

	games, err := f.reporter.OverallPlaytime(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2, "games without sessions are excluded")

	assert.Equal(t, "Celeste", games[0].Game.Name)
	z := games[1]
	assert.Equal(t, "z", z.Game.ID)
	assert.Equal(t, 1500.0, z.Total)
	assert.Equal(t, int64(2), z.SessionCount)
	assert.Equal(t, 1200.0, z.LastPlayDuration, "last_play_duration_time is MAX(duration)")
	assert.Equal(t, 300.0, z.LatestDuration)
	assert.Equal(t, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), z.LastPlayedAt)
}

func TestOverallAfterManualTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.play(t, "a", "A", "2024-01-01T10:00", 400)

	_, err := f.ledger.ApplyManualTotal(ctx, ledger.ManualTotal{
		At: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), GameID: "a", GameName: "A", Total: 1000, Source: "manual",
	})
	require.NoError(t, err)

	games, err := f.reporter.OverallPlaytime(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 1000.0, games[0].Total)
}

func TestGetGame(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.play(t, "a", "A", "2024-01-01T10:00", 400)

	g, err := f.reporter.GetGame(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, &GameTotal{ID: "a", Name: "A", Total: 400}, g)

	_, err = f.reporter.GetGame(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// ==========================================================================
// Dates
// ==========================================================================

func TestDateRange(t *testing.T) {
	days := DateRange(date(t, "2024-12-30"), date(t, "2025-01-02"))
	got := make([]string, len(days))
	for i, d := range days {
		got[i] = FormatDate(d)
	}
	assert.Equal(t, []string{"2024-12-30", "2024-12-31", "2025-01-01", "2025-01-02"}, got)
}

func TestDayEnd(t *testing.T) {
	end := DayEnd(time.Date(2024, 2, 28, 13, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-02-28T23:59:59.999999", store.FormatTimestamp(end))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("2024/01/01")
	assert.Error(t, err)
}
