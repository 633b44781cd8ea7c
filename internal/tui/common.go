package tui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sadopc/playtime/internal/ledger"
	"github.com/sadopc/playtime/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewGames
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "Games", "Reports", "Settings"}

// --- Messages ---

type timerStartedMsg struct {
	gameName string
}

type timerStoppedMsg struct {
	session *ledger.NewSession
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func now() time.Time {
	return store.Naive(time.Now())
}

func formatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs float64) string {
	return fmt.Sprintf("%.1fh", secs/3600)
}

// lastPlayed renders a session timestamp relative to the current wall clock.
func lastPlayed(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now(), "ago", "from now")
}
