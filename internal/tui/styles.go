package tui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorBrand   = lipgloss.Color("#7D5BFF")
	colorDim     = lipgloss.Color("#5C6370")
	colorPlaying = lipgloss.Color("#3DDC84")
	colorPaused  = lipgloss.Color("#FFB347")
	colorIdle    = lipgloss.Color("#E0AF68")
	colorRefund  = lipgloss.Color("#FF5F6D")
	colorText    = lipgloss.Color("#D4D8E8")
	colorFrame   = lipgloss.Color("#3B4261")
	colorAccent  = lipgloss.Color("#56B6C2")
)

// gamePalette colours games in charts and legends; see gameColor.
var gamePalette = []lipgloss.Color{
	"#7D5BFF", "#2EC4B6", "#FF6B6B", "#F7B731",
	"#3DDC84", "#45AAF2", "#A55EEA", "#FD9644",
}

// gameColor picks a stable palette entry for a game id.
func gameColor(id string) lipgloss.Color {
	h := fnv.New32a()
	h.Write([]byte(id))
	return gamePalette[h.Sum32()%uint32(len(gamePalette))]
}

func gameDot(id string) string {
	return lipgloss.NewStyle().Foreground(gameColor(id)).Render("●")
}

var (
	brandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorBrand).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFrame).
			Padding(1, 2)

	// Panels holding a live session or an open picker.
	activePanelStyle = panelStyle.
				BorderForeground(colorBrand)

	// Play clock, one style per timer state.
	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center)
	clockStoppedStyle = clockStyle.Foreground(colorDim)
	clockPlayingStyle = clockStyle.Foreground(colorPlaying)
	clockPausedStyle  = clockStyle.Foreground(colorPaused)
	clockIdleStyle    = clockStyle.Foreground(colorIdle).Faint(true)

	playingStyle = lipgloss.NewStyle().Foreground(colorPlaying)
	pausedStyle  = lipgloss.NewStyle().Foreground(colorPaused)
	idleStyle    = lipgloss.NewStyle().Foreground(colorIdle)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	highlightStyle = lipgloss.NewStyle().Foreground(colorAccent)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle     = lipgloss.NewStyle().Foreground(colorRefund)

	// Over the daily limit.
	overLimitStyle = lipgloss.NewStyle().Foreground(colorPaused)

	// Manual corrections and sessions with a negative duration.
	correctionStyle = lipgloss.NewStyle().Foreground(colorAccent).Italic(true)
	refundStyle     = lipgloss.NewStyle().Foreground(colorRefund)

	// Days of a report window without any play.
	emptyDayStyle = lipgloss.NewStyle().Foreground(colorFrame)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorText)
)

// clockFor returns the clock style for the timer's state.
func clockFor(t timerModel) lipgloss.Style {
	switch {
	case !t.running():
		return clockStoppedStyle
	case t.isIdle:
		return clockIdleStyle
	case t.paused():
		return clockPausedStyle
	default:
		return clockPlayingStyle
	}
}

// sessionStyle styles one listed session by how it was recorded.
func sessionStyle(duration int64, source *string) lipgloss.Style {
	switch {
	case duration < 0:
		return refundStyle
	case source != nil:
		return correctionStyle
	default:
		return normalItemStyle
	}
}
