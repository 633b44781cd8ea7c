package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/playtime/internal/ledger"
	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
)

type dashboardModel struct {
	store    *store.Store
	reporter *stats.Reporter
	timer    timerModel
	width    int
	height   int

	today     stats.DayBucket
	dailyGoal int64
	recent    []store.SessionRow
	games     []store.Game

	// Game picker state; the row after the last game opens the new game form.
	picking      bool
	pickerCursor int

	formActive bool
	form       *huh.Form
	formID     *string
	formName   *string
}

func newDashboardModel(s *store.Store, l *ledger.Ledger, r *stats.Reporter) dashboardModel {
	id, name := "", ""
	return dashboardModel{
		store:    s,
		reporter: r,
		timer:    newTimerModel(l),
		formID:   &id,
		formName: &name,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	today       stats.DayBucket
	dailyGoal   int64
	recent      []store.SessionRow
	games       []store.Game
	idleTimeout time.Duration
	idleStop    bool
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := dashboardDataMsg{}

		today := now()
		if report, err := d.reporter.DailyReport(ctx, today, today); err == nil && len(report.Days) == 1 {
			msg.today = report.Days[0]
		}
		msg.recent, _ = d.store.ListSessions(ctx, store.SessionFilter{Limit: 5})
		msg.games, _ = d.store.ListGames(ctx)
		msg.dailyGoal = int64(d.store.GetIntSetting(ctx, "daily_goal", 7200))
		msg.idleTimeout = time.Duration(d.store.GetIntSetting(ctx, "idle_timeout", 600)) * time.Second
		if v, err := d.store.GetSetting(ctx, "idle_action"); err == nil {
			msg.idleStop = v == "stop"
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.dailyGoal = msg.dailyGoal
		d.recent = msg.recent
		d.games = msg.games
		if msg.idleTimeout > 0 {
			d.timer.idleTimeout = msg.idleTimeout
		}
		d.timer.idleStop = msg.idleStop
		return d, nil

	case tickMsg:
		if d.timer.tick() {
			return d.stopTimer()
		}
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			if len(d.games) == 0 {
				return d.showNewGameForm()
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.New):
			if d.timer.running() {
				return d, nil
			}
			return d.showNewGameForm()

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.games) {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if d.pickerCursor == len(d.games) {
			return d.showNewGameForm()
		}
		g := d.games[d.pickerCursor]
		return d.startTimer(g.ID, g.Name)
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) showNewGameForm() (dashboardModel, tea.Cmd) {
	*d.formID = ""
	*d.formName = ""

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Game name").Value(d.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().Title("Game id").
				Description("Leave empty to derive it from the name").
				Value(d.formID),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		d.form = nil
		name := strings.TrimSpace(*d.formName)
		id := strings.TrimSpace(*d.formID)
		if id == "" {
			id = slugify(name)
		}
		if id == "" {
			return d, nil
		}
		return d.startTimer(id, name)
	}

	return d, cmd
}

// slugify lowercases name and joins its words with dashes.
func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (d dashboardModel) startTimer(gameID, gameName string) (dashboardModel, tea.Cmd) {
	d.timer.start(gameID, gameName)
	return d, func() tea.Msg { return timerStartedMsg{gameName: gameName} }
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	session, err := d.timer.stop()
	if err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	if session == nil {
		return d, nil
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{session: session} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	if d.formActive && d.form != nil {
		title := titleStyle.Render("New Game")
		return activePanelStyle.Width(contentWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", d.form.View()),
		)
	}

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderTodayPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderGamePicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.timer.running() {
		timeStr := formatDuration(d.timer.currentElapsed())

		timeDisplay := clockFor(d.timer).Width(w - 6).Render(timeStr)
		var indicator string
		switch {
		case d.timer.isIdle:
			indicator = idleStyle.Render("⏸  IDLE")
		case d.timer.paused():
			indicator = pausedStyle.Render("⏸  PAUSED")
		default:
			indicator = playingStyle.Render("●  PLAYING")
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			highlightStyle.Render(d.timer.gameName),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		clockFor(d.timer).Width(w-6).Render("00:00:00"),
		mutedStyle.Render("■  STOPPED"),
		mutedStyle.Render("Press s to start a session"),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	header := fmt.Sprintf("%s  %s", titleStyle.Render("Today"), highlightStyle.Render(formatSeconds(d.today.Total)))
	if d.dailyGoal > 0 {
		pct := float64(d.today.Total) / float64(d.dailyGoal) * 100
		style := mutedStyle
		if d.today.Total > d.dailyGoal {
			style = overLimitStyle
		}
		header += style.Render(fmt.Sprintf("  %.0f%% of %s limit", pct, formatHours(float64(d.dailyGoal))))
	}

	if len(d.today.Games) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("Nothing played today"),
		))
	}

	rows := []string{header}
	for _, g := range d.today.Games {
		dot := gameDot(g.Game.ID)
		rows = append(rows, fmt.Sprintf("  %s %-20s %s  (%d sessions)",
			dot, g.Game.Name, formatSeconds(g.Seconds), g.SessionCount,
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Sessions")
	if len(d.recent) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions yet"),
		))
	}

	rows := []string{title}
	for _, s := range d.recent {
		marker := "✓"
		if s.Source != nil {
			marker = "✎"
		}
		rows = append(rows, sessionStyle(s.Duration, s.Source).Render(fmt.Sprintf("  %s %-14s %-18s %s",
			marker, lastPlayed(s.StartedAt), s.GameName, formatSeconds(s.Duration),
		)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderGamePicker(w int) string {
	rows := []string{titleStyle.Render("Select Game")}
	for i := 0; i <= len(d.games); i++ {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		if i == len(d.games) {
			rows = append(rows, style.Render(cursor+"+ New game"))
			continue
		}
		g := d.games[i]
		dot := gameDot(g.ID)
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, dot, g.Name)))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
