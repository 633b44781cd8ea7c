package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/playtime/internal/ledger"
	"github.com/sadopc/playtime/internal/stats"
)

type gamesModel struct {
	reporter     *stats.Reporter
	ledger       *ledger.Ledger
	manualSource string
	width        int
	height       int

	games  []stats.GameSummary
	cursor int

	viewingYear bool
	year        int
	yearReport  *stats.YearReport
	chart       barchart.Model

	formActive bool
	form       *huh.Form
	formTotal  *string // hours
}

func newGamesModel(r *stats.Reporter, l *ledger.Ledger, manualSource string) gamesModel {
	total := ""
	return gamesModel{
		reporter:     r,
		ledger:       l,
		manualSource: manualSource,
		chart:        barchart.New(60, 12),
		formTotal:    &total,
	}
}

func (g *gamesModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

type gamesDataMsg struct {
	games []stats.GameSummary
}

type yearDataMsg struct {
	report *stats.YearReport
}

func (g gamesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		games, err := g.reporter.OverallPlaytime(context.Background())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return gamesDataMsg{games: games}
	}
}

func (g gamesModel) loadYear(gameID string, year int) tea.Cmd {
	return func() tea.Msg {
		report, err := g.reporter.GameYearReport(context.Background(), gameID, year)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return yearDataMsg{report: report}
	}
}

func (g gamesModel) selected() (stats.GameSummary, bool) {
	if g.cursor < 0 || g.cursor >= len(g.games) {
		return stats.GameSummary{}, false
	}
	return g.games[g.cursor], true
}

func (g gamesModel) update(msg tea.Msg) (gamesModel, tea.Cmd) {
	if g.formActive && g.form != nil {
		return g.updateForm(msg)
	}

	switch msg := msg.(type) {
	case gamesDataMsg:
		g.games = msg.games
		if g.cursor >= len(g.games) {
			g.cursor = max(0, len(g.games)-1)
		}
		return g, nil

	case yearDataMsg:
		g.yearReport = msg.report
		g.year = msg.report.Year
		g.buildChart()
		return g, nil

	case tea.KeyMsg:
		if g.viewingYear {
			return g.updateYearView(msg)
		}
		return g.updateList(msg)
	}
	return g, nil
}

func (g gamesModel) updateList(msg tea.KeyMsg) (gamesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if g.cursor > 0 {
			g.cursor--
		}
	case key.Matches(msg, keys.Down):
		if g.cursor < len(g.games)-1 {
			g.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if game, ok := g.selected(); ok {
			g.viewingYear = true
			g.yearReport = nil
			return g, g.loadYear(game.Game.ID, game.LastPlayedAt.Year())
		}
	case key.Matches(msg, keys.Manual):
		if _, ok := g.selected(); ok {
			return g.showManualForm()
		}
	}
	return g, nil
}

func (g gamesModel) updateYearView(msg tea.KeyMsg) (gamesModel, tea.Cmd) {
	game, ok := g.selected()
	if !ok {
		g.viewingYear = false
		return g, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		g.viewingYear = false
	case key.Matches(msg, keys.Left):
		if g.yearReport != nil && g.yearReport.HasPrev {
			return g, g.loadYear(game.Game.ID, g.year-1)
		}
	case key.Matches(msg, keys.Right):
		if g.yearReport != nil && g.yearReport.HasNext {
			return g, g.loadYear(game.Game.ID, g.year+1)
		}
	case key.Matches(msg, keys.Manual):
		return g.showManualForm()
	}
	return g, nil
}

func (g gamesModel) showManualForm() (gamesModel, tea.Cmd) {
	game, _ := g.selected()
	*g.formTotal = strconv.FormatFloat(game.Total/3600, 'f', 2, 64)

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Total playtime for %s (hours)", game.Game.Name)).
				Description("A correcting session is added for the difference").
				Value(g.formTotal).
				Validate(func(s string) error {
					if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
						return fmt.Errorf("enter a number of hours")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g gamesModel) updateForm(msg tea.Msg) (gamesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			g.formActive = false
			g.form = nil
			return g, nil
		}
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.formActive = false
		g.form = nil
		game, ok := g.selected()
		if !ok {
			return g, nil
		}
		hours, err := strconv.ParseFloat(strings.TrimSpace(*g.formTotal), 64)
		if err != nil {
			return g, nil
		}
		return g, g.applyManualTotal(game, int64(math.Round(hours*3600)))
	}

	return g, cmd
}

func (g gamesModel) applyManualTotal(game stats.GameSummary, total int64) tea.Cmd {
	apply := func() tea.Msg {
		delta, err := g.ledger.ApplyManualTotal(context.Background(), ledger.ManualTotal{
			At:       now(),
			GameID:   game.Game.ID,
			GameName: game.Game.Name,
			Total:    total,
			Source:   g.manualSource,
		})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if delta == 0 {
			return statusMsg{text: game.Game.Name + " total unchanged"}
		}
		return statusMsg{text: fmt.Sprintf("%s corrected by %s", game.Game.Name, formatSeconds(delta))}
	}

	cmds := []tea.Cmd{tea.Sequence(apply, g.refresh())}
	if g.viewingYear {
		cmds = append(cmds, g.loadYear(game.Game.ID, g.year))
	}
	return tea.Sequence(cmds...)
}

func (g *gamesModel) buildChart() {
	chartWidth := max(g.width-8, 24)
	chartHeight := 12
	if g.height > 30 {
		chartHeight = 16
	}
	g.chart = barchart.New(chartWidth, chartHeight)
	if g.yearReport == nil {
		return
	}

	style := lipgloss.NewStyle().Foreground(gameColor(g.yearReport.GameID))
	bars := make([]barchart.BarData, 0, len(g.yearReport.Months))
	for _, m := range g.yearReport.Months {
		bars = append(bars, barchart.BarData{
			Label: m.MonthName,
			Values: []barchart.BarValue{{
				Name:  m.MonthName,
				Value: math.Max(m.Total, 0) / 3600,
				Style: style,
			}},
		})
	}

	g.chart.PushAll(bars)
	g.chart.Draw()
}

func (g gamesModel) view() string {
	w := g.width - 4

	if g.formActive && g.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Set Total"), "", g.form.View()),
		)
	}
	if g.viewingYear {
		return g.renderYearView(w)
	}
	return g.renderList(w)
}

func (g gamesModel) renderList(w int) string {
	title := titleStyle.Render("Games")

	if len(g.games) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No sessions recorded yet. Start one from the dashboard."),
		))
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-22s %10s %9s %10s  %s", "Name", "Total", "Sessions", "Longest", "Last played")))

	for i, game := range g.games {
		dot := gameDot(game.Game.ID)
		cursor := "  "
		style := normalItemStyle
		if i == g.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-22s %10s %9d %10s  %s",
			cursor, dot, game.Game.Name,
			formatHours(game.Total), game.SessionCount,
			formatSeconds(int64(game.LastPlayDuration)), lastPlayed(game.LastPlayedAt),
		)))
	}

	rows = append(rows, "", mutedStyle.Render("  enter: by month  m: set total"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (g gamesModel) renderYearView(w int) string {
	game, _ := g.selected()
	dot := gameDot(game.Game.ID)
	header := titleStyle.Render(fmt.Sprintf("%s %s  %d", dot, game.Game.Name, g.year))

	if g.yearReport == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("Loading...")))
	}

	var total float64
	var sessions int
	var lines []string
	for _, m := range g.yearReport.Months {
		total += m.Total
		sessions += m.SessionCount
		if m.SessionCount == 0 {
			continue
		}
		line := fmt.Sprintf("  %-4s %10s  %3d sessions", m.MonthName, formatHours(m.Total), m.SessionCount)
		if n := corrections(m.Sessions); n > 0 {
			line += correctionStyle.Render(fmt.Sprintf("  %d corrected", n))
		}
		lines = append(lines, line)
	}
	summary := highlightStyle.Render(fmt.Sprintf("%s in %d sessions", formatHours(total), sessions))

	var nav []string
	if g.yearReport.HasPrev {
		nav = append(nav, fmt.Sprintf("←: %d", g.year-1))
	}
	if g.yearReport.HasNext {
		nav = append(nav, fmt.Sprintf("→: %d", g.year+1))
	}
	nav = append(nav, "m: set total", "esc: back")

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header+"  "+summary, "", g.chart.View(), "", strings.Join(lines, "\n"), "",
		mutedStyle.Render("  "+strings.Join(nav, "  ")),
	))
}

// corrections counts the sessions that did not come from the play timer.
func corrections(sessions []stats.SessionView) int {
	n := 0
	for _, s := range sessions {
		if s.Migrated != nil {
			n++
		}
	}
	return n
}
