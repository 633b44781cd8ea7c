package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
)

type reportsModel struct {
	store    *store.Store
	reporter *stats.Reporter
	width    int
	height   int

	days   int // window length
	offset int // windows back from today (0 = current)
	report *stats.DailyReport

	chart barchart.Model
}

func newReportsModel(s *store.Store, r *stats.Reporter) reportsModel {
	return reportsModel{
		store:    s,
		reporter: r,
		days:     7,
		chart:    barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	days   int
	report *stats.DailyReport
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		days := min(max(r.store.GetIntSetting(ctx, "report_days", 7), 1), stats.MaxReportDays)
		start, end := windowFor(now(), days, r.offset)
		report, err := r.reporter.DailyReport(ctx, start, end)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return reportsDataMsg{days: days, report: report}
	}
}

// windowFor returns the inclusive day range that ends offset windows before
// today.
func windowFor(today time.Time, days, offset int) (time.Time, time.Time) {
	end := stats.Day(today).AddDate(0, 0, -days*offset)
	return end.AddDate(0, 0, -(days - 1)), end
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.days = msg.days
		r.report = msg.report
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if r.report != nil && r.report.HasPrev {
				r.offset++
				return r, r.refresh()
			}
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
				return r, r.refresh()
			}
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)
	if r.report == nil {
		return
	}

	bars := make([]barchart.BarData, 0, len(r.report.Days))
	for _, day := range r.report.Days {
		label := day.Date
		if d, err := stats.ParseDate(day.Date); err == nil {
			label = d.Format("Mon 02")
		}

		var values []barchart.BarValue
		for _, g := range day.Games {
			if g.Seconds <= 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  g.Game.Name,
				Value: float64(g.Seconds) / 3600.0,
				Style: lipgloss.NewStyle().Foreground(gameColor(g.Game.ID)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: emptyDayStyle}}
		}

		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	start, end := windowFor(now(), r.days, r.offset)
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", start.Format("Jan 02"), end.Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Reports"), "  ", dateLabel)

	if r.report == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("Loading...")))
	}

	var nav []string
	if r.report.HasPrev {
		nav = append(nav, "←: earlier")
	}
	if r.offset > 0 {
		nav = append(nav, "→: later")
	}
	navLine := ""
	if len(nav) > 0 {
		navLine = mutedStyle.Render("  " + strings.Join(nav, "  "))
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderLegend(), "", r.renderSummaryTable(w), "", navLine,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-20s %10s %8s", "Date", "Game", "Playtime", "Sessions")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))

	var played bool
	for _, day := range r.report.Days {
		if len(day.Games) == 0 {
			rows = append(rows, emptyDayStyle.Render(fmt.Sprintf("  %-12s %-20s %10s %8s", day.Date, "-", "-", "-")))
			continue
		}
		for _, g := range day.Games {
			played = true
			dot := gameDot(g.Game.ID)
			rows = append(rows, fmt.Sprintf("  %-12s %s %-18s %10s %8d",
				day.Date, dot, g.Game.Name, formatSeconds(g.Seconds), g.SessionCount,
			))
		}
	}
	if !played {
		return mutedStyle.Render("  Nothing played in this period")
	}

	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	seen := make(map[string]bool)
	var items []string
	for _, day := range r.report.Days {
		for _, g := range day.Games {
			if seen[g.Game.ID] {
				continue
			}
			seen[g.Game.ID] = true
			dot := gameDot(g.Game.ID)
			items = append(items, fmt.Sprintf("%s %s", dot, g.Game.Name))
		}
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
