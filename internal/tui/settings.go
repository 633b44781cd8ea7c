package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	idleTimeout *string
	idleAction  *string
	reportDays  *string
	dailyGoal   *string
}

func newSettingsModel(s *store.Store) settingsModel {
	it, ia, rd, dg := "", "", "", ""
	return settingsModel{
		store:       s,
		idleTimeout: &it,
		idleAction:  &ia,
		reportDays:  &rd,
		dailyGoal:   &dg,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings(context.Background())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.idleTimeout = secsToMin(s.getVal("idle_timeout", "600"))
	*s.idleAction = s.getVal("idle_action", "pause")
	*s.reportDays = s.getVal("report_days", "7")
	*s.dailyGoal = secsToHours(s.getVal("daily_goal", "7200"))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Idle timeout (min)").Value(s.idleTimeout).Validate(positiveInt),
			huh.NewSelect[string]().Title("Idle action").
				Options(
					huh.NewOption("Pause", "pause"),
					huh.NewOption("Stop and record", "stop"),
				).Value(s.idleAction),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewInput().Title("Report window (days)").Value(s.reportDays).Validate(reportSpan),
			huh.NewInput().Title("Daily limit (hours)").Value(s.dailyGoal),
		).Title("Reports"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

func reportSpan(v string) error {
	if err := positiveInt(v); err != nil {
		return err
	}
	if n, _ := strconv.Atoi(v); n > stats.MaxReportDays {
		return fmt.Errorf("at most %d days", stats.MaxReportDays)
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(context.Background()); err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return statusMsg{text: "Settings saved"} })
	}

	return s, cmd
}

func (s settingsModel) saveSettings(ctx context.Context) error {
	values := []store.Setting{
		{Key: "idle_timeout", Value: minToSecs(*s.idleTimeout)},
		{Key: "idle_action", Value: *s.idleAction},
		{Key: "report_days", Value: *s.reportDays},
		{Key: "daily_goal", Value: hoursToSecs(*s.dailyGoal)},
	}
	for _, v := range values {
		if err := s.store.SetSetting(ctx, v.Key, v.Value); err != nil {
			return fmt.Errorf("save %s: %w", v.Key, err)
		}
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(context.Background(), k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "idle_timeout":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case "daily_goal":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%.1f hours", float64(secs)/3600)
		}
	case "report_days":
		return v + " days"
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}

func secsToHours(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return fmt.Sprintf("%.1f", float64(secs)/3600)
	}
	return s
}

func hoursToSecs(s string) string {
	if hours, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.Itoa(int(hours * 3600))
	}
	return s
}
