package cmd

import (
	"fmt"
	"strconv"

	"github.com/sadopc/playtime/internal/stats"
	"github.com/spf13/cobra"
)

var (
	dailyFrom string
	dailyTo   string
	yearFlag  int
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show playtime per day and game",
	Long: `Show playtime per calendar day and game. Every day of the window is listed,
including days without sessions.`,
	Example: `  playtime daily
  playtime daily --from 2024-01-01 --to 2024-01-31 --json`,
	Args: cobra.NoArgs,
	RunE: runDaily,
}

var yearCmd = &cobra.Command{
	Use:   "year GAME_ID",
	Short: "Show a game's playtime per month",
	Args:  cobra.ExactArgs(1),
	RunE:  runYear,
}

var overallCmd = &cobra.Command{
	Use:   "overall",
	Short: "Show all-time playtime per game",
	Args:  cobra.NoArgs,
	RunE:  runOverall,
}

var gameCmd = &cobra.Command{
	Use:   "game GAME_ID",
	Short: "Show one game's total playtime",
	Args:  cobra.ExactArgs(1),
	RunE:  runGame,
}

func init() {
	dailyCmd.Flags().StringVar(&dailyFrom, "from", "", "First day (YYYY-MM-DD, defaults to reports.default_days before --to)")
	dailyCmd.Flags().StringVar(&dailyTo, "to", "", "Last day (YYYY-MM-DD, defaults to today)")

	yearCmd.Flags().IntVar(&yearFlag, "year", 0, "Calendar year (defaults to the current year)")

	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(yearCmd)
	rootCmd.AddCommand(overallCmd)
	rootCmd.AddCommand(gameCmd)
}

func runDaily(cmd *cobra.Command, args []string) error {
	now := currentTime()
	start, end, err := reportWindow(dailyFrom, dailyTo, cfg.Reports.DefaultDays, now)
	if err != nil {
		return err
	}

	return withRuntime(cmd, func(rt *runtime) error {
		report, err := rt.reporter.DailyReport(cmd.Context(), start, end)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, report)
		}

		for _, day := range report.Days {
			headerColor.Fprintf(out, "%s", day.Date)
			fmt.Fprintf(out, "  %s\n", formatSeconds(day.Total))
			for _, g := range day.Games {
				gameColor.Fprintf(out, "  %-24s", g.Game.Name)
				fmt.Fprintf(out, " %10s  %2d sessions  ", formatSeconds(g.Seconds), g.SessionCount)
				mutedColor.Fprintf(out, "last played %s\n", relative(g.LastPlayedAt, now))
			}
		}
		printNav(out, report.HasPrev, report.HasNext, stats.FormatDate(start), stats.FormatDate(end))
		return nil
	})
}

func runYear(cmd *cobra.Command, args []string) error {
	year := yearFlag
	if year == 0 {
		year = currentTime().Year()
	}
	if year < 1 || year > 9999 {
		return fmt.Errorf("invalid year %d", year)
	}

	return withRuntime(cmd, func(rt *runtime) error {
		report, err := rt.reporter.GameYearReport(cmd.Context(), args[0], year)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, report)
		}

		var total float64
		for _, m := range report.Months {
			total += m.Total
		}
		headerColor.Fprintf(out, "%s %d", report.GameID, report.Year)
		fmt.Fprintf(out, "  %s\n", formatSeconds(int64(total)))
		for _, m := range report.Months {
			line := fmt.Sprintf("  %-4s %10s  %3d sessions\n", m.MonthName, formatSeconds(int64(m.Total)), m.SessionCount)
			if m.SessionCount == 0 {
				mutedColor.Fprint(out, line)
				continue
			}
			fmt.Fprint(out, line)
		}
		printNav(out, report.HasPrev, report.HasNext, strconv.Itoa(year), strconv.Itoa(year))
		return nil
	})
}

func runOverall(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(rt *runtime) error {
		games, err := rt.reporter.OverallPlaytime(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, games)
		}
		if len(games) == 0 {
			mutedColor.Fprintln(out, "No sessions recorded yet")
			return nil
		}

		now := currentTime()
		headerColor.Fprintf(out, "%-24s %12s %9s %12s  %s\n", "Game", "Total", "Sessions", "Longest", "Last played")
		for _, g := range games {
			gameColor.Fprintf(out, "%-24s", g.Game.Name)
			fmt.Fprintf(out, " %12s %9d %12s  ", formatSeconds(int64(g.Total)), g.SessionCount, formatSeconds(int64(g.LastPlayDuration)))
			mutedColor.Fprintf(out, "%s\n", relative(g.LastPlayedAt, now))
		}
		return nil
	})
}

func runGame(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(rt *runtime) error {
		game, err := rt.reporter.GetGame(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, game)
		}
		gameColor.Fprint(out, game.Name)
		mutedColor.Fprintf(out, " (%s)", game.ID)
		fmt.Fprintf(out, "  %s\n", formatSeconds(int64(game.Total)))
		return nil
	})
}
