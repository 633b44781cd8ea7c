package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/playtime/internal/export"
	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
	exportGame   string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:       "export sessions|daily",
	Short:     "Export the session log or a daily report",
	ValidArgs: []string{"sessions", "daily"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Example: `  playtime export sessions --format json
  playtime export daily --from 2024-01-01 --to 2024-01-31 --out jan.csv`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (defaults to export.dir/playtime-<kind>-<date>.<format>)")
	exportCmd.Flags().StringVar(&exportGame, "game", "", "Only export sessions of this game id (sessions only)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	kind := args[0]
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format %q: want csv or json", exportFormat)
	}

	now := currentTime()
	path := exportOut
	if path == "" {
		if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
		path = filepath.Join(cfg.Export.Dir, fmt.Sprintf("playtime-%s-%s.%s", kind, stats.FormatDate(now), exportFormat))
	}

	return withRuntime(cmd, func(rt *runtime) error {
		var err error
		switch kind {
		case "sessions":
			err = exportSessions(cmd, rt, path)
		case "daily":
			err = exportDaily(cmd, rt, path, now)
		}
		if err != nil {
			return err
		}

		rt.logger.Info().Str("kind", kind).Str("path", path).Msg("Export written")
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]string{"path": path})
		}
		goodColor.Fprint(out, "Exported to ")
		fmt.Fprintln(out, path)
		return nil
	})
}

func exportSessions(cmd *cobra.Command, rt *runtime, path string) error {
	filter := store.SessionFilter{GameID: exportGame}
	if exportFrom != "" {
		from, err := stats.ParseDate(exportFrom)
		if err != nil {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", exportFrom)
		}
		filter.From = &from
	}
	if exportTo != "" {
		to, err := stats.ParseDate(exportTo)
		if err != nil {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", exportTo)
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}

	rows, err := rt.store.ListSessions(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if exportFormat == "json" {
		return export.SessionsToJSON(rows, path)
	}
	return export.SessionsToCSV(rows, path)
}

func exportDaily(cmd *cobra.Command, rt *runtime, path string, now time.Time) error {
	start, end, err := reportWindow(exportFrom, exportTo, cfg.Reports.DefaultDays, now)
	if err != nil {
		return err
	}
	report, err := rt.reporter.DailyReport(cmd.Context(), start, end)
	if err != nil {
		return err
	}
	if exportFormat == "json" {
		return export.DailyToJSON(report, path)
	}
	return export.DailyToCSV(report, path)
}
