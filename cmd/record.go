package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sadopc/playtime/internal/ledger"
	"github.com/sadopc/playtime/internal/store"
	"github.com/spf13/cobra"
)

var (
	recordGame     string
	recordName     string
	recordDuration string
	recordAt       string
	recordSource   string

	totalGame   string
	totalName   string
	totalValue  string
	totalAt     string
	totalSource string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a play session",
	Long:  `Append one play session to the log and add its duration to the game's total.`,
	Example: `  playtime record --game celeste --name Celeste --duration 1h30m
  playtime record --game celeste --duration 5400 --at 2024-01-01T20:00:00`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

var setTotalCmd = &cobra.Command{
	Use:   "set-total",
	Short: "Correct a game's total playtime",
	Long: `Declare what a game's overall playtime should be. The difference to the
recorded sessions is stored as a tagged correcting session.`,
	Example: `  playtime set-total --game celeste --total 40h
  playtime set-total --game celeste --total 0 --source import`,
	Args: cobra.NoArgs,
	RunE: runSetTotal,
}

func init() {
	recordCmd.Flags().StringVar(&recordGame, "game", "", "Game id (required)")
	recordCmd.Flags().StringVar(&recordName, "name", "", "Game display name (defaults to the stored name, then the id)")
	recordCmd.Flags().StringVar(&recordDuration, "duration", "", "Session length in seconds or as 1h30m (required)")
	recordCmd.Flags().StringVar(&recordAt, "at", "", "Session start (YYYY-MM-DDTHH:MM:SS, defaults to now)")
	recordCmd.Flags().StringVar(&recordSource, "source", "", "Optional source tag")
	recordCmd.MarkFlagRequired("game")
	recordCmd.MarkFlagRequired("duration")

	setTotalCmd.Flags().StringVar(&totalGame, "game", "", "Game id (required)")
	setTotalCmd.Flags().StringVar(&totalName, "name", "", "Game display name (defaults to the stored name, then the id)")
	setTotalCmd.Flags().StringVar(&totalValue, "total", "", "Desired total in seconds or as 40h (required)")
	setTotalCmd.Flags().StringVar(&totalAt, "at", "", "Timestamp of the correcting session (defaults to now)")
	setTotalCmd.Flags().StringVar(&totalSource, "source", "", "Source tag (defaults to reports.manual_source)")
	setTotalCmd.MarkFlagRequired("game")
	setTotalCmd.MarkFlagRequired("total")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(setTotalCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	duration, err := parseSeconds(recordDuration)
	if err != nil {
		return err
	}
	startedAt, err := parseTimestamp(recordAt, currentTime())
	if err != nil {
		return err
	}

	return withRuntime(cmd, func(rt *runtime) error {
		ctx := cmd.Context()
		name, err := resolveName(ctx, rt, recordGame, recordName)
		if err != nil {
			return err
		}

		ns := ledger.NewSession{
			StartedAt: startedAt,
			Duration:  duration,
			GameID:    recordGame,
			GameName:  name,
		}
		if recordSource != "" {
			ns.Source = &recordSource
		}
		if err := rt.ledger.RecordSession(ctx, ns); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"game_id":    ns.GameID,
				"game_name":  ns.GameName,
				"started_at": store.FormatTimestamp(ns.StartedAt),
				"duration":   ns.Duration,
			})
		}
		goodColor.Fprint(out, "Recorded ")
		fmt.Fprintf(out, "%s of ", formatSeconds(duration))
		gameColor.Fprintln(out, name)
		return nil
	})
}

func runSetTotal(cmd *cobra.Command, args []string) error {
	total, err := parseSeconds(totalValue)
	if err != nil {
		return err
	}
	at, err := parseTimestamp(totalAt, currentTime())
	if err != nil {
		return err
	}
	source := totalSource
	if source == "" {
		source = cfg.Reports.ManualSource
	}

	return withRuntime(cmd, func(rt *runtime) error {
		ctx := cmd.Context()
		name, err := resolveName(ctx, rt, totalGame, totalName)
		if err != nil {
			return err
		}

		delta, err := rt.ledger.ApplyManualTotal(ctx, ledger.ManualTotal{
			At:       at,
			GameID:   totalGame,
			GameName: name,
			Total:    total,
			Source:   source,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"game_id": totalGame,
				"total":   total,
				"delta":   delta,
			})
		}
		if delta == 0 {
			mutedColor.Fprintf(out, "%s already totals %s\n", name, formatSeconds(total))
			return nil
		}
		warnColor.Fprintf(out, "Corrected %s by %s", name, formatSeconds(delta))
		fmt.Fprintf(out, " (total %s)\n", formatSeconds(total))
		return nil
	})
}

// resolveName keeps a game's stored name when no new one is given, so a
// write without --name never renames a game to its id.
func resolveName(ctx context.Context, rt *runtime, id, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	game, err := rt.reporter.GetGame(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return id, nil
	}
	if err != nil {
		return "", err
	}
	return game.Name, nil
}
