package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/sadopc/playtime/internal/config"
	"github.com/sadopc/playtime/internal/ledger"
	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
	"github.com/sadopc/playtime/internal/tui"
	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
	jsonOutput bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "playtime",
	Short: "Track and report game playtime",
	Long: `playtime records play sessions per game, reconciles manually entered totals
and reports playtime per day, per month and over all time.

Run without a subcommand to open the interactive dashboard.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine readable JSON")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "playtime.yaml"
	}
	return filepath.Join(dir, "playtime", "config.yaml")
}

// runtime is everything a command needs once the config is loaded.
type runtime struct {
	logger   zerolog.Logger
	store    *store.Store
	ledger   *ledger.Ledger
	reporter *stats.Reporter
	logFile  io.Closer
}

// openRuntime sets up logging and opens the record store. Log lines go to
// logOut unless the config names a log file.
func openRuntime(logOut io.Writer) (*runtime, error) {
	logger, logFile, err := setupLogger(cfg.Logging, logOut)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger.Debug().Str("db", cfg.Database.Path).Str("config", configPath).Msg("Store opened")

	return &runtime{
		logger:   logger,
		store:    s,
		ledger:   ledger.New(s, logger),
		reporter: stats.New(s, logger),
		logFile:  logFile,
	}, nil
}

func (r *runtime) Close() error {
	err := r.store.Close()
	if r.logFile != nil {
		if cerr := r.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// withRuntime opens a runtime logging to stderr, runs fn and closes it.
func withRuntime(cmd *cobra.Command, fn func(rt *runtime) error) error {
	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal, so logs only go to a configured file.
	rt, err := openRuntime(io.Discard)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.NewApp(rt.store, rt.ledger, rt.reporter, tui.Config{
		ExportDir:    cfg.Export.Dir,
		ManualSource: cfg.Reports.ManualSource,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
