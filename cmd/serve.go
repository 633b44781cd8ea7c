package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/playtime/internal/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports and ledger writes over HTTP",
	Long:  `Start the HTTP API with the JSON report endpoints, session writes and Prometheus metrics.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to server.address)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Address
	}

	return withRuntime(cmd, func(rt *runtime) error {
		rt.logger.Info().
			Str("version", version).
			Str("db", cfg.Database.Path).
			Msg("Starting playtime")

		server := api.NewServer(api.Config{
			ListenAddr:   addr,
			DefaultDays:  cfg.Reports.DefaultDays,
			ManualSource: cfg.Reports.ManualSource,
		}, rt.ledger, rt.reporter, rt.logger)

		if err := server.Start(); err != nil {
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			rt.logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received, gracefully stopping...")
		case <-cmd.Context().Done():
		}

		return server.Stop()
	})
}
