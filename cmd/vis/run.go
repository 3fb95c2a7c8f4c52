package main

import (
	"context"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the coordination core until interrupted",
	Long: `Run starts the event bus and waits for events. Without an embedding
program feeding the bus, events arrive only through control signals; use
'vis replay' to drive the pipeline from a scenario file.

The process runs until SIGINT or SIGTERM, then drains the queue and
prints a session summary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadAppConfig()
		if err != nil {
			return err
		}
		logger, err := newAppLogger(cfg)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, logger, newConsoleExecutor())
		if err != nil {
			return err
		}
		defer a.close()

		// The bus lives on its own context; Close drains the queue even
		// when the command context was cancelled by a signal.
		a.bus.Start(context.Background())
		logger.Info("coordination core running", "sources", len(cfg.Sources))

		<-cmd.Context().Done()
		logger.Info("shutting down, draining queue")
		if err := a.bus.Close(); err != nil {
			return err
		}

		a.printSummary(cmd)
		return nil
	},
}
