package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Replay a scripted event scenario through the pipeline",
	Long: `Replay loads a YAML scenario of timed events and feeds it through
the real bus, conflict resolution, cooldowns, and history. Actions are
printed to stdout; the session summary follows once the queue drains.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := replay.LoadScenario(args[0])
		if err != nil {
			return err
		}

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

		a.bus.Start(context.Background())
		logger.Info("replaying scenario", "name", sc.Name, "steps", len(sc.Steps))

		player := replay.NewPlayer(a.bus, replay.WithPlayerLogger(logger))
		if err := player.Run(cmd.Context(), sc); err != nil {
			_ = a.bus.Close()
			return err
		}

		if err := a.bus.Close(); err != nil {
			return err
		}

		a.printSummary(cmd)
		return nil
	},
}
