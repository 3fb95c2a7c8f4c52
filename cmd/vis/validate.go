package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate loads the configuration, checks the struct constraints and
the startup invariants (unique priority ranks, complete conflict matrix),
and prints the resolved source table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadAppConfig()
		if err != nil {
			color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), "Configuration invalid")
			return err
		}

		reg, err := cfg.Registry()
		if err != nil {
			return err
		}

		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Configuration valid")
		cmd.Println()
		cmd.Println("Sources (highest priority first):")
		for _, src := range reg.Sources() {
			cmd.Printf("  %-10s rank %d, recency window %s, %d bound actions\n",
				string(src.ID), src.Priority, src.RecencyWindow, len(src.Actions))
		}

		cmd.Println()
		cmd.Printf("Cooldown: scope=%s default=%s", cfg.CooldownScope(), cfg.Cooldown.Default)
		if len(cfg.Cooldown.PerAction) > 0 {
			cmd.Printf(" (%d overrides)", len(cfg.Cooldown.PerAction))
		}
		cmd.Println()
		cmd.Printf("Bus: queue=%d submit timeout=%s dispatch timeout=%s\n",
			cfg.Bus.QueueSize, cfg.Bus.SubmitTimeout, cfg.Bus.DispatchTimeout)
		cmd.Printf("History: capacity=%d log file=%s\n",
			cfg.History.Capacity, orNone(cfg.History.LogFile))
		if cfg.History.Database.Enabled {
			cmd.Printf("Database: %s\n", cfg.History.Database.Path)
		}
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return fmt.Sprintf("%q", s)
}
