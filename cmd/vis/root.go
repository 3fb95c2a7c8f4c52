package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "vis",
	Short: "vis - Multimodal input coordination core",
	Long: `vis coordinates events from concurrent input modalities (eye
tracking, hand gestures, voice commands) into a single ordered action
stream. Conflicting inputs are resolved by per-source priority, repeated
actions are throttled by cooldown, and every executed action lands in a
bounded history with live statistics.

Perception and OS-level execution are out of scope: events come from
replay scenarios (or embedding programs), and actions are printed rather
than injected into the desktop.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}
