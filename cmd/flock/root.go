package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flock",
	Short: "flock runs a stream-driven population of animated entities",
	Long: `flock animates independently-lived entities on a shared clock and joins them
into one scene per frame. The bundled simulation is a headless spaceships game.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "flock.yaml", "YAML configuration file (defaults apply when missing)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON lines")
	rootCmd.PersistentFlags().String("redis", "", "Redis address for the scene sink (overrides config)")
}
