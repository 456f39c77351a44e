package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/flock"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flock",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flock version %s\n", strings.TrimSpace(flock.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
