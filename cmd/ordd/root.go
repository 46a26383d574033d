package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ordd",
	Short: "Ordinal flow indexer",
}

// Execute runs the root command, the way cmd.Execute does in
// tclemos-pebble-bench.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
