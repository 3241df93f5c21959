// Package main provides the strata command line renderer.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "Render stacked bar, line and pie charts from JSON or XLSX data",
		Long: `strata renders chart datasets to SVG, PNG or HTML and prints chart
layouts (value domain, bar geometry, legend readout) as JSON.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: STRATA_CONFIG, strata.toml next to the binary, config/strata.toml)")

	rootCmd.AddCommand(
		newRenderCmd(&configPath),
		newLayoutCmd(&configPath),
		newVersionCmd(),
	)
	return rootCmd
}
