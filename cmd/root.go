// Package cmd implements the loansim CLI commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of package globals.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "loansim",
		Short:         "Fixed-rate mortgage simulator",
		Long:          "Simulate fixed-rate loans: monthly payment, interest cost, amortization schedule and published market rates.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/loansim/config.toml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newCalculateCmd(flags),
		newCompareCmd(flags),
		newExportCmd(flags),
		newRatesCmd(flags),
		newHistoryCmd(flags),
		newServeCmd(flags),
		newTUICmd(flags),
		newConfigCmd(flags),
	)
	return root
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
