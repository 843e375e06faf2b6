package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "propsim",
	Short: "A deterministic rule-based strategy backtester",
	Long: `Propsim replays historical bars through a fixed set of entry rules,
ATR-based exits and prop-firm style risk limits, and reports the resulting
equity curve, trade ledger and performance statistics.

It provides tools for:
  - Backtesting the rule set against bar and indicator CSV data
  - Sweeping one parameter across several values in parallel
  - Journaling trades and equity to CSV or SQLite`,
}

var (
	cfgFile string
	verbose bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
