// Package commands holds the scorecast CLI. Each command wires only
// the components it needs; shared construction lives in app.go.
package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "scorecast",
	Short: "Predictive stock scoring service",
	Long: `scorecast scores stocks 0-100 with a rating at three horizons
(5, 20 and 60 trading days) from technical, fundamental and news
sentiment signals.

Examples:
  scorecast score AAPL
  scorecast train --horizon 20d
  scorecast refresh
  scorecast scheduler
  scorecast status`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
