package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshLimit int

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one score refresh cycle",
	Long: `Selects the stalest tracked tickers up to the configured quota,
re-scores them under the provider rate limit and persists the results.

Example:
  scorecast refresh
  scorecast refresh --limit 10`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().IntVar(&refreshLimit, "limit", 0, "override the configured quota for this run")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if refreshLimit > 0 {
		app.cfg.Refresh.Quota = refreshLimit
	}

	refresher, err := app.refresher()
	if err != nil {
		return err
	}

	stats, err := refresher.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("selected %d, refreshed %d, failed %d\n", stats.Selected, stats.Refreshed, stats.Failed)
	return nil
}
