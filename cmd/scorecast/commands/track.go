package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track TICKER [TICKER...]",
	Short: "Add tickers to the tracked universe",
	Long: `Registers tickers for refresh cycles and the training universe.
New tickers get an epoch refresh time so the next refresh picks them
up first.

Example:
  scorecast track AAPL MSFT NVDA`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	repo, err := app.repository()
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, raw := range args {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			continue
		}
		if err := repo.AddTicker(ctx, ticker); err != nil {
			return err
		}
		fmt.Printf("tracking %s\n", ticker)
	}
	return nil
}
