package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/internal/scoring"
)

var (
	scoreJSON   bool
	scoreStored bool
)

var scoreCmd = &cobra.Command{
	Use:   "score TICKER [TICKER...]",
	Short: "Score one or more tickers now",
	Long: `Fetches data, computes features and prints the current score for
each ticker. Provider outages degrade to documented defaults, so this
command always produces a result.

With --stored the last persisted score is read from the database
instead of recomputing.

Example:
  scorecast score AAPL
  scorecast score AAPL MSFT NVDA --json
  scorecast score AAPL --stored`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "emit raw JSON")
	scoreCmd.Flags().BoolVar(&scoreStored, "stored", false, "read the persisted score instead of recomputing")
}

func runScore(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	svc := app.service()
	ctx := context.Background()

	var repo *scoring.Repository
	if scoreStored {
		if repo, err = app.repository(); err != nil {
			return err
		}
	}

	for _, ticker := range args {
		var score *contracts.Score
		if scoreStored {
			if score, err = repo.GetScore(ctx, ticker); err != nil {
				return err
			}
			if score == nil {
				fmt.Printf("%s  no persisted score, run a refresh first\n", ticker)
				continue
			}
		} else {
			score = svc.ScoreTicker(ctx, ticker)
		}
		if scoreJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(score); err != nil {
				return err
			}
			continue
		}
		printScore(score)
	}
	return nil
}

func printScore(score *contracts.Score) {
	fmt.Printf("%s  (computed %s)\n", score.Ticker, score.ComputedAt.Format("2006-01-02 15:04:05 MST"))
	for _, horizon := range contracts.Horizons() {
		hs := score.Horizons[horizon]
		marker := ""
		if !hs.Trained {
			marker = "  (model not trained, neutral default)"
		}
		fmt.Printf("  %-4s  %3d  %s%s\n", horizon, hs.Score, hs.Rating, marker)
	}

	fmt.Println("  sources:")
	for _, provider := range []string{"technical", "fundamental", "sentiment"} {
		if status, ok := score.Sources[provider]; ok {
			fmt.Printf("    %-12s %s\n", provider, status)
		}
	}

	fmt.Println("  explanation:")
	names := make([]string, 0, len(score.Explanation))
	for name := range score.Explanation {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("    %-28s %+.1f\n", name, score.Explanation[name])
	}
}
