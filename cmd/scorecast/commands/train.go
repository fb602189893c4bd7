package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab-io/scorecast/internal/artifact"
	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/internal/labeling"
	"github.com/quantlab-io/scorecast/internal/providers"
	"github.com/quantlab-io/scorecast/internal/training"
	"github.com/quantlab-io/scorecast/pkg/httputil"
	"github.com/quantlab-io/scorecast/pkg/ratelimit"
)

var (
	trainHorizon string
	trainTickers []string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train candidate models and promote the winners",
	Long: `Runs one training cycle: pools labeled samples across the symbol
universe, fits a candidate model per horizon and promotes it to
production only when it beats the incumbent on weighted F1.

The universe comes from the tracked tickers in the database unless
--tickers is given.

Example:
  scorecast train
  scorecast train --horizon 20d
  scorecast train --tickers AAPL,MSFT,NVDA`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVar(&trainHorizon, "horizon", "", "train a single horizon (5d, 20d or 60d)")
	trainCmd.Flags().StringSliceVar(&trainTickers, "tickers", nil, "comma-separated universe override")
}

func runTrain(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	horizons := contracts.Horizons()
	if trainHorizon != "" {
		h, err := contracts.ParseHorizon(trainHorizon)
		if err != nil {
			return err
		}
		horizons = []contracts.Horizon{h}
	}

	ctx := context.Background()
	tickers := trainTickers
	if len(tickers) == 0 {
		repo, err := app.repository()
		if err != nil {
			return err
		}
		tickers, err = repo.ListTickers(ctx)
		if err != nil {
			return err
		}
	}
	if len(tickers) == 0 {
		return fmt.Errorf("empty training universe; track tickers first or pass --tickers")
	}

	// Bulk history fetches go through a client paced at the provider
	// rate; interactive commands keep the unpaced client.
	pacedHTTP := httputil.New(app.log, app.cfg.Providers.CallTimeout).
		WithPacer(ratelimit.NewTokenBucket(app.cfg.Refresh.RatePerSec))
	pacedBars := providers.NewBarsClient(pacedHTTP, app.cfg.Providers.BarsBaseURL, app.cfg.Providers.BarsAPIKey)

	now := time.Now()
	from := now.AddDate(-app.cfg.Training.LookbackYears, 0, 0)

	history := make(map[string][]contracts.Bar, len(tickers))
	for _, ticker := range tickers {
		bars, err := pacedBars.GetBars(ctx, ticker, from, now)
		if err != nil {
			app.log.WithField("ticker", ticker).WithError(err).Warn("skipping symbol, bar fetch failed")
			continue
		}
		if len(bars) < contracts.MinHistoryBars {
			continue
		}
		history[ticker] = bars
	}
	if len(history) == 0 {
		return fmt.Errorf("no symbol in %s produced usable history", strings.Join(tickers, ","))
	}

	pipeline := training.NewPipeline(app.cfg.Training.Seed, app.log.Zerolog())
	manager := artifact.NewManager(app.store, app.log.Zerolog())

	var promoted int
	for _, horizon := range horizons {
		var samples []contracts.TrainingSample
		for symbol, bars := range history {
			samples = append(samples, labeling.Generate(symbol, bars, horizon)...)
		}

		candidate, err := pipeline.Train(samples, horizon)
		if err != nil {
			fmt.Printf("%-4s  training failed: %v\n", horizon, err)
			continue
		}

		decision, err := manager.Promote(candidate)
		if err != nil {
			fmt.Printf("%-4s  promotion failed: %v\n", horizon, err)
			continue
		}

		if decision.Promoted {
			promoted++
			fmt.Printf("%-4s  promoted (%s)  candidate F1 %.4f  production F1 %.4f\n",
				horizon, decision.Reason, decision.CandidateF1, decision.ProductionF1)
		} else {
			fmt.Printf("%-4s  kept production (%s)  candidate F1 %.4f  production F1 %.4f\n",
				horizon, decision.Reason, decision.CandidateF1, decision.ProductionF1)
		}
	}

	if promoted > 0 {
		app.scorer.Reload()
	}
	return nil
}
