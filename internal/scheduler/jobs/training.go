// Package jobs holds the scheduled job implementations: the weekly
// retraining cycle and the recurring score refresh.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab-io/scorecast/internal/artifact"
	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/internal/labeling"
	"github.com/quantlab-io/scorecast/internal/training"
	"github.com/quantlab-io/scorecast/pkg/ratelimit"
)

// TrainingUniverse supplies the symbols to train on
type TrainingUniverse interface {
	ListTickers(ctx context.Context) ([]string, error)
}

// ModelReloader is notified after any promotion so serving picks up
// the new production artifacts
type ModelReloader interface {
	Reload()
}

// TrainingJob retrains each horizon weekly: pool labeled samples across
// the universe, fit a candidate, and promote it only when it beats
// production.
type TrainingJob struct {
	universe TrainingUniverse
	bars     contracts.BarProvider
	pipeline *training.Pipeline
	manager  *artifact.Manager
	reloader ModelReloader
	pacer    ratelimit.Pacer

	lookbackYears int
	schedule      string
	clock         func() time.Time
	log           zerolog.Logger
}

func NewTrainingJob(
	universe TrainingUniverse,
	bars contracts.BarProvider,
	pipeline *training.Pipeline,
	manager *artifact.Manager,
	reloader ModelReloader,
	pacer ratelimit.Pacer,
	lookbackYears int,
	log zerolog.Logger,
) *TrainingJob {
	if pacer == nil {
		pacer = ratelimit.Nop{}
	}
	if lookbackYears <= 0 {
		lookbackYears = 3
	}
	return &TrainingJob{
		universe:      universe,
		bars:          bars,
		pipeline:      pipeline,
		manager:       manager,
		reloader:      reloader,
		pacer:         pacer,
		lookbackYears: lookbackYears,
		schedule:      "0 0 2 * * 0", // Sundays 02:00
		clock:         time.Now,
		log:           log.With().Str("job", "training").Logger(),
	}
}

func (j *TrainingJob) Name() string { return "training" }

func (j *TrainingJob) Schedule() string { return j.schedule }

// Run executes one full retraining cycle across all horizons. A
// failing symbol is skipped; a failing horizon does not stop the
// remaining horizons.
func (j *TrainingJob) Run(ctx context.Context) error {
	tickers, err := j.universe.ListTickers(ctx)
	if err != nil {
		return fmt.Errorf("list training universe: %w", err)
	}
	if len(tickers) == 0 {
		return fmt.Errorf("training universe is empty")
	}

	history, err := j.collectBars(ctx, tickers)
	if err != nil {
		return err
	}

	var promoted int
	var failures int
	for _, horizon := range contracts.Horizons() {
		decision, err := j.trainHorizon(horizon, history)
		if err != nil {
			failures++
			j.log.Error().Str("horizon", string(horizon)).Err(err).Msg("horizon training failed")
			continue
		}
		if decision.Promoted {
			promoted++
		}
	}

	if failures == len(contracts.Horizons()) {
		return fmt.Errorf("training failed for every horizon")
	}

	if promoted > 0 {
		j.reloader.Reload()
	}

	j.log.Info().
		Int("symbols", len(history)).
		Int("promoted", promoted).
		Int("failed_horizons", failures).
		Msg("training cycle complete")
	return nil
}

// collectBars fetches bar history per symbol under the provider pace
// limit, skipping symbols that fail or have too little history
func (j *TrainingJob) collectBars(ctx context.Context, tickers []string) (map[string][]contracts.Bar, error) {
	now := j.clock()
	from := now.AddDate(-j.lookbackYears, 0, 0)

	history := make(map[string][]contracts.Bar, len(tickers))
	for _, ticker := range tickers {
		if err := j.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		bars, err := j.bars.GetBars(ctx, ticker, from, now)
		if err != nil {
			j.log.Warn().Str("ticker", ticker).Err(err).Msg("skipping symbol, bar fetch failed")
			continue
		}
		if len(bars) < contracts.MinHistoryBars {
			j.log.Debug().Str("ticker", ticker).Int("bars", len(bars)).Msg("skipping symbol, insufficient history")
			continue
		}
		history[ticker] = bars
	}

	if len(history) == 0 {
		return nil, fmt.Errorf("no symbol produced usable bar history")
	}
	return history, nil
}

// trainHorizon pools labeled samples across symbols, trains a
// candidate and runs it through promotion
func (j *TrainingJob) trainHorizon(horizon contracts.Horizon, history map[string][]contracts.Bar) (artifact.Decision, error) {
	var samples []contracts.TrainingSample
	for symbol, bars := range history {
		samples = append(samples, labeling.Generate(symbol, bars, horizon)...)
	}

	candidate, err := j.pipeline.Train(samples, horizon)
	if err != nil {
		return artifact.Decision{}, fmt.Errorf("train %s: %w", horizon, err)
	}

	decision, err := j.manager.Promote(candidate)
	if err != nil {
		return artifact.Decision{}, fmt.Errorf("promote %s: %w", horizon, err)
	}
	return decision, nil
}
