package scoring

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/pkg/ratelimit"
)

// scoreStore is the persistence surface the refresher needs
type scoreStore interface {
	StaleTickers(ctx context.Context, limit int) ([]string, error)
	SaveScore(ctx context.Context, score *contracts.Score) error
}

// tickerScorer produces a fresh score for one ticker
type tickerScorer interface {
	ScoreTicker(ctx context.Context, ticker string) *contracts.Score
}

// Refresher walks the stalest tickers each cycle, re-scores them under
// the provider pace limit and persists the results. One bad ticker
// never stops the cycle.
type Refresher struct {
	scorer tickerScorer
	store  scoreStore
	pacer  ratelimit.Pacer
	quota  int
	log    zerolog.Logger
}

// RefreshStats summarizes one refresh cycle
type RefreshStats struct {
	Selected  int
	Refreshed int
	Failed    int
}

func NewRefresher(scorer tickerScorer, store scoreStore, pacer ratelimit.Pacer, quota int, log zerolog.Logger) *Refresher {
	if pacer == nil {
		pacer = ratelimit.Nop{}
	}
	return &Refresher{
		scorer: scorer,
		store:  store,
		pacer:  pacer,
		quota:  quota,
		log:    log.With().Str("component", "scoring.refresher").Logger(),
	}
}

// Run executes one refresh cycle: select up to quota stalest tickers,
// score and persist each. Persistence failures are logged and skipped;
// only selection failure or context cancellation aborts the cycle.
func (r *Refresher) Run(ctx context.Context) (RefreshStats, error) {
	tickers, err := r.store.StaleTickers(ctx, r.quota)
	if err != nil {
		return RefreshStats{}, err
	}

	stats := RefreshStats{Selected: len(tickers)}
	for _, ticker := range tickers {
		if err := r.pacer.Wait(ctx); err != nil {
			return stats, err
		}

		score := r.scorer.ScoreTicker(ctx, ticker)
		if err := r.store.SaveScore(ctx, score); err != nil {
			stats.Failed++
			r.log.Error().Str("ticker", ticker).Err(err).Msg("failed to persist refreshed score")
			continue
		}
		stats.Refreshed++
	}

	r.log.Info().
		Int("selected", stats.Selected).
		Int("refreshed", stats.Refreshed).
		Int("failed", stats.Failed).
		Msg("refresh cycle complete")
	return stats, nil
}
