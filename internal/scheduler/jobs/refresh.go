package jobs

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quantlab-io/scorecast/internal/scoring"
)

// RefreshJob runs one refresh cycle every interval, re-scoring the
// stalest tickers under the daily provider quota
type RefreshJob struct {
	refresher *scoring.Refresher
	schedule  string
	log       zerolog.Logger
}

func NewRefreshJob(refresher *scoring.Refresher, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: refresher,
		schedule:  "0 */30 * * * *", // every 30 minutes
		log:       log.With().Str("job", "refresh").Logger(),
	}
}

func (j *RefreshJob) Name() string { return "refresh" }

func (j *RefreshJob) Schedule() string { return j.schedule }

func (j *RefreshJob) Run(ctx context.Context) error {
	stats, err := j.refresher.Run(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Int("selected", stats.Selected).
		Int("refreshed", stats.Refreshed).
		Int("failed", stats.Failed).
		Msg("scheduled refresh finished")
	return nil
}
