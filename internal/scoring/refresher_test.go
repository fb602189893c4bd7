package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/pkg/ratelimit"
)

type fakeStore struct {
	stale    []string
	staleErr error
	saved    []string
	failOn   map[string]bool
	limit    int
}

func (f *fakeStore) StaleTickers(_ context.Context, limit int) ([]string, error) {
	f.limit = limit
	if f.staleErr != nil {
		return nil, f.staleErr
	}
	if limit < len(f.stale) {
		return f.stale[:limit], nil
	}
	return f.stale, nil
}

func (f *fakeStore) SaveScore(_ context.Context, score *contracts.Score) error {
	if f.failOn[score.Ticker] {
		return errors.New("write failed")
	}
	f.saved = append(f.saved, score.Ticker)
	return nil
}

type fakeTickerScorer struct {
	scored []string
}

func (f *fakeTickerScorer) ScoreTicker(_ context.Context, ticker string) *contracts.Score {
	f.scored = append(f.scored, ticker)
	return &contracts.Score{Ticker: ticker, ComputedAt: time.Now()}
}

func TestRefresher_RespectsQuota(t *testing.T) {
	store := &fakeStore{stale: []string{"AAA", "BBB", "CCC", "DDD", "EEE"}}
	sc := &fakeTickerScorer{}

	r := NewRefresher(sc, store, ratelimit.Nop{}, 3, zerolog.Nop())
	stats, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, store.limit)
	assert.Equal(t, 3, stats.Selected)
	assert.Equal(t, 3, stats.Refreshed)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, sc.scored)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, store.saved)
}

func TestRefresher_PersistFailureDoesNotStopCycle(t *testing.T) {
	store := &fakeStore{
		stale:  []string{"AAA", "BAD", "CCC"},
		failOn: map[string]bool{"BAD": true},
	}
	sc := &fakeTickerScorer{}

	r := NewRefresher(sc, store, ratelimit.Nop{}, 10, zerolog.Nop())
	stats, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Selected)
	assert.Equal(t, 2, stats.Refreshed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, []string{"AAA", "CCC"}, store.saved)
}

func TestRefresher_SelectionFailureAborts(t *testing.T) {
	store := &fakeStore{staleErr: errors.New("db down")}
	r := NewRefresher(&fakeTickerScorer{}, store, ratelimit.Nop{}, 10, zerolog.Nop())

	_, err := r.Run(context.Background())
	require.Error(t, err)
}

func TestRefresher_CancellationStopsBetweenTickers(t *testing.T) {
	store := &fakeStore{stale: []string{"AAA", "BBB"}}
	sc := &fakeTickerScorer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRefresher(sc, store, ratelimit.Nop{}, 10, zerolog.Nop())
	stats, err := r.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stats.Refreshed)
	assert.Empty(t, sc.scored)
}

func TestRefresher_NilPacerDefaultsToNop(t *testing.T) {
	store := &fakeStore{stale: []string{"AAA"}}
	r := NewRefresher(&fakeTickerScorer{}, store, nil, 10, zerolog.Nop())

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Refreshed)
}
