package scorer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab-io/scorecast/internal/artifact"
	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/internal/ml"
)

// trainedArtifact builds an artifact whose model separates "trend" < 0
// (class 0) from "trend" > 0 (class 4), ignoring "filler".
func trainedArtifact(t *testing.T, horizon contracts.Horizon) *artifact.Artifact {
	t.Helper()

	var rows [][]float64
	var labels []int
	for i := 0; i < 120; i++ {
		label := 0
		trend := -1.0 - float64(i%10)*0.05
		if i%2 == 1 {
			label = 4
			trend = 1.0 + float64(i%10)*0.05
		}
		rows = append(rows, []float64{trend, float64(i % 7)})
		labels = append(labels, label)
	}

	scaler := &ml.StandardScaler{}
	scaler.Fit(rows)

	model := ml.NewGBDTClassifier(ml.GBDTConfig{
		NumRounds:      15,
		MaxDepth:       3,
		LearningRate:   0.3,
		MinSamplesLeaf: 5,
	}, contracts.NumClasses)
	require.NoError(t, model.Fit(scaler.TransformAll(rows), labels))

	return &artifact.Artifact{
		Horizon:      horizon,
		FeatureNames: []string{"trend", "filler"},
		TrainedAt:    time.Now(),
		Metrics:      contracts.EvaluationMetrics{F1Weighted: 0.9},
		Scaler:       scaler,
		Model:        model,
	}
}

func newLoadedScorer(t *testing.T, horizons ...contracts.Horizon) (*Scorer, *artifact.Store) {
	t.Helper()

	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)

	for _, h := range horizons {
		require.NoError(t, store.Save(trainedArtifact(t, h), artifact.SlotProduction))
	}

	s := New(store, zerolog.Nop())
	s.Reload()
	return s, store
}

func TestPredictScore_RangeAndDirection(t *testing.T) {
	s, _ := newLoadedScorer(t, contracts.HorizonShort)

	bullish, err := s.PredictScore(contracts.HorizonShort, contracts.FeatureVector{"trend": 1.5, "filler": 2})
	require.NoError(t, err)
	bearish, err := s.PredictScore(contracts.HorizonShort, contracts.FeatureVector{"trend": -1.5, "filler": 2})
	require.NoError(t, err)

	for _, score := range []int{bullish, bearish} {
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
	assert.Greater(t, bullish, bearish)
}

func TestPredictScore_ReorderIndependentOfCallerOrder(t *testing.T) {
	s, _ := newLoadedScorer(t, contracts.HorizonShort)

	// Extra keys are ignored and missing keys zero-filled via the
	// artifact's own recorded order, so caller-side ordering is moot.
	a, err := s.PredictScore(contracts.HorizonShort, contracts.FeatureVector{
		"filler": 3, "trend": 1.2, "unrelated": 99,
	})
	require.NoError(t, err)

	b, err := s.PredictScore(contracts.HorizonShort, contracts.FeatureVector{
		"trend": 1.2, "filler": 3,
	})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPredictScore_MissingKeysZeroFilled(t *testing.T) {
	s, _ := newLoadedScorer(t, contracts.HorizonShort)

	score, err := s.PredictScore(contracts.HorizonShort, contracts.FeatureVector{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestPredictScore_NotTrained(t *testing.T) {
	s, _ := newLoadedScorer(t) // nothing loaded

	_, err := s.PredictScore(contracts.HorizonShort, contracts.FeatureVector{"trend": 1})
	assert.ErrorIs(t, err, contracts.ErrModelNotTrained)
}

func TestPredictAll_PartialResults(t *testing.T) {
	s, _ := newLoadedScorer(t, contracts.HorizonShort, contracts.HorizonLong)

	scores := s.PredictAll(contracts.FeatureVector{"trend": 1.0})

	require.Len(t, scores, 3)
	assert.NotNil(t, scores[contracts.HorizonShort])
	assert.Nil(t, scores[contracts.HorizonMedium], "missing model yields nil, not an error")
	assert.NotNil(t, scores[contracts.HorizonLong])
}

func TestRatings_SkipNil(t *testing.T) {
	s, _ := newLoadedScorer(t)

	high := 80
	low := 10
	ratings := s.Ratings(map[contracts.Horizon]*int{
		contracts.HorizonShort:  &high,
		contracts.HorizonMedium: nil,
		contracts.HorizonLong:   &low,
	})

	assert.Equal(t, contracts.RatingStrongBuy, ratings[contracts.HorizonShort])
	assert.Equal(t, contracts.RatingStrongSell, ratings[contracts.HorizonLong])
	_, ok := ratings[contracts.HorizonMedium]
	assert.False(t, ok)
}

func TestReload_KeepsModelWhenArtifactDisappears(t *testing.T) {
	s, store := newLoadedScorer(t, contracts.HorizonShort)
	require.Len(t, s.Loaded(), 1)

	// Corrupt the production file, then reload: the in-memory model
	// must survive.
	path := filepath.Join(store.Dir(), "model_5d_production.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version":42,"payload":{}}`), 0o644))
	s.Reload()

	assert.Len(t, s.Loaded(), 1)
	_, err := s.PredictScore(contracts.HorizonShort, contracts.FeatureVector{"trend": 1})
	assert.NoError(t, err)
}
