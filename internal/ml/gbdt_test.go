package ml

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoClusterData builds two well-separated clusters with distinct labels
func twoClusterData(n int, rng *rand.Rand) (rows [][]float64, labels []int) {
	for i := 0; i < n; i++ {
		label := i % 2
		center := -2.0
		if label == 1 {
			center = 2.0
		}
		rows = append(rows, []float64{
			center + rng.NormFloat64()*0.3,
			rng.NormFloat64(),
		})
		labels = append(labels, label)
	}
	return rows, labels
}

func smallConfig() GBDTConfig {
	return GBDTConfig{
		NumRounds:      20,
		MaxDepth:       3,
		LearningRate:   0.3,
		MinSamplesLeaf: 5,
	}
}

func TestGBDT_SeparableClusters(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rows, labels := twoClusterData(200, rng)

	clf := NewGBDTClassifier(smallConfig(), 2)
	require.NoError(t, clf.Fit(rows, labels))
	assert.True(t, clf.Trained())

	correct := 0
	for i, row := range rows {
		if clf.Predict(row) == labels[i] {
			correct++
		}
	}
	assert.Greater(t, float64(correct)/float64(len(rows)), 0.95,
		"separable clusters must be nearly perfectly classified")
}

func TestGBDT_ProbabilitiesSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	rows, labels := twoClusterData(100, rng)

	clf := NewGBDTClassifier(smallConfig(), 2)
	require.NoError(t, clf.Fit(rows, labels))

	for _, row := range [][]float64{{-2, 0}, {2, 0}, {0, 0}, {100, -100}} {
		probs := clf.PredictProba(row)
		require.Len(t, probs, 2)

		var sum float64
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestGBDT_SingleClassStaysConfident(t *testing.T) {
	rows := make([][]float64, 50)
	labels := make([]int, 50)
	for i := range rows {
		rows[i] = []float64{float64(i), 1}
		labels[i] = 3
	}

	clf := NewGBDTClassifier(smallConfig(), 5)
	require.NoError(t, clf.Fit(rows, labels))

	probs := clf.PredictProba([]float64{25, 1})
	assert.Equal(t, 3, clf.Predict([]float64{25, 1}))
	assert.Greater(t, probs[3], 0.9)
}

func TestGBDT_FitValidatesInput(t *testing.T) {
	clf := NewGBDTClassifier(smallConfig(), 2)

	assert.Error(t, clf.Fit(nil, nil))
	assert.Error(t, clf.Fit([][]float64{{1}}, []int{0, 1}))
	assert.Error(t, clf.Fit([][]float64{{1}}, []int{5}))
}

func TestGBDT_JSONRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	rows, labels := twoClusterData(120, rng)

	clf := NewGBDTClassifier(smallConfig(), 2)
	require.NoError(t, clf.Fit(rows, labels))

	data, err := json.Marshal(clf)
	require.NoError(t, err)

	var restored GBDTClassifier
	require.NoError(t, json.Unmarshal(data, &restored))

	for _, row := range rows[:10] {
		want := clf.PredictProba(row)
		got := restored.PredictProba(row)
		for c := range want {
			assert.InDelta(t, want[c], got[c], 1e-12)
		}
	}
}

func TestStandardScaler(t *testing.T) {
	rows := [][]float64{
		{1, 10, 5},
		{2, 20, 5},
		{3, 30, 5},
	}

	var s StandardScaler
	s.Fit(rows)

	scaled := s.TransformAll(rows)

	// Column means become 0, unit variance for varying columns.
	for j := 0; j < 2; j++ {
		var sum float64
		for i := range scaled {
			sum += scaled[i][j]
		}
		assert.InDelta(t, 0.0, sum/3, 1e-12)
	}
	assert.InDelta(t, math.Sqrt(1.5), math.Abs(scaled[2][0]), 1e-9)

	// Constant column divides by 1 instead of 0.
	for i := range scaled {
		assert.Equal(t, 0.0, scaled[i][2])
		assert.False(t, math.IsNaN(scaled[i][2]))
	}
}
