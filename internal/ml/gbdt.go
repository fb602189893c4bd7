package ml

import (
	"fmt"
	"math"
)

// GBDTConfig holds the boosting hyperparameters
type GBDTConfig struct {
	NumRounds      int     `json:"num_rounds"`
	MaxDepth       int     `json:"max_depth"`
	LearningRate   float64 `json:"learning_rate"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`
}

// DefaultGBDTConfig returns the production hyperparameters
func DefaultGBDTConfig() GBDTConfig {
	return GBDTConfig{
		NumRounds:      200,
		MaxDepth:       6,
		LearningRate:   0.1,
		MinSamplesLeaf: 20,
	}
}

// GBDTClassifier is a multi-class gradient-boosted tree ensemble with a
// softmax objective: one regression tree per class per round, fit to
// the negative gradient (one-hot minus probability).
type GBDTClassifier struct {
	Config     GBDTConfig          `json:"config"`
	NumClasses int                 `json:"num_classes"`
	InitScores []float64           `json:"init_scores"`
	Rounds     [][]*RegressionTree `json:"rounds"`
}

// NewGBDTClassifier creates an untrained classifier
func NewGBDTClassifier(cfg GBDTConfig, numClasses int) *GBDTClassifier {
	return &GBDTClassifier{
		Config:     cfg,
		NumClasses: numClasses,
	}
}

// Fit trains the ensemble on standardized rows and labels in [0,NumClasses)
func (g *GBDTClassifier) Fit(rows [][]float64, labels []int) error {
	if len(rows) == 0 || len(rows) != len(labels) {
		return fmt.Errorf("gbdt fit: %d rows, %d labels", len(rows), len(labels))
	}
	for _, y := range labels {
		if y < 0 || y >= g.NumClasses {
			return fmt.Errorf("gbdt fit: label %d out of range [0,%d)", y, g.NumClasses)
		}
	}

	n := len(rows)
	k := g.NumClasses

	// Initial scores are smoothed log class priors
	counts := make([]float64, k)
	for _, y := range labels {
		counts[y]++
	}
	g.InitScores = make([]float64, k)
	for c := 0; c < k; c++ {
		g.InitScores[c] = math.Log((counts[c] + 1) / float64(n+k))
	}

	// Raw scores per sample per class, updated as rounds accumulate
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, k)
		copy(scores[i], g.InitScores)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	residuals := make([]float64, n)
	g.Rounds = make([][]*RegressionTree, 0, g.Config.NumRounds)

	for round := 0; round < g.Config.NumRounds; round++ {
		probs := make([][]float64, n)
		for i := range probs {
			probs[i] = softmax(scores[i])
		}

		classTrees := make([]*RegressionTree, k)
		for c := 0; c < k; c++ {
			for i := 0; i < n; i++ {
				y := 0.0
				if labels[i] == c {
					y = 1.0
				}
				residuals[i] = y - probs[i][c]
			}

			tree := fitTree(rows, residuals, idx, treeParams{
				maxDepth:       g.Config.MaxDepth,
				minSamplesLeaf: g.Config.MinSamplesLeaf,
				leafValue:      multiclassLeafValue(residuals, k),
			})
			classTrees[c] = tree

			lr := g.Config.LearningRate
			for i := 0; i < n; i++ {
				scores[i][c] += lr * tree.Predict(rows[i])
			}
		}

		g.Rounds = append(g.Rounds, classTrees)
	}

	return nil
}

// multiclassLeafValue is Friedman's leaf estimate for the K-class
// softmax objective: (K-1)/K * sum(r) / sum(|r|(1-|r|)).
func multiclassLeafValue(residuals []float64, k int) func(idx []int) float64 {
	return func(idx []int) float64 {
		var num, den float64
		for _, i := range idx {
			r := residuals[i]
			num += r
			ar := math.Abs(r)
			den += ar * (1 - ar)
		}
		if den < 1e-10 {
			return 0
		}
		return float64(k-1) / float64(k) * num / den
	}
}

// Trained reports whether Fit has produced an ensemble
func (g *GBDTClassifier) Trained() bool {
	return len(g.Rounds) > 0
}

// PredictProba returns the per-class probability distribution for a
// standardized row. Probabilities are non-negative and sum to 1.
func (g *GBDTClassifier) PredictProba(row []float64) []float64 {
	scores := make([]float64, g.NumClasses)
	copy(scores, g.InitScores)

	for _, classTrees := range g.Rounds {
		for c, tree := range classTrees {
			scores[c] += g.Config.LearningRate * tree.Predict(row)
		}
	}

	return softmax(scores)
}

// Predict returns the argmax class for a standardized row
func (g *GBDTClassifier) Predict(row []float64) int {
	probs := g.PredictProba(row)
	best := 0
	for c := 1; c < len(probs); c++ {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return best
}

// softmax converts raw scores into a probability distribution
func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
