// Package scorer serves per-horizon predictions from loaded model
// artifacts.
package scorer

import (
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quantlab-io/scorecast/internal/artifact"
	"github.com/quantlab-io/scorecast/internal/contracts"
)

// Scorer holds up to one loaded artifact per horizon. Artifacts are
// immutable once loaded; Reload is the only mutation and follows the
// load-then-freeze pattern, so concurrent reads need no coordination
// beyond the swap lock.
type Scorer struct {
	store *artifact.Store
	log   zerolog.Logger

	mu     sync.RWMutex
	loaded map[contracts.Horizon]*artifact.Artifact
}

// New creates a scorer over an artifact store with nothing loaded
func New(store *artifact.Store, log zerolog.Logger) *Scorer {
	return &Scorer{
		store:  store,
		log:    log.With().Str("component", "scorer").Logger(),
		loaded: make(map[contracts.Horizon]*artifact.Artifact),
	}
}

// Reload loads the production artifact for every horizon. A horizon
// with no artifact, or with an incompatible one, is skipped and keeps
// whatever was previously loaded for it; a missing model must never
// block the other horizons or crash the process.
func (s *Scorer) Reload() {
	fresh := make(map[contracts.Horizon]*artifact.Artifact)

	for _, horizon := range contracts.Horizons() {
		a, err := s.store.Load(horizon, artifact.SlotProduction)
		if err != nil {
			s.log.Warn().
				Str("horizon", string(horizon)).
				Err(err).
				Msg("production artifact unavailable, keeping current model")
			continue
		}
		fresh[horizon] = a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for horizon, a := range fresh {
		s.loaded[horizon] = a
	}
}

// Loaded reports which horizons currently hold a model
func (s *Scorer) Loaded() []contracts.Horizon {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []contracts.Horizon
	for _, h := range contracts.Horizons() {
		if s.loaded[h] != nil {
			out = append(out, h)
		}
	}
	return out
}

// get returns the frozen artifact for a horizon, if any
func (s *Scorer) get(horizon contracts.Horizon) *artifact.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded[horizon]
}

// PredictScore computes the expected score for one horizon: the vector
// is re-ordered to the artifact's recorded feature names (missing keys
// zero-filled), scaled with the stored scaler, and the class
// probabilities are collapsed into a probability-weighted sum over the
// class score table. The result is an integer in [0,100]; the weighting
// keeps it continuous instead of snapping to the argmax class.
func (s *Scorer) PredictScore(horizon contracts.Horizon, vector contracts.FeatureVector) (int, error) {
	a := s.get(horizon)
	if a == nil {
		return 0, contracts.ErrModelNotTrained
	}

	row := a.Scaler.Transform(vector.Ordered(a.FeatureNames))
	probs := a.Model.PredictProba(row)

	var expected float64
	for class, p := range probs {
		expected += p * contracts.ClassScores[class]
	}

	score := int(math.Round(expected))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}

// PredictAll scores every horizon. Horizons without a trained model
// get a nil entry; partial results are expected, not an error.
func (s *Scorer) PredictAll(vector contracts.FeatureVector) map[contracts.Horizon]*int {
	out := make(map[contracts.Horizon]*int, len(contracts.Horizons()))
	for _, horizon := range contracts.Horizons() {
		score, err := s.PredictScore(horizon, vector)
		if err != nil {
			out[horizon] = nil
			continue
		}
		out[horizon] = &score
	}
	return out
}

// Ratings applies the shared rating table to each non-nil score
func (s *Scorer) Ratings(scores map[contracts.Horizon]*int) map[contracts.Horizon]contracts.Rating {
	out := make(map[contracts.Horizon]contracts.Rating)
	for horizon, score := range scores {
		if score != nil {
			out[horizon] = contracts.RatingForScore(*score)
		}
	}
	return out
}
