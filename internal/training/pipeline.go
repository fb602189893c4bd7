// Package training turns labeled samples into candidate model
// artifacts. It never touches the production slot; promotion is the
// artifact store's job.
package training

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab-io/scorecast/internal/artifact"
	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/internal/ml"
)

const trainFraction = 0.8

// Pipeline trains and evaluates one classifier per invocation
type Pipeline struct {
	config ml.GBDTConfig
	seed   int64
	clock  func() time.Time
	log    zerolog.Logger
}

// NewPipeline creates a training pipeline with production hyperparameters
func NewPipeline(seed int64, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		config: ml.DefaultGBDTConfig(),
		seed:   seed,
		clock:  time.Now,
		log:    log.With().Str("component", "training.pipeline").Logger(),
	}
}

// WithGBDTConfig overrides the boosting hyperparameters (tests use a
// smaller ensemble)
func (p *Pipeline) WithGBDTConfig(cfg ml.GBDTConfig) *Pipeline {
	p.config = cfg
	return p
}

// WithClock overrides the trained-at clock
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// Train fits a candidate model for one horizon: drops rows with
// non-finite features, splits 80/20 stratified by label, standardizes
// on the training split only, fits the ensemble and evaluates the
// held-out split. The returned artifact is a candidate; it has not been
// promoted anywhere.
func (p *Pipeline) Train(samples []contracts.TrainingSample, horizon contracts.Horizon) (*artifact.Artifact, error) {
	if !horizon.Valid() {
		return nil, fmt.Errorf("train: invalid horizon %q", horizon)
	}

	clean := make([]contracts.TrainingSample, 0, len(samples))
	for _, s := range samples {
		if s.Features.IsFinite() && len(s.Features) > 0 {
			clean = append(clean, s)
		}
	}
	dropped := len(samples) - len(clean)
	if len(clean) < 50 {
		return nil, fmt.Errorf("train %s: %d usable samples, need at least 50", horizon, len(clean))
	}

	// The feature schema is frozen here: the union of names across the
	// cleaned set, sorted for a stable artifact order.
	featureNames := featureUnion(clean)

	train, test := stratifiedSplit(clean, trainFraction, p.seed)
	if len(test) == 0 {
		return nil, fmt.Errorf("train %s: empty held-out split", horizon)
	}

	trainRows, trainLabels := toMatrix(train, featureNames)
	testRows, testLabels := toMatrix(test, featureNames)

	scaler := &ml.StandardScaler{}
	scaler.Fit(trainRows)

	model := ml.NewGBDTClassifier(p.config, contracts.NumClasses)
	if err := model.Fit(scaler.TransformAll(trainRows), trainLabels); err != nil {
		return nil, fmt.Errorf("train %s: %w", horizon, err)
	}

	predicted := make([]int, len(testRows))
	for i, row := range testRows {
		predicted[i] = model.Predict(scaler.Transform(row))
	}
	metrics := evaluate(predicted, testLabels)

	p.log.Info().
		Str("horizon", string(horizon)).
		Int("samples", len(clean)).
		Int("dropped", dropped).
		Int("train", len(train)).
		Int("test", len(test)).
		Float64("accuracy", metrics.Accuracy).
		Float64("f1_weighted", metrics.F1Weighted).
		Msg("candidate trained")

	return &artifact.Artifact{
		Horizon:      horizon,
		FeatureNames: featureNames,
		TrainedAt:    p.clock(),
		Metrics:      metrics,
		Scaler:       scaler,
		Model:        model,
	}, nil
}

// featureUnion collects the sorted union of feature names across samples
func featureUnion(samples []contracts.TrainingSample) []string {
	seen := make(map[string]bool)
	for _, s := range samples {
		for name := range s.Features {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// toMatrix orders every sample's features into the frozen schema
func toMatrix(samples []contracts.TrainingSample, featureNames []string) ([][]float64, []int) {
	rows := make([][]float64, len(samples))
	labels := make([]int, len(samples))
	for i, s := range samples {
		rows[i] = s.Features.Ordered(featureNames)
		labels[i] = s.Label
	}
	return rows, labels
}
