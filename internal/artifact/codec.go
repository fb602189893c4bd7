package artifact

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/internal/ml"
)

// Serialization is versioned so that compatibility is a data problem
// with an explicit migration table, not a runtime-exception problem.
// currentSchemaVersion is written on every save; decoders exist for
// every version still migratable.
const currentSchemaVersion = 2

// envelope is the on-disk artifact layout
type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// payloadV2 is the current artifact payload
type payloadV2 struct {
	Horizon      contracts.Horizon           `json:"horizon"`
	FeatureNames []string                    `json:"feature_names"`
	TrainedAt    time.Time                   `json:"trained_at"`
	Metrics      contracts.EvaluationMetrics `json:"metrics"`
	Scaler       *ml.StandardScaler          `json:"scaler"`
	Model        *ml.GBDTClassifier          `json:"model"`
}

// payloadV1 is the legacy layout: scaler stored as flat arrays and the
// model under "classifier". Kept decodable for one migration cycle.
type payloadV1 struct {
	Horizon      string                      `json:"horizon"`
	FeatureNames []string                    `json:"feature_names"`
	TrainedAt    time.Time                   `json:"trained_at"`
	Metrics      contracts.EvaluationMetrics `json:"metrics"`
	Means        []float64                   `json:"scaler_means"`
	Stds         []float64                   `json:"scaler_stds"`
	Classifier   *ml.GBDTClassifier          `json:"classifier"`
}

// encode serializes an artifact under the current schema version
func encode(a *Artifact) ([]byte, error) {
	payload, err := json.Marshal(payloadV2{
		Horizon:      a.Horizon,
		FeatureNames: a.FeatureNames,
		TrainedAt:    a.TrainedAt,
		Metrics:      a.Metrics,
		Scaler:       a.Scaler,
		Model:        a.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("encode artifact payload: %w", err)
	}

	return json.MarshalIndent(envelope{
		SchemaVersion: currentSchemaVersion,
		Payload:       payload,
	}, "", "  ")
}

// decoders is the migration table from schema version to decoder
var decoders = map[int]func(json.RawMessage) (*Artifact, error){
	1: decodeV1,
	2: decodeV2,
}

// decode deserializes an artifact, trying the decoder for its declared
// schema version. Unknown versions and malformed payloads are
// ErrArtifactIncompatible: the caller treats the artifact as absent and
// keeps whatever it currently serves.
func decode(data []byte) (*Artifact, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: not a versioned artifact: %v", contracts.ErrArtifactIncompatible, err)
	}

	dec, ok := decoders[env.SchemaVersion]
	if !ok {
		return nil, fmt.Errorf("%w: unknown schema version %d", contracts.ErrArtifactIncompatible, env.SchemaVersion)
	}

	a, err := dec(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: schema v%d decode failed: %v", contracts.ErrArtifactIncompatible, env.SchemaVersion, err)
	}
	return a, nil
}

func decodeV2(payload json.RawMessage) (*Artifact, error) {
	var p payloadV2
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	if p.Model == nil || p.Scaler == nil {
		return nil, fmt.Errorf("missing model or scaler")
	}

	return &Artifact{
		Horizon:      p.Horizon,
		FeatureNames: p.FeatureNames,
		TrainedAt:    p.TrainedAt,
		Metrics:      p.Metrics,
		Scaler:       p.Scaler,
		Model:        p.Model,
	}, nil
}

func decodeV1(payload json.RawMessage) (*Artifact, error) {
	var p payloadV1
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	if p.Classifier == nil {
		return nil, fmt.Errorf("missing classifier")
	}

	horizon, err := contracts.ParseHorizon(p.Horizon)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Horizon:      horizon,
		FeatureNames: p.FeatureNames,
		TrainedAt:    p.TrainedAt,
		Metrics:      p.Metrics,
		Scaler:       &ml.StandardScaler{Means: p.Means, Stds: p.Stds},
		Model:        p.Classifier,
	}, nil
}
