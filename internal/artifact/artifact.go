// Package artifact persists trained models and arbitrates which one
// serves production traffic.
//
// Every horizon owns three slots: candidate (freshly trained),
// production (currently served) and backup (previous production, kept
// for rollback). Artifacts are immutable once written; promotion is the
// only operation that moves them between slots.
package artifact

import (
	"time"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/internal/ml"
)

// Slot names a lifecycle position for a stored artifact
type Slot string

const (
	SlotCandidate  Slot = "candidate"
	SlotProduction Slot = "production"
	SlotBackup     Slot = "backup"
)

// Artifact bundles everything serving needs for one horizon: the
// classifier, the scaler fitted alongside it, the frozen feature order
// and the held-out metrics that promotion arbitrates on.
//
// FeatureNames is the contract between training and serving: a serve
// time vector is re-ordered to exactly this list, with missing keys
// zero-filled, never dropped.
type Artifact struct {
	Horizon      contracts.Horizon           `json:"horizon"`
	FeatureNames []string                    `json:"feature_names"`
	TrainedAt    time.Time                   `json:"trained_at"`
	Metrics      contracts.EvaluationMetrics `json:"metrics"`
	Scaler       *ml.StandardScaler          `json:"scaler"`
	Model        *ml.GBDTClassifier          `json:"model"`
}
