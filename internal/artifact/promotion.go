package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab-io/scorecast/internal/contracts"
)

// Decision is the outcome of a promotion attempt. Rejection is a
// normal, non-error outcome: the candidate simply was not better.
type Decision struct {
	Horizon      contracts.Horizon
	Promoted     bool
	Reason       string
	CandidateF1  float64
	ProductionF1 float64
}

// Manager arbitrates candidate versus production per horizon.
//
// Promotions perform a non-atomic multi-step filesystem swap, so no two
// promotions for the same horizon may run concurrently. A per-horizon
// lock file enforces the single writer.
type Manager struct {
	store *Store
	clock func() time.Time
	log   zerolog.Logger
}

// NewManager creates a promotion manager over a store
func NewManager(store *Store, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		clock: time.Now,
		log:   log.With().Str("component", "artifact.promotion").Logger(),
	}
}

// WithClock overrides the backup-timestamp clock
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}

// Promote saves candidate into the candidate slot and promotes it to
// production iff it is strictly better than the current production on
// weighted F1, or unconditionally when no production exists (cold
// start). Ties and regressions are rejected and production is left
// byte-identical.
//
// The swap is backup-first: production is copied aside before being
// overwritten, and any failure before that copy succeeds aborts without
// touching production.
func (m *Manager) Promote(candidate *Artifact) (Decision, error) {
	horizon := candidate.Horizon
	decision := Decision{
		Horizon:     horizon,
		CandidateF1: candidate.Metrics.F1Weighted,
	}

	unlock, err := m.lock(horizon)
	if err != nil {
		return decision, err
	}
	defer unlock()

	if err := m.store.Save(candidate, SlotCandidate); err != nil {
		return decision, fmt.Errorf("save candidate for %s: %w", horizon, err)
	}

	production, err := m.store.Load(horizon, SlotProduction)
	switch {
	case errors.Is(err, contracts.ErrModelNotTrained):
		// Cold start: the serving path must never sit without a model
		// when one exists, so the first candidate always wins.
		if err := m.store.Save(candidate, SlotProduction); err != nil {
			return decision, fmt.Errorf("cold-start promote for %s: %w", horizon, err)
		}
		decision.Promoted = true
		decision.Reason = "cold start, no production artifact"
		m.logDecision(decision)
		return decision, nil

	case errors.Is(err, contracts.ErrArtifactIncompatible):
		// Production exists but is unreadable under the current schema.
		// Replacing it with a readable candidate is the only way back
		// to a servable state; the old file is still backed up first.
		decision.Reason = "production artifact incompatible, replacing"

	case err != nil:
		return decision, fmt.Errorf("load production for %s: %w", horizon, err)

	default:
		decision.ProductionF1 = production.Metrics.F1Weighted
		if candidate.Metrics.F1Weighted <= production.Metrics.F1Weighted {
			decision.Reason = fmt.Sprintf("candidate f1 %.4f not strictly better than production %.4f",
				candidate.Metrics.F1Weighted, production.Metrics.F1Weighted)
			m.logDecision(decision)
			return decision, nil
		}
		decision.Reason = fmt.Sprintf("candidate f1 %.4f beats production %.4f",
			candidate.Metrics.F1Weighted, production.Metrics.F1Weighted)
	}

	// Step 1: back up current production. Failure aborts before
	// production is touched.
	if m.store.Exists(horizon, SlotProduction) {
		if err := m.store.backup(horizon, m.clock()); err != nil {
			return decision, fmt.Errorf("backup before promote for %s: %w", horizon, err)
		}
	}

	// Step 2: only after the backup succeeded, overwrite production.
	if err := m.store.Save(candidate, SlotProduction); err != nil {
		return decision, fmt.Errorf("promote candidate for %s: %w", horizon, err)
	}

	decision.Promoted = true
	m.logDecision(decision)
	return decision, nil
}

// logDecision records the promotion outcome
func (m *Manager) logDecision(d Decision) {
	m.log.Info().
		Str("horizon", string(d.Horizon)).
		Bool("promoted", d.Promoted).
		Float64("candidate_f1", d.CandidateF1).
		Float64("production_f1", d.ProductionF1).
		Str("reason", d.Reason).
		Msg("promotion decision")
}

// lock takes the per-horizon promotion lock file. A held lock surfaces
// as an error; the weekly cadence makes contention a configuration
// problem, not something to wait out.
func (m *Manager) lock(horizon contracts.Horizon) (func(), error) {
	path := filepath.Join(m.store.Dir(), fmt.Sprintf("promote_%s.lock", horizon))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("promotion for %s already in progress (lock %s held)", horizon, path)
		}
		return nil, fmt.Errorf("take promotion lock for %s: %w", horizon, err)
	}
	fmt.Fprintf(f, "pid %d at %s\n", os.Getpid(), m.clock().UTC().Format(time.RFC3339))
	f.Close()

	return func() { os.Remove(path) }, nil
}
