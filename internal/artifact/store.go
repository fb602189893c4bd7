package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/quantlab-io/scorecast/internal/contracts"
)

// Store persists artifacts on the filesystem under named per-horizon
// slots. File names encode horizon and slot unambiguously:
// model_5d_production.json, model_5d_candidate.json, and timestamped
// backups model_5d_backup_20260117T083000Z.json.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store root
func (s *Store) Dir() string {
	return s.dir
}

// slotPath builds the canonical file path for a horizon and slot
func (s *Store) slotPath(horizon contracts.Horizon, slot Slot) string {
	return filepath.Join(s.dir, fmt.Sprintf("model_%s_%s.json", horizon, slot))
}

// backupPath builds a timestamped backup file path
func (s *Store) backupPath(horizon contracts.Horizon, at time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("model_%s_backup_%s.json", horizon, at.UTC().Format("20060102T150405Z")))
}

// Save writes an artifact into a slot. The write goes to a temp file in
// the same directory and is renamed into place, so a crash can never
// leave the slot half-written.
func (s *Store) Save(a *Artifact, slot Slot) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	return s.writeAtomic(s.slotPath(a.Horizon, slot), data)
}

// writeAtomic writes data to path via a temp file and rename
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename artifact into place: %w", err)
	}
	return nil
}

// Load reads the artifact in a slot. A missing file is
// contracts.ErrModelNotTrained; an unreadable one is
// contracts.ErrArtifactIncompatible.
func (s *Store) Load(horizon contracts.Horizon, slot Slot) (*Artifact, error) {
	data, err := os.ReadFile(s.slotPath(horizon, slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no %s artifact for %s", contracts.ErrModelNotTrained, slot, horizon)
		}
		return nil, fmt.Errorf("read %s artifact for %s: %w", slot, horizon, err)
	}

	return decode(data)
}

// Exists reports whether a slot holds an artifact file
func (s *Store) Exists(horizon contracts.Horizon, slot Slot) bool {
	_, err := os.Stat(s.slotPath(horizon, slot))
	return err == nil
}

// backup copies the current production file of a horizon to both the
// canonical backup slot and a timestamped file. Returns an error when
// production exists but cannot be copied; promotion must abort in that
// case before touching production.
func (s *Store) backup(horizon contracts.Horizon, at time.Time) error {
	data, err := os.ReadFile(s.slotPath(horizon, SlotProduction))
	if err != nil {
		return fmt.Errorf("read production for backup: %w", err)
	}

	if err := s.writeAtomic(s.backupPath(horizon, at), data); err != nil {
		return fmt.Errorf("write timestamped backup: %w", err)
	}
	if err := s.writeAtomic(s.slotPath(horizon, SlotBackup), data); err != nil {
		return fmt.Errorf("write backup slot: %w", err)
	}
	return nil
}
