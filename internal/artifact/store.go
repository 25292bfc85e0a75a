package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Named artifact slots written by the pipeline, in stage order.
const (
	SlotCleaned = "cleaned_data.json"
	SlotMeta    = "meta_data.json"
	SlotAssets  = "assets.json"
)

// Sentinel errors returned by Read.
var (
	// ErrNotFound means the slot has never been written.
	ErrNotFound = errors.New("artifact not found")

	// ErrCorrupt means the slot exists but does not contain valid JSON.
	ErrCorrupt = errors.New("artifact corrupt")
)

// Store persists named JSON artifact slots in a directory, plus timestamped
// blob copies of the final artifact in a separate blob directory.
//
// Writes are atomic (temp file + rename) so a crashed run can never leave a
// torn slot behind. The orchestrator serializes whole runs; the store itself
// only guarantees per-slot atomicity.
type Store struct {
	dir     string
	blobDir string
	now     func() time.Time // injectable for deterministic tests
}

// New creates a Store rooted at dir, with blob copies under blobDir.
// Both directories are created if missing.
func New(dir, blobDir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create dir %q: %w", dir, err)
	}
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create blob dir %q: %w", blobDir, err)
	}
	return &Store{dir: dir, blobDir: blobDir, now: time.Now}, nil
}

// Write marshals v and atomically replaces the named slot.
// It returns the path of the written file.
func (s *Store) Write(slot string, v any) (string, error) {
	path := filepath.Join(s.dir, slot)
	if err := writeAtomic(path, v); err != nil {
		return "", fmt.Errorf("artifact: write slot %q: %w", slot, err)
	}
	return path, nil
}

// Read unmarshals the named slot into v.
// Returns ErrNotFound when the slot has never been written and ErrCorrupt
// when its contents are not valid JSON.
func (s *Store) Read(slot string, v any) error {
	path := filepath.Join(s.dir, slot)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: slot %q", ErrNotFound, slot)
		}
		return fmt.Errorf("artifact: read slot %q: %w", slot, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: slot %q: %v", ErrCorrupt, slot, err)
	}
	return nil
}

// WriteBlob writes a timestamped copy of v to the blob directory, named
// final_data_<ts>.blob.json. It returns the path of the written file.
func (s *Store) WriteBlob(v any) (string, error) {
	name := fmt.Sprintf("final_data_%s.blob.json", s.now().Format("20060102150405"))
	path := filepath.Join(s.blobDir, name)
	if err := writeAtomic(path, v); err != nil {
		return "", fmt.Errorf("artifact: write blob %q: %w", name, err)
	}
	return path, nil
}

// writeAtomic marshals v to a temp file in the target directory, then renames
// it over path.
func writeAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
