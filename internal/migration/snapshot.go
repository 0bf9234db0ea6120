package migration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

// ManifestFile sits next to the per-type files. It is informational and
// never read back into a snapshot.
const ManifestFile = "manifest.json"

// Manifest describes how a snapshot directory was produced.
type Manifest struct {
	Version   string         `json:"version"`
	Origin    string         `json:"origin"`
	CreatedAt time.Time      `json:"created_at"`
	Counts    map[string]int `json:"counts"`
}

// WriteSnapshot writes one indented JSON array per entity type into dir.
func WriteSnapshot(dir string, snap *models.Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, t := range models.Types() {
		data, err := json.MarshalIndent(snap.Collection(t), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s: %w", t, err)
		}
		if err := writeFileAtomic(filepath.Join(dir, t.FileName()), append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// WriteManifest records the producing version, origin and per-type counts.
func WriteManifest(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, ManifestFile), append(data, '\n'))
}

// NewManifest builds a manifest for snap.
func NewManifest(version, origin string, snap *models.Snapshot) Manifest {
	counts := make(map[string]int)
	for t, n := range snap.Counts() {
		counts[string(t)] = n
	}
	return Manifest{
		Version:   version,
		Origin:    origin,
		CreatedAt: time.Now().UTC(),
		Counts:    counts,
	}
}

// ReadManifest reads the manifest of a snapshot directory.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// ReadSnapshot loads every per-type file from dir. A missing file aborts.
func ReadSnapshot(dir string) (*models.Snapshot, error) {
	snap := models.NewSnapshot()
	for _, t := range models.Types() {
		data, err := readTypeFile(dir, t)
		if err != nil {
			return nil, err
		}
		if err := snap.Collection(t).UnmarshalJSON(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", t.FileName(), err)
		}
	}
	return snap, nil
}

// ReadType returns the records of one type in file order, undecoded.
func ReadType(dir string, t models.EntityType) ([]json.RawMessage, error) {
	data, err := readTypeFile(dir, t)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", t.FileName(), err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

func readTypeFile(dir string, t models.EntityType) ([]byte, error) {
	path := filepath.Join(dir, t.FileName())
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: snapshot file %s missing", apperrors.ErrConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
