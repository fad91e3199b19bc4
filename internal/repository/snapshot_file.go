package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

// FileSnapshotStore keeps the registry snapshot in a single JSON document.
// Writes go through a temp file and rename so a crash never leaves a
// truncated snapshot behind.
type FileSnapshotStore struct {
	path string
}

// NewFileSnapshotStore creates a store writing to the given path.
func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path}
}

// Load reads the snapshot document. A missing file is an empty registry,
// not an error, so first runs start clean.
func (s *FileSnapshotStore) Load(_ context.Context) (*models.RegistrySnapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.RegistrySnapshot{}, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var snapshot models.RegistrySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", s.path, err)
	}
	return &snapshot, nil
}

// Save atomically replaces the snapshot document.
func (s *FileSnapshotStore) Save(_ context.Context, snapshot *models.RegistrySnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepare snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}
