package storage

import (
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type snapshotFiles struct {
	dir string
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewSnapshotFiles - creates snapshot storage under dir, defaulting to ~/.ai_testgen/snapshots
func NewSnapshotFiles(dir string) (interfaces.SnapshotStorage, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".ai_testgen", "snapshots")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &snapshotFiles{dir: dir}, nil
}

// SaveSnapshot - writes the snapshot as indented JSON and returns the file path
func (s *snapshotFiles) SaveSnapshot(name string, snapshot *entities.PageSnapshot) (string, error) {
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_.")
	if name == "" {
		name = "snapshot"
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot - reads a snapshot written by SaveSnapshot or by hand.
// Relative names are looked up in the storage directory first.
func (s *snapshotFiles) LoadSnapshot(path string) (*entities.PageSnapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !filepath.IsAbs(path) {
		data, err = os.ReadFile(filepath.Join(s.dir, path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot entities.PageSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}
