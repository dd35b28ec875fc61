package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/TilePack/internal/model"
)

// SnapshotVersion is written into every saved layout.
const SnapshotVersion = "1.0.0"

// Snapshot is the top-level structure of a saved layout.
type Snapshot struct {
	Version   string       `json:"version"`
	CreatedAt string       `json:"created_at"`
	Result    model.Result `json:"result"`
}

// SaveResult writes a finished (or aborted) run to path as JSON.
func SaveResult(path string, result model.Result) error {
	snap := Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Result:    result,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}
	return nil
}

// LoadResult reads a layout saved by SaveResult.
func LoadResult(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read layout file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse layout file: %w", err)
	}
	if snap.Version == "" {
		return Snapshot{}, fmt.Errorf("invalid layout file: missing version field")
	}
	if snap.Result.RunID != "" {
		if err := model.ValidateRunID(snap.Result.RunID); err != nil {
			return Snapshot{}, fmt.Errorf("invalid layout file: %w", err)
		}
	}
	return snap, nil
}
