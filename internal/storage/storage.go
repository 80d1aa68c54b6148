// Package storage provides atomic JSON persistence for knowledge files.
//
// Every write goes through write-temp-then-rename so a concurrent reader
// never observes a partially written file: a crash mid-write leaves either
// the old or the new complete content on disk.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorrupted indicates a persisted document failed to parse.
var ErrCorrupted = errors.New("persisted document is corrupted")

// SaveJSON writes v to path as pretty-printed JSON, atomically.
// Parent directories are created as needed.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads path into v. A missing file surfaces as os.ErrNotExist;
// unparseable content surfaces as ErrCorrupted.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupted, filepath.Base(path), err)
	}
	return nil
}
