// Package dataset reads and writes the JSON dataset files the site is built
// from. Every overwrite of an existing dataset first copies the previous
// bytes to a ".bak" sibling.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// BackupSuffix is appended to a dataset path to name its backup.
const BackupSuffix = ".bak"

// BackupPath returns the backup location for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Exists reports whether a regular file exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadFactions reads a factions dataset. A missing file yields an error
// matching os.ErrNotExist.
func LoadFactions(path string) (*types.FactionsData, error) {
	var data types.FactionsData
	if err := load(path, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// LoadBiomes reads a biomes dataset. A missing file yields an error matching
// os.ErrNotExist.
func LoadBiomes(path string) (*types.BiomesData, error) {
	var data types.BiomesData
	if err := load(path, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func load(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return &IOError{Op: "read", Path: path, Cause: err}
	}
	if err := json.Unmarshal(content, v); err != nil {
		return &IOError{Op: "parse", Path: path, Cause: err}
	}
	return nil
}

// WriteJSON writes v to path as 2-space indented JSON with a trailing
// newline, creating parent directories. When backup is set and path already
// exists, its current bytes are copied verbatim to BackupPath(path) before
// the overwrite; a failed backup aborts the write.
func WriteJSON(path string, v any, backup bool) error {
	content, err := Encode(v)
	if err != nil {
		return &IOError{Op: "encode", Path: path, Cause: err}
	}

	if backup {
		if err := Backup(path); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Op: "mkdir", Path: dir, Cause: err}
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Cause: err}
	}
	return nil
}

// Encode renders v as 2-space indented JSON with a trailing newline. HTML
// characters in strings are written as is.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Backup copies path to BackupPath(path). It is a no-op when path does not
// exist.
func Backup(path string) error {
	current, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &IOError{Op: "backup", Path: path, Cause: err}
	}
	if err := os.WriteFile(BackupPath(path), current, 0o644); err != nil {
		return &IOError{Op: "backup", Path: BackupPath(path), Cause: fmt.Errorf("failed to write backup: %w", err)}
	}
	return nil
}
