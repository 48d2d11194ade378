// Package prefs exports and imports view state as JSON so it can be moved
// between machines or checked into dotfiles.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jask/tablebrowser/internal/viewstate"
)

// Export writes s to path as indented JSON. The file is replaced atomically.
func Export(path string, s viewstate.Snapshot) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Import reads a snapshot written by Export.
func Import(path string) (viewstate.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return viewstate.Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	var s viewstate.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return viewstate.Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}
