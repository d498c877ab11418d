package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Rename maps a legacy data file name to its current name.
type Rename struct {
	Legacy  string
	Current string
}

// LegacyRenames are the file names used by 2.x installs.
var LegacyRenames = []Rename{
	{Legacy: "crfts.json", Current: "uft.json"},
	{Legacy: "fts.json", Current: "ft.json"},
}

// MigrateLegacy renames legacy data files in dir to their current names and
// reports whether any legacy file was found. When both names exist the current
// file is kept and the legacy one is moved aside with a .bak suffix.
func MigrateLegacy(dir string, renames []Rename) (bool, error) {
	upgraded := false

	for _, r := range renames {
		legacy := filepath.Join(dir, r.Legacy)
		current := filepath.Join(dir, r.Current)

		ok, err := exists(legacy)
		if err != nil {
			return upgraded, err
		}
		if !ok {
			continue
		}
		upgraded = true

		ok, err = exists(current)
		if err != nil {
			return upgraded, err
		}

		target := current
		if ok {
			target = legacy + ".bak"
			slog.Warn("legacy data file shadowed by current file", "legacy", legacy, "current", current, "moved_to", target)
		}

		err = os.Rename(legacy, target)
		if err != nil {
			return upgraded, fmt.Errorf("renaming %s: %w", r.Legacy, err)
		}
		slog.Info("migrated legacy data file", "from", legacy, "to", target)
	}

	return upgraded, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", path, err)
}
