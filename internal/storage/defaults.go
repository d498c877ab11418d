package storage

import (
	"embed"
	"path"
)

//go:embed defaults/*.json
var defaults embed.FS

// Template returns the bundled first-run content for a data file, or nil when
// no template ships for that name.
func Template(name string) []byte {
	data, err := defaults.ReadFile(path.Join("defaults", name))
	if err != nil {
		return nil
	}
	return data
}
