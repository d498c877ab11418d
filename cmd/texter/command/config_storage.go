package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-texter/internal/logfields"
	"github.com/pixil98/go-texter/internal/storage"
	"github.com/pixil98/go-texter/internal/texts"
)

type StorageConfig struct {
	DataDir string `json:"data_dir"`
	Watch   bool   `json:"watch"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	if c.DataDir == "" {
		el.Add(fmt.Errorf("storage data_dir is required"))
	} else if fi, err := os.Stat(c.DataDir); err == nil && !fi.IsDir() {
		el.Add(fmt.Errorf("storage data_dir %q is not a directory", c.DataDir))
	}

	return el.Err()
}

// BuildRegistries migrates legacy data files and opens both registries. It
// reports whether legacy files were found.
func (c *StorageConfig) BuildRegistries(opts ...texts.RegistryOpt) (*texts.Registries, bool, error) {
	err := os.MkdirAll(c.DataDir, 0o755)
	if err != nil {
		return nil, false, fmt.Errorf("creating data directory: %w", err)
	}

	upgraded, err := storage.MigrateLegacy(c.DataDir, storage.LegacyRenames)
	if err != nil {
		return nil, upgraded, fmt.Errorf("migrating legacy data files: %w", err)
	}

	rs, err := texts.OpenRegistries(c.DataDir, opts...)
	if err != nil {
		return nil, upgraded, fmt.Errorf("opening registries: %w", err)
	}

	return rs, upgraded, nil
}

// BuildWatcher reloads a registry when its file is edited outside the process.
func (c *StorageConfig) BuildWatcher(rs *texts.Registries, post storage.PostFunc) *storage.Watcher {
	w := storage.NewWatcher(c.DataDir, post)

	for file, reg := range map[string]*texts.Registry{
		texts.RemovableFile:   rs.Removable,
		texts.UnremovableFile: rs.Unremovable,
	} {
		w.Watch(file, func(ctx context.Context) {
			changed, err := reg.Reload()
			if err != nil {
				slog.WarnContext(ctx, "reloading registry", logfields.Registry(reg.Name()), logfields.Error(err))
				return
			}
			if changed {
				slog.InfoContext(ctx, "registry reloaded", logfields.Registry(reg.Name()), logfields.Count(reg.Len()))
			}
		})
	}

	return w
}
