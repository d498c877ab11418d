package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-texter/internal/update"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

func (c *LogConfig) validate() error {
	el := errors.NewErrorList()

	if c.Level != "" {
		var lvl slog.Level
		err := lvl.UnmarshalText([]byte(c.Level))
		if err != nil {
			el.Add(fmt.Errorf("log level: %w", err))
		}
	}
	if c.MaxSizeMB < 0 {
		el.Add(fmt.Errorf("log max_size_mb must not be negative"))
	}
	if c.MaxBackups < 0 {
		el.Add(fmt.Errorf("log max_backups must not be negative"))
	}

	return el.Err()
}

func (c *LogConfig) level() slog.Level {
	var lvl slog.Level
	if c.Level != "" {
		_ = lvl.UnmarshalText([]byte(c.Level))
	}
	return lvl
}

// BuildLogger writes to stderr, or to a rotating file when one is set.
func (c *LogConfig) BuildLogger() *slog.Logger {
	var w io.Writer = os.Stderr
	if c.File != "" {
		size := c.MaxSizeMB
		if size == 0 {
			size = 50
		}
		backups := c.MaxBackups
		if backups == 0 {
			backups = 3
		}
		w = &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    size, // megabytes
			MaxBackups: backups,
		}
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       c.level(),
		ReplaceAttr: replaceLevelNames,
	}))
}

func replaceLevelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == update.LevelNotice {
		a.Value = slog.StringValue("NOTICE")
	}
	return a
}
