package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-texter/internal/driver"
	"github.com/pixil98/go-texter/internal/lang"
)

// Version is the running release, set at build time with
// -ldflags "-X github.com/pixil98/go-texter/cmd/texter/command.Version=..."
var Version = "0.1.0"

type Config struct {
	TickInterval string         `json:"tick_interval"`
	Language     string         `json:"language"`
	Operators    []string       `json:"operators"`
	Log          LogConfig      `json:"log"`
	Storage      StorageConfig  `json:"storage"`
	Commands     CommandsConfig `json:"commands"`
	Update       UpdateConfig   `json:"update"`
	Nats         NatsConfig     `json:"nats"`
	Metrics      MetricsConfig  `json:"metrics"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < 10*time.Millisecond {
			el.Add(fmt.Errorf("tick_interval must be at least 10ms"))
		}
	}

	if c.Language != "" {
		_, err := lang.New(c.Language)
		if err != nil {
			el.Add(fmt.Errorf("language: %w", err))
		}
	}

	el.Add(c.Log.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Commands.validate())
	el.Add(c.Update.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Metrics.validate())

	return el.Err()
}

func (c *Config) tickLength() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return driver.DefaultTickLength
	}
	return d
}
