package command

import (
	"fmt"
)

// MetricsConfig enables the prometheus endpoint when Port is set.
type MetricsConfig struct {
	Port int `json:"port"`
}

func (c *MetricsConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("metrics port %d out of range", c.Port)
	}
	return nil
}
