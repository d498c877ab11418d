package command

import (
	"fmt"
	"net/url"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-texter/internal/update"
)

type UpdateConfig struct {
	Enabled  *bool  `json:"enabled"`
	Endpoint string `json:"endpoint"`
	Timeout  string `json:"timeout"`
	Interval string `json:"interval"`
	Retries  *int   `json:"retries"`
	Workers  uint   `json:"workers"`
}

func (c *UpdateConfig) validate() error {
	el := errors.NewErrorList()

	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil {
			el.Add(fmt.Errorf("update endpoint: %w", err))
		} else if u.Scheme != "https" && u.Scheme != "http" {
			el.Add(fmt.Errorf("update endpoint must be an http(s) url"))
		}
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing update timeout: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("update timeout must be positive"))
		}
	}

	if c.Interval != "" {
		d, err := time.ParseDuration(c.Interval)
		if err != nil {
			el.Add(fmt.Errorf("parsing update interval: %w", err))
		} else if d < time.Minute {
			el.Add(fmt.Errorf("update interval must be at least 1 minute"))
		}
	}

	if c.Retries != nil && *c.Retries < 0 {
		el.Add(fmt.Errorf("update retries must not be negative"))
	}

	return el.Err()
}

func (c *UpdateConfig) enabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// interval is zero when periodic re-checks are off.
func (c *UpdateConfig) interval() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

func (c *UpdateConfig) BuildFetcher() *update.HTTPFetcher {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = update.DefaultEndpoint
	}

	opts := []update.HTTPFetcherOpt{
		update.WithUserAgent("go-texter/" + Version),
	}
	if d, err := time.ParseDuration(c.Timeout); err == nil {
		opts = append(opts, update.WithTimeout(d))
	}
	if c.Retries != nil {
		opts = append(opts, update.WithRetries(*c.Retries))
	}

	return update.NewHTTPFetcher(endpoint, opts...)
}
