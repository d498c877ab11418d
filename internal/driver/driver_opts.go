package driver

import "time"

type DriverOpt func(*Driver)

// WithTickLength sets how often registered tickers run.
func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

// WithQueueSize sets how many posted tasks may wait for the main loop.
func WithQueueSize(n int) DriverOpt {
	return func(d *Driver) {
		d.queueSize = n
	}
}
