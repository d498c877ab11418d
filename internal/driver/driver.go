package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	DefaultTickLength = time.Millisecond * 250
	DefaultQueueSize  = 64
)

var ErrStopped = errors.New("driver is not running")

// Ticker is run once per tick on the main loop.
type Ticker interface {
	Tick(context.Context) error
}

// Task is a unit of work executed on the main loop.
type Task = func(context.Context)

// Driver is the main control loop. Tickers and posted tasks all run on the
// goroutine that called Start, so state they share needs no locking.
type Driver struct {
	tickLength time.Duration
	queueSize  int
	handlers   []Ticker

	tasks   chan Task
	running atomic.Bool
	stopped chan struct{}
}

func NewDriver(h []Ticker, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		queueSize:  DefaultQueueSize,
		handlers:   h,
		stopped:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.tasks = make(chan Task, d.queueSize)

	return d
}

// AddTicker registers t. It must be called before Start.
func (d *Driver) AddTicker(t Ticker) {
	d.handlers = append(d.handlers, t)
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	d.running.Store(true)
	defer func() {
		d.running.Store(false)
		close(d.stopped)
	}()

	slog.InfoContext(ctx, "driver started", "tick", d.tickLength)

	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-d.tasks:
			task(ctx)
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.handlers {
		err := m.Tick(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// Running reports whether the main loop is active.
func (d *Driver) Running() bool {
	return d.running.Load()
}

// Post queues task for the main loop. It blocks while the queue is full and
// fails once the loop has stopped or ctx is done.
func (d *Driver) Post(ctx context.Context, task Task) error {
	select {
	case <-d.stopped:
		return ErrStopped
	default:
	}

	select {
	case d.tasks <- task:
		return nil
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the main loop and waits for its result.
func (d *Driver) Do(ctx context.Context, fn func(context.Context) error) error {
	result := make(chan error, 1)

	err := d.Post(ctx, func(ctx context.Context) {
		result <- fn(ctx)
	})
	if err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-d.stopped:
		// The task may still have run before the loop exited
		select {
		case err := <-result:
			return err
		default:
			return fmt.Errorf("waiting for task: %w", ErrStopped)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
