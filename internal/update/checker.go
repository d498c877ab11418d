package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

var ErrCheckInFlight = errors.New("update check already in flight")

const DefaultCheckTimeout = 45 * time.Second

type State int32

const (
	Idle State = iota
	Dispatched
)

func (s State) String() string {
	if s == Dispatched {
		return "dispatched"
	}
	return "idle"
}

// Pool runs work off the main loop.
type Pool interface {
	Submit(name string, fn func()) error
	Every(name string, interval time.Duration, fn func()) error
}

// PostFunc hands a closure to the main loop.
type PostFunc func(context.Context, func(context.Context)) error

// Checker fetches the latest release on a worker and hands the result back to
// the main loop, where it is evaluated and passed to the outcome handler. At
// most one check is outstanding at any time.
type Checker struct {
	local     string
	fetcher   Fetcher
	pool      Pool
	post      PostFunc
	onOutcome func(context.Context, Outcome)

	active  func() bool
	timeout time.Duration

	state atomic.Int32
}

type CheckerOpt func(*Checker)

// WithActiveCheck sets the guard consulted before acting on a result. Results
// that arrive while it reports false are dropped.
func WithActiveCheck(fn func() bool) CheckerOpt {
	return func(c *Checker) {
		c.active = fn
	}
}

// WithCheckTimeout bounds a whole fetch including retries.
func WithCheckTimeout(d time.Duration) CheckerOpt {
	return func(c *Checker) {
		c.timeout = d
	}
}

func NewChecker(local string, fetcher Fetcher, pool Pool, post PostFunc, onOutcome func(context.Context, Outcome), opts ...CheckerOpt) *Checker {
	c := &Checker{
		local:     local,
		fetcher:   fetcher,
		pool:      pool,
		post:      post,
		onOutcome: onOutcome,
		active:    func() bool { return true },
		timeout:   DefaultCheckTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Checker) State() State {
	return State(c.state.Load())
}

// Check dispatches one fetch. It returns ErrCheckInFlight while a previous
// check has not completed.
func (c *Checker) Check(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(Idle), int32(Dispatched)) {
		return ErrCheckInFlight
	}

	err := c.pool.Submit("update-check", func() { c.run(ctx) })
	if err != nil {
		c.state.Store(int32(Idle))
		return fmt.Errorf("dispatching update check: %w", err)
	}

	slog.DebugContext(ctx, "update check dispatched")
	return nil
}

// Schedule re-checks every interval. Ticks that find a check in flight are
// skipped.
func (c *Checker) Schedule(ctx context.Context, interval time.Duration) error {
	return c.pool.Every("update-recheck", interval, func() {
		err := c.Check(ctx)
		if err != nil && !errors.Is(err, ErrCheckInFlight) {
			slog.WarnContext(ctx, "scheduling update check", "error", err)
		}
	})
}

// run executes on a pool worker. It never touches main loop state.
func (c *Checker) run(ctx context.Context) {
	// Once dispatched a fetch runs to completion; only the timeout bounds it
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	rel, err := c.fetcher.Latest(fetchCtx)
	cancel()

	res := Result{Release: rel, Err: err}

	err = c.post(context.WithoutCancel(ctx), func(ctx context.Context) {
		c.complete(ctx, res)
	})
	if err != nil {
		c.state.Store(int32(Idle))
		slog.DebugContext(ctx, "dropping update check result", "error", err)
	}
}

// complete runs on the main loop.
func (c *Checker) complete(ctx context.Context, res Result) {
	defer c.state.Store(int32(Idle))

	if !c.active() {
		slog.DebugContext(ctx, "service inactive, ignoring update check result")
		return
	}

	c.onOutcome(ctx, Evaluate(c.local, res))
}
