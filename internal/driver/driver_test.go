package driver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type countingTicker struct {
	mu    sync.Mutex
	ticks int
	err   error
}

func (c *countingTicker) Tick(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.err
}

func (c *countingTicker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

func startDriver(t *testing.T, d *Driver) (context.CancelFunc, chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !d.Running() {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("driver did not start")
		}
		time.Sleep(time.Millisecond)
	}

	return cancel, done
}

func TestDriver_TickRunsHandlersInOrder(t *testing.T) {
	var order []string
	a := tickFunc(func(context.Context) error { order = append(order, "a"); return nil })
	b := tickFunc(func(context.Context) error { order = append(order, "b"); return nil })

	d := NewDriver([]Ticker{a})
	d.AddTicker(b)

	err := d.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "calls", len(order), 2)
	testutil.AssertEqual(t, "first", order[0], "a")
	testutil.AssertEqual(t, "second", order[1], "b")
}

func TestDriver_TickStopsOnError(t *testing.T) {
	failing := &countingTicker{err: errors.New("tick failed")}
	after := &countingTicker{}

	d := NewDriver([]Ticker{failing, after})

	err := d.Tick(context.Background())

	testutil.AssertErrorContains(t, err, "tick failed")
	testutil.AssertEqual(t, "after ticks", after.count(), 0)
}

func TestDriver_StartTicks(t *testing.T) {
	ct := &countingTicker{}
	d := NewDriver([]Ticker{ct}, WithTickLength(5*time.Millisecond))

	cancel, done := startDriver(t, d)

	deadline := time.After(2 * time.Second)
	for ct.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for ticks")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "running", d.Running(), false)
}

func TestDriver_DoRunsOnLoop(t *testing.T) {
	d := NewDriver(nil, WithTickLength(time.Hour))
	cancel, done := startDriver(t, d)
	defer func() {
		cancel()
		<-done
	}()

	shared := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Do(context.Background(), func(context.Context) error {
				shared++
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, "shared", shared, 50)

	err := d.Do(context.Background(), func(context.Context) error { return errors.New("task failed") })
	testutil.AssertErrorContains(t, err, "task failed")
}

func TestDriver_PostBeforeStartRunsOnStart(t *testing.T) {
	d := NewDriver(nil, WithTickLength(time.Hour))

	ran := make(chan struct{})
	err := d.Post(context.Background(), func(context.Context) { close(ran) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancel, done := startDriver(t, d)
	defer func() {
		cancel()
		<-done
	}()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted task did not run")
	}
}

func TestDriver_PostAfterStop(t *testing.T) {
	d := NewDriver(nil, WithTickLength(time.Hour))
	cancel, done := startDriver(t, d)
	cancel()
	<-done

	err := d.Post(context.Background(), func(context.Context) {})
	testutil.AssertEqual(t, "stopped", errors.Is(err, ErrStopped), true)

	err = d.Do(context.Background(), func(context.Context) error { return nil })
	testutil.AssertEqual(t, "do stopped", errors.Is(err, ErrStopped), true)
}

func TestDriver_PostHonoursContext(t *testing.T) {
	d := NewDriver(nil, WithQueueSize(1))

	err := d.Post(context.Background(), func(context.Context) {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = d.Post(ctx, func(context.Context) {})
	testutil.AssertEqual(t, "canceled", errors.Is(err, context.Canceled), true)
}

type tickFunc func(context.Context) error

func (f tickFunc) Tick(ctx context.Context) error {
	return f(ctx)
}
