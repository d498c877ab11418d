package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const DefaultWorkers = 2

// Pool runs jobs off the main loop on a bounded number of goroutines.
type Pool struct {
	scheduler gocron.Scheduler
}

// NewPool creates a pool that runs at most workers jobs at once. Jobs beyond
// that limit wait for a free slot.
func NewPool(workers uint) (*Pool, error) {
	if workers == 0 {
		workers = DefaultWorkers
	}

	s, err := gocron.NewScheduler(
		gocron.WithLimitConcurrentJobs(workers, gocron.LimitModeWait),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	return &Pool{scheduler: s}, nil
}

// Submit runs fn once, as soon as a worker is free.
func (p *Pool) Submit(name string, fn func()) error {
	_, err := p.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartImmediately()),
		gocron.NewTask(fn),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("submitting %s: %w", name, err)
	}
	return nil
}

// Every runs fn repeatedly with the given interval. A run is skipped while the
// previous one is still going.
func (p *Pool) Every(name string, interval time.Duration, fn func()) error {
	_, err := p.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	return nil
}

// Start runs queued and scheduled jobs until ctx is done.
func (p *Pool) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "starting worker pool")
	p.scheduler.Start()

	<-ctx.Done()

	slog.InfoContext(ctx, "stopping worker pool")
	err := p.scheduler.Shutdown()
	if err != nil {
		return fmt.Errorf("stopping scheduler: %w", err)
	}
	return nil
}
