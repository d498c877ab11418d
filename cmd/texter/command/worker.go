package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-texter/internal/commands"
	"github.com/pixil98/go-texter/internal/driver"
	"github.com/pixil98/go-texter/internal/lang"
	"github.com/pixil98/go-texter/internal/listener"
	"github.com/pixil98/go-texter/internal/logfields"
	"github.com/pixil98/go-texter/internal/messaging"
	"github.com/pixil98/go-texter/internal/metrics"
	"github.com/pixil98/go-texter/internal/refresh"
	"github.com/pixil98/go-texter/internal/texts"
	"github.com/pixil98/go-texter/internal/update"
	"github.com/pixil98/go-texter/internal/worker"
	"github.com/pixil98/go-texter/internal/world"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	slog.SetDefault(cfg.Log.BuildLogger())

	tr, err := lang.New(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("selecting language: %w", err)
	}

	reg := metrics.NewRegistry()
	recorder := metrics.NewRecorder(reg)

	// Open the registries, migrating 2.x data files first
	rs, upgraded, err := cfg.Storage.BuildRegistries(texts.WithRecorder(recorder))
	if err != nil {
		return nil, fmt.Errorf("creating registries: %w", err)
	}

	zones := world.NewZones()
	zones.OnDelete(func(ctx context.Context, zone string) {
		removed, err := rs.RemoveAllInZone(zone)
		if err != nil {
			slog.ErrorContext(ctx, "removing texts of deleted zone", logfields.Zone(zone), logfields.Error(err))
			return
		}
		if removed {
			slog.InfoContext(ctx, tr.Translate(lang.ZoneTextsDestroyed, zone), logfields.Zone(zone))
		}
	})

	ns, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	refresher := refresh.NewRefresher(rs, zones, messaging.NewDisplayPublisher(ns, recorder))
	err = metrics.RegisterGauge(reg, "shown_texts", "Floating texts currently displayed", func() float64 {
		return float64(refresher.Shown())
	})
	if err != nil {
		return nil, fmt.Errorf("registering shown texts gauge: %w", err)
	}

	// Setup the main loop
	d := driver.NewDriver([]driver.Ticker{refresher}, driver.WithTickLength(cfg.tickLength()))

	pool, err := worker.NewPool(cfg.Update.Workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	workers := service.WorkerList{
		"driver": d,
		"nats":   ns,
		"zones":  messaging.NewZoneSubscriber(ns, d.Post, zones),
		"pool":   pool,
	}

	startup := &startupWorker{}
	startup.add(func(ctx context.Context) error {
		slog.InfoContext(ctx, tr.Translate(lang.LanguageSelected, tr.Name(), tr.Tag().String()))
		if upgraded {
			slog.InfoContext(ctx, tr.Translate(lang.Upgraded), logfields.Path(cfg.Storage.DataDir))
		}
		if cfg.Commands.Enabled {
			slog.InfoContext(ctx, tr.Translate(lang.CommandsOn))
		} else {
			slog.InfoContext(ctx, tr.Translate(lang.CommandsOff))
		}
		return nil
	})

	if cfg.Update.enabled() {
		checker := update.NewChecker(Version, cfg.Update.BuildFetcher(), pool, d.Post,
			func(ctx context.Context, o update.Outcome) {
				recorder.ObserveCheck(o.Kind.String())
				update.Report(ctx, slog.Default(), tr, o)
			},
			update.WithActiveCheck(d.Running),
		)

		startup.add(func(ctx context.Context) error {
			err := checker.Check(ctx)
			if errors.Is(err, update.ErrCheckInFlight) {
				slog.InfoContext(ctx, tr.Translate(lang.UpdateInFlight))
			} else if err != nil {
				return fmt.Errorf("starting update check: %w", err)
			}

			if interval := cfg.Update.interval(); interval > 0 {
				return checker.Schedule(ctx, interval)
			}
			return nil
		})
	}

	if cfg.Commands.Enabled {
		handler := commands.NewHandler(rs, cfg.Operators)
		cm := listener.NewConnectionManager(handler, d.Do)

		listeners := make(service.WorkerList, len(cfg.Commands.Listeners))
		for i, l := range cfg.Commands.Listeners {
			w, err := l.BuildListener(cm)
			if err != nil {
				return nil, fmt.Errorf("creating listener %d: %w", i, err)
			}
			listeners[fmt.Sprintf("listener-%d", i)] = w
		}
		workers["listeners"] = &listeners
	}

	if cfg.Storage.Watch {
		workers["watcher"] = cfg.Storage.BuildWatcher(rs, d.Post)
	}

	if cfg.Metrics.Port != 0 {
		workers["metrics"] = metrics.NewServer(cfg.Metrics.Port, reg)
	}

	workers["startup"] = startup

	return workers, nil
}

// startupWorker runs one-off startup steps and then idles until shutdown.
type startupWorker struct {
	steps []func(context.Context) error
}

func (w *startupWorker) add(step func(context.Context) error) {
	w.steps = append(w.steps, step)
}

func (w *startupWorker) Start(ctx context.Context) error {
	for _, step := range w.steps {
		err := step(ctx)
		if err != nil {
			return err
		}
	}

	<-ctx.Done()
	return nil
}
