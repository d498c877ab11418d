package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pixil98/go-texter/internal/logfields"
	"github.com/pixil98/go-texter/internal/texts"
)

// Placement is the display's view of a shown text.
type Placement struct {
	ID    string  `json:"id"`
	Zone  string  `json:"zone"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Title string  `json:"title"`
	Body  string  `json:"body"`
}

// ErrDisplayUnavailable is returned by a Display that cannot take calls yet.
// The tick stops and the remaining work is retried on the next one.
var ErrDisplayUnavailable = errors.New("display unavailable")

// Display shows and hides texts in the world. Calls must not block on slow
// I/O since they run on the main loop.
type Display interface {
	Show(context.Context, Placement) error
	Hide(context.Context, Placement) error
}

type Source interface {
	ListAll() []texts.FloatingText
}

type ZoneState interface {
	IsLoaded(zone string) bool
}

// Refresher converges the display with the registries once per tick: texts in
// loaded zones are shown, changed texts are shown again under the same id and
// texts that are gone or whose zone unloaded are hidden. A tick with nothing
// to change makes no display calls.
type Refresher struct {
	source  Source
	zones   ZoneState
	display Display

	shown map[texts.Key]Placement
	count atomic.Int64
}

func NewRefresher(source Source, zones ZoneState, display Display) *Refresher {
	return &Refresher{
		source:  source,
		zones:   zones,
		display: display,
		shown:   map[texts.Key]Placement{},
	}
}

func (r *Refresher) Tick(ctx context.Context) error {
	all := r.source.ListAll()

	want := make(map[texts.Key]texts.FloatingText, len(all))
	for _, ft := range all {
		if r.zones.IsLoaded(ft.Zone) {
			want[ft.Key()] = ft
		}
	}

	for key, p := range r.shown {
		if _, ok := want[key]; ok {
			continue
		}
		err := r.display.Hide(ctx, p)
		if errors.Is(err, ErrDisplayUnavailable) {
			return r.deferTick(ctx, err)
		}
		if err != nil {
			slog.WarnContext(ctx, "hiding floating text", "text", key.String(), logfields.Error(err))
			continue
		}
		delete(r.shown, key)
	}

	for _, ft := range all {
		key := ft.Key()
		if _, ok := want[key]; !ok {
			continue
		}

		prev, ok := r.shown[key]
		next := placementOf(ft, prev.ID)
		if ok && prev == next {
			continue
		}
		if next.ID == "" {
			next.ID = uuid.NewString()
		}

		err := r.display.Show(ctx, next)
		if errors.Is(err, ErrDisplayUnavailable) {
			return r.deferTick(ctx, err)
		}
		if err != nil {
			slog.WarnContext(ctx, "showing floating text", "text", key.String(), logfields.Error(err))
			continue
		}
		r.shown[key] = next
	}

	r.count.Store(int64(len(r.shown)))
	return nil
}

func (r *Refresher) deferTick(ctx context.Context, err error) error {
	slog.DebugContext(ctx, "display not ready, deferring refresh", logfields.Error(err))
	r.count.Store(int64(len(r.shown)))
	return nil
}

// Shown returns how many texts were displayed after the last tick. It is safe
// to call from any goroutine.
func (r *Refresher) Shown() int {
	return int(r.count.Load())
}

func placementOf(ft texts.FloatingText, id string) Placement {
	return Placement{
		ID:    id,
		Zone:  ft.Zone,
		Name:  ft.Name,
		X:     ft.Position.X,
		Y:     ft.Position.Y,
		Z:     ft.Position.Z,
		Title: ft.Title,
		Body:  ft.Body,
	}
}
