package world

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// DeleteHandler is called after a zone has been deleted from the world.
type DeleteHandler func(ctx context.Context, zone string)

// Zones tracks which zones of the world server are loaded. It mirrors the
// notifications the world server sends and owns no zone data itself. Zones is
// driven from the main loop and is not safe for concurrent use.
type Zones struct {
	loaded   map[string]struct{}
	onDelete []DeleteHandler
}

func NewZones(initial ...string) *Zones {
	z := &Zones{loaded: map[string]struct{}{}}
	for _, name := range initial {
		z.loaded[name] = struct{}{}
	}
	return z
}

// OnDelete registers fn to run whenever a zone is deleted.
func (z *Zones) OnDelete(fn DeleteHandler) {
	z.onDelete = append(z.onDelete, fn)
}

func (z *Zones) Load(ctx context.Context, zone string) {
	if _, ok := z.loaded[zone]; ok {
		return
	}
	z.loaded[zone] = struct{}{}
	slog.DebugContext(ctx, "zone loaded", "zone", zone)
}

// Unload marks zone unavailable. Texts in it stay persisted.
func (z *Zones) Unload(ctx context.Context, zone string) {
	if _, ok := z.loaded[zone]; !ok {
		return
	}
	delete(z.loaded, zone)
	slog.DebugContext(ctx, "zone unloaded", "zone", zone)
}

// Delete unloads zone and notifies delete handlers.
func (z *Zones) Delete(ctx context.Context, zone string) {
	delete(z.loaded, zone)
	slog.InfoContext(ctx, "zone deleted", "zone", zone)

	for _, fn := range z.onDelete {
		fn(ctx, zone)
	}
}

func (z *Zones) IsLoaded(zone string) bool {
	_, ok := z.loaded[zone]
	return ok
}

// Loaded returns the loaded zone names in sorted order.
func (z *Zones) Loaded() []string {
	return slices.Sorted(maps.Keys(z.loaded))
}
