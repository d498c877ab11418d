package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-texter/internal/logfields"
)

const (
	ZoneLoadedSubject   = "world.zone.loaded"
	ZoneUnloadedSubject = "world.zone.unloaded"
	ZoneDeletedSubject  = "world.zone.deleted"
)

// Subscriber is the subscribe half of the bus.
type Subscriber interface {
	Ready() <-chan struct{}
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// ZoneWorld receives zone lifecycle changes. It is only called on the main
// loop.
type ZoneWorld interface {
	Load(ctx context.Context, zone string)
	Unload(ctx context.Context, zone string)
	Delete(ctx context.Context, zone string)
}

// PostFunc hands a closure to the main loop.
type PostFunc func(context.Context, func(context.Context)) error

// ZoneSubscriber relays zone notifications from the world server onto the
// main loop. Each message body is the zone name.
type ZoneSubscriber struct {
	sub   Subscriber
	post  PostFunc
	world ZoneWorld
}

func NewZoneSubscriber(sub Subscriber, post PostFunc, world ZoneWorld) *ZoneSubscriber {
	return &ZoneSubscriber{sub: sub, post: post, world: world}
}

func (z *ZoneSubscriber) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-z.sub.Ready():
	}

	handlers := map[string]func(context.Context, string){
		ZoneLoadedSubject:   z.world.Load,
		ZoneUnloadedSubject: z.world.Unload,
		ZoneDeletedSubject:  z.world.Delete,
	}

	var unsubs []func()
	defer func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}()

	for subject, apply := range handlers {
		unsub, err := z.sub.Subscribe(subject, z.relay(ctx, subject, apply))
		if err != nil {
			return fmt.Errorf("subscribing to zone notifications: %w", err)
		}
		unsubs = append(unsubs, unsub)
	}

	slog.InfoContext(ctx, "listening for zone notifications")
	<-ctx.Done()
	return nil
}

func (z *ZoneSubscriber) relay(ctx context.Context, subject string, apply func(context.Context, string)) func([]byte) {
	return func(data []byte) {
		zone := strings.TrimSpace(string(data))
		if zone == "" {
			slog.WarnContext(ctx, "ignoring zone notification without a zone", logfields.Subject(subject))
			return
		}

		err := z.post(ctx, func(ctx context.Context) {
			apply(ctx, zone)
		})
		if err != nil {
			slog.WarnContext(ctx, "dropping zone notification", logfields.Subject(subject), logfields.Zone(zone), logfields.Error(err))
		}
	}
}
