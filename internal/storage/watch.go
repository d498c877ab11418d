package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pixil98/go-texter/internal/logfields"
)

// PostFunc hands a closure to the goroutine that owns the watched stores.
type PostFunc func(context.Context, func(context.Context)) error

// Watcher reports external edits to data files. Change handlers are never run
// on the watcher goroutine; they are handed to post instead.
type Watcher struct {
	dir      string
	post     PostFunc
	handlers map[string]func(context.Context)
}

func NewWatcher(dir string, post PostFunc) *Watcher {
	return &Watcher{
		dir:      filepath.Clean(dir),
		post:     post,
		handlers: map[string]func(context.Context){},
	}
}

// Watch registers fn for changes to the named file inside the watched directory.
func (w *Watcher) Watch(name string, fn func(context.Context)) {
	w.handlers[filepath.Join(w.dir, name)] = fn
}

func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	err = fw.Add(w.dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	slog.InfoContext(ctx, "watching data directory", logfields.Path(w.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "file watcher", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	fn, ok := w.handlers[filepath.Clean(ev.Name)]
	if !ok {
		return
	}

	err := w.post(ctx, fn)
	if err != nil {
		slog.WarnContext(ctx, "dispatching file change", logfields.Path(ev.Name), logfields.Error(err))
	}
}
