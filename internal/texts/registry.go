package texts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/pixil98/go-texter/internal/storage"
)

// zoneTexts maps text name -> record within one zone.
type zoneTexts map[string]record

// UnmarshalJSON reads an empty array as an empty zone. 2.x installs wrote a
// zone that lost its last text that way.
func (z *zoneTexts) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("[]")) {
		*z = zoneTexts{}
		return nil
	}

	var m map[string]record
	err := json.Unmarshal(b, &m)
	if err != nil {
		return err
	}
	*z = m
	return nil
}

type documentStore interface {
	storage.Storer[zoneTexts]
	Keys() []string
	Reload() (bool, error)
}

// Recorder observes registry saves.
type Recorder interface {
	ObserveSave(registry string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSave(string, error) {}

// Registry owns the persisted floating texts of one kind, keyed by zone then
// name. Every mutation writes the whole document before returning; a failed
// write restores the previous in-memory state. A Registry is not safe for
// concurrent mutation and is meant to be driven from the main loop.
type Registry struct {
	name      string
	removable bool
	store     documentStore
	recorder  Recorder
}

type RegistryOpt func(*Registry)

// WithRecorder reports save results to rec.
func WithRecorder(rec Recorder) RegistryOpt {
	return func(r *Registry) {
		r.recorder = rec
	}
}

func NewRegistry(name string, removable bool, store documentStore, opts ...RegistryOpt) *Registry {
	r := &Registry{
		name:      name,
		removable: removable,
		store:     store,
		recorder:  nopRecorder{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// OpenRegistry opens the document at path, creating it from the bundled
// template when it does not exist yet.
func OpenRegistry(name, path string, removable bool, opts ...RegistryOpt) (*Registry, error) {
	store, err := storage.OpenDocumentStore[zoneTexts](path, storage.Template(filepath.Base(path)))
	if err != nil {
		return nil, &PersistenceError{Registry: name, Op: "open", Err: err}
	}

	return NewRegistry(name, removable, store, opts...), nil
}

func (r *Registry) Name() string {
	return r.name
}

func (r *Registry) Removable() bool {
	return r.removable
}

// Upsert writes ft at its (zone, name) key, replacing any existing text.
func (r *Registry) Upsert(ft FloatingText) error {
	err := ft.Validate()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidText, err)
	}

	prev, existed := r.store.Get(ft.Zone)

	next := maps.Clone(prev)
	if next == nil {
		next = zoneTexts{}
	}
	next[ft.Name] = newRecord(ft)
	r.store.Set(ft.Zone, next)

	err = r.save("upsert")
	if err != nil {
		r.restore(ft.Zone, prev, existed)
		return err
	}

	return nil
}

// Remove deletes one text. It reports false when the zone or name is unknown.
func (r *Registry) Remove(zone, name string) (bool, error) {
	prev, ok := r.store.Get(zone)
	if !ok {
		return false, nil
	}
	if _, ok := prev[name]; !ok {
		return false, nil
	}

	next := maps.Clone(prev)
	delete(next, name)
	if len(next) == 0 {
		r.store.Remove(zone)
	} else {
		r.store.Set(zone, next)
	}

	err := r.save("remove")
	if err != nil {
		r.restore(zone, prev, true)
		return false, err
	}

	return true, nil
}

// RemoveAllInZone deletes every text in zone. It reports false when the zone
// had no texts.
func (r *Registry) RemoveAllInZone(zone string) (bool, error) {
	prev, ok := r.store.Get(zone)
	if !ok {
		return false, nil
	}
	if len(prev) == 0 {
		r.store.Remove(zone)
		return false, nil
	}

	r.store.Remove(zone)

	err := r.save("remove zone")
	if err != nil {
		r.restore(zone, prev, true)
		return false, err
	}

	return true, nil
}

func (r *Registry) Get(zone, name string) (FloatingText, bool) {
	texts, ok := r.store.Get(zone)
	if !ok {
		return FloatingText{}, false
	}

	rec, ok := texts[name]
	if !ok {
		return FloatingText{}, false
	}

	return rec.text(zone, name, r.removable), true
}

// ListZone returns the texts of one zone ordered by name.
func (r *Registry) ListZone(zone string) []FloatingText {
	texts, ok := r.store.Get(zone)
	if !ok {
		return nil
	}

	out := make([]FloatingText, 0, len(texts))
	for _, name := range slices.Sorted(maps.Keys(texts)) {
		out = append(out, texts[name].text(zone, name, r.removable))
	}
	return out
}

// ListAll returns every text ordered by zone then name. Callers should not
// depend on the ordering.
func (r *Registry) ListAll() []FloatingText {
	var out []FloatingText
	for _, zone := range r.store.Keys() {
		out = append(out, r.ListZone(zone)...)
	}
	return out
}

func (r *Registry) Len() int {
	n := 0
	for _, texts := range r.store.GetAll() {
		n += len(texts)
	}
	return n
}

// Reload re-reads the backing file and reports whether its content changed.
func (r *Registry) Reload() (bool, error) {
	changed, err := r.store.Reload()
	if err != nil {
		return false, &PersistenceError{Registry: r.name, Op: "reload", Err: err}
	}
	return changed, nil
}

func (r *Registry) save(op string) error {
	err := r.store.Save()
	r.recorder.ObserveSave(r.name, err)
	if err != nil {
		return &PersistenceError{Registry: r.name, Op: op, Err: err}
	}
	return nil
}

func (r *Registry) restore(zone string, prev zoneTexts, existed bool) {
	if existed {
		r.store.Set(zone, prev)
	} else {
		r.store.Remove(zone)
	}
}
