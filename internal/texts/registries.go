package texts

import (
	"errors"
	"fmt"
	"path/filepath"
)

const (
	RemovableName   = "removable"
	UnremovableName = "unremovable"

	RemovableFile   = "ft.json"
	UnremovableFile = "uft.json"
)

// Registries pairs the removable and unremovable registries. A (zone, name)
// key lives in at most one of them.
type Registries struct {
	Removable   *Registry
	Unremovable *Registry
}

// OpenRegistries opens both registries inside dir.
func OpenRegistries(dir string, opts ...RegistryOpt) (*Registries, error) {
	removable, err := OpenRegistry(RemovableName, filepath.Join(dir, RemovableFile), true, opts...)
	if err != nil {
		return nil, err
	}

	unremovable, err := OpenRegistry(UnremovableName, filepath.Join(dir, UnremovableFile), false, opts...)
	if err != nil {
		return nil, err
	}

	return &Registries{Removable: removable, Unremovable: unremovable}, nil
}

// For returns the registry that owns texts of the given kind.
func (rs *Registries) For(removable bool) *Registry {
	if removable {
		return rs.Removable
	}
	return rs.Unremovable
}

// Lookup finds a text in either registry.
func (rs *Registries) Lookup(zone, name string) (FloatingText, bool) {
	if ft, ok := rs.Removable.Get(zone, name); ok {
		return ft, true
	}
	return rs.Unremovable.Get(zone, name)
}

// Add upserts ft into the registry matching its kind. It fails with
// ErrOwnedByOther when the other registry already holds the key.
func (rs *Registries) Add(ft FloatingText) error {
	other := rs.For(!ft.Removable)
	if _, ok := other.Get(ft.Zone, ft.Name); ok {
		return fmt.Errorf("%s: %w", ft.Key(), ErrOwnedByOther)
	}

	return rs.For(ft.Removable).Upsert(ft)
}

// RemoveAllInZone clears zone from both registries and reports whether any
// text was removed. Both registries are attempted even if one fails.
func (rs *Registries) RemoveAllInZone(zone string) (bool, error) {
	a, errA := rs.Removable.RemoveAllInZone(zone)
	b, errB := rs.Unremovable.RemoveAllInZone(zone)
	return a || b, errors.Join(errA, errB)
}

// ListAll returns unremovable texts followed by removable ones.
func (rs *Registries) ListAll() []FloatingText {
	return append(rs.Unremovable.ListAll(), rs.Removable.ListAll()...)
}

// Reload re-reads both files and reports whether either changed.
func (rs *Registries) Reload() (bool, error) {
	a, errA := rs.Removable.Reload()
	b, errB := rs.Unremovable.Reload()
	return a || b, errors.Join(errA, errB)
}
