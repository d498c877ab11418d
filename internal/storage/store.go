package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Storer is a keyed document held in memory and written back on Save.
type Storer[T any] interface {
	Get(string) (T, bool)
	Set(string, T)
	Remove(string) bool
	GetAll() map[string]T
	Save() error
}

// DocumentStore binds a JSON object of key -> T to a single file.
type DocumentStore[T any] struct {
	path    string
	records map[string]T
	digest  [sha256.Size]byte

	mu sync.RWMutex
}

// OpenDocumentStore loads the document at path. A missing file is created from
// template, or from an empty object when template is nil.
func OpenDocumentStore[T any](path string, template []byte) (*DocumentStore[T], error) {
	s := &DocumentStore[T]{
		path:    path,
		records: map[string]T{},
	}

	err := s.materialize(template)
	if err != nil {
		return nil, err
	}

	_, err = s.Reload()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *DocumentStore[T]) materialize(template []byte) error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(template)) == 0 {
		template = []byte("{}\n")
	}

	err = os.MkdirAll(filepath.Dir(s.path), 0755)
	if err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("creating document from template", "path", s.path)
	return atomicWrite(s.path, template, 0644)
}

// Path returns the file the store is bound to.
func (s *DocumentStore[T]) Path() string {
	return s.path
}

// Reload re-reads the file. It reports false without touching the cache when
// the file content matches what was last loaded or saved.
func (s *DocumentStore[T]) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", s.path, err)
	}

	digest := sha256.Sum256(data)
	if digest == s.digest {
		return false, nil
	}

	// An empty document may also have been written as an empty array.
	records := map[string]T{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("[]")) {
		err = json.Unmarshal(trimmed, &records)
		if err != nil {
			return false, fmt.Errorf("unmarshalling %s: %w", filepath.Base(s.path), err)
		}
	}

	s.records = records
	s.digest = digest
	return true, nil
}

func (s *DocumentStore[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[key]
	return val, ok
}

// GetOr returns the value at key or def when the key is absent.
func (s *DocumentStore[T]) GetOr(key string, def T) T {
	val, ok := s.Get(key)
	if !ok {
		return def
	}
	return val
}

// Set updates the cached value. Call Save to persist it.
func (s *DocumentStore[T]) Set(key string, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = val
}

// Remove deletes key from the cache and reports whether it existed.
func (s *DocumentStore[T]) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.records[key]
	delete(s.records, key)
	return ok
}

func (s *DocumentStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.records)
}

// Keys returns the document keys in sorted order.
func (s *DocumentStore[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.records))
}

// Save writes the whole document to disk.
func (s *DocumentStore[T]) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jsonData, err := json.MarshalIndent(s.records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}
	jsonData = append(jsonData, '\n')

	err = atomicWrite(s.path, jsonData, 0644)
	if err != nil {
		return err
	}

	s.digest = sha256.Sum256(jsonData)
	return nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
