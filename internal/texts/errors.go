package texts

import (
	"errors"
	"fmt"
)

var (
	ErrPersistence  = errors.New("persistence failure")
	ErrInvalidText  = errors.New("invalid floating text")
	ErrOwnedByOther = errors.New("text belongs to the other registry")
)

// PersistenceError reports that a registry could not write or read its file.
// The in-memory state has been rolled back when it is returned from a mutation.
type PersistenceError struct {
	Registry string
	Op       string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s registry: %s: %v", e.Registry, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
