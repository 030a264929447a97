package primary

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput reports a request rejected by validation.
var ErrInvalidInput = errors.New("invalid input")

// PersistenceError wraps a storage failure on a write path.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
