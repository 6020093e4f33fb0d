package store

import (
	"errors"
	"fmt"
)

// Common store errors.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists indicates a level for the slot already exists.
	// Callers treat this as a normal outcome, not a failure.
	ErrAlreadyExists = errors.New("level already exists")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store is closed")
)

// NotFoundError wraps ErrNotFound with slot details.
type NotFoundError struct {
	Cadence string
	Key     string
	Mode    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s level for %s (%s)", e.Cadence, e.Key, e.Mode)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is the already-exists outcome.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
