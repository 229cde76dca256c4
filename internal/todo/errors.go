package todo

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("invalid todo")
	ErrNotFound    = errors.New("todo not found")
	ErrPersistence = errors.New("todo persistence failed")
)

// ValidationError is raised before anything reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an update or lookup of an id that no longer exists.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("todo %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError wraps any failure of the underlying storage.
type PersistenceError struct {
	Op         string
	Constraint bool
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.Constraint {
		return fmt.Sprintf("%s: constraint violation: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
