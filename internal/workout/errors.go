package workout

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every NotFoundError. Missing rows and rows
	// owned by someone else both resolve to it.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned by start/complete when strict transitions are enabled.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// NotFoundError names the resource that did not resolve for the caller.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// Is makes errors.Is(err, ErrNotFound) hold for every NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError wraps a storage failure. The transaction it came from has
// been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UpstreamGenerationError means the exercise generator produced nothing usable.
type UpstreamGenerationError struct {
	Err error
}

func (e *UpstreamGenerationError) Error() string {
	if e.Err == nil {
		return "generator returned no exercises"
	}
	return "generating exercises: " + e.Err.Error()
}

func (e *UpstreamGenerationError) Unwrap() error { return e.Err }

// IsClientError reports whether err is caused by the caller rather than the system.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTransition)
}

// persistErr wraps unexpected store errors; domain errors pass through untouched.
func persistErr(op string, err error) error {
	if err == nil || IsClientError(err) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
