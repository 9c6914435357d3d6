package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a project or message id is unknown.
var ErrNotFound = errors.New("not found")

// ErrAlreadyProcessed is returned when a message has already completed the
// pipeline, typically because another worker got there first.
var ErrAlreadyProcessed = errors.New("message already processed")

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GenerationError wraps a failed call to the text-generation service.
// StatusCode is 0 when the request never got an HTTP response.
type GenerationError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s generation failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s generation failed: %s", e.Provider, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
