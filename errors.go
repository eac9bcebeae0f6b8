package ssr

import (
	"errors"
	"fmt"
)

var (
	// ErrModeNotSet is returned when a Dispatcher is used without a mode.
	// It is a startup ordering bug in the caller.
	ErrModeNotSet = errors.New("ssr: mode not initialized")

	// ErrBundleNotFound is matched by every MissingBundleError.
	ErrBundleNotFound = errors.New("ssr: server bundle not found")

	// ErrClosed is returned by renders after Close.
	ErrClosed = errors.New("ssr: dispatcher closed")
)

// MissingBundleError reports that the production bundle could not be read
// when a worker initialised. The worker keeps returning it; there is no retry.
type MissingBundleError struct {
	Path string
	Err  error
}

func (e *MissingBundleError) Error() string {
	return fmt.Sprintf("server bundle not found at %s: %v", e.Path, e.Err)
}

func (e *MissingBundleError) Unwrap() []error {
	return []error{ErrBundleNotFound, e.Err}
}

// EngineError wraps a failure of the JavaScript engine. Op is "compile" or
// "render".
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ssr %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err leaves the production renderer unable to
// serve: the bundle was missing or failed to compile when a worker started.
func IsFatal(err error) bool {
	var engErr *EngineError
	return errors.Is(err, ErrBundleNotFound) ||
		errors.Is(err, ErrModeNotSet) ||
		(errors.As(err, &engErr) && engErr.Op == "compile")
}
