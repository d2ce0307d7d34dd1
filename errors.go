//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/projgo/internal/bindings"
)

// Common errors
var (
	// ErrNotLoaded indicates the PROJ libraries are not loaded.
	ErrNotLoaded = bindings.ErrNotLoaded

	// ErrReleased indicates the native object behind a wrapper has already
	// been released.
	ErrReleased = errors.New("projgo: object has been released")

	// ErrShutdown indicates the library has been shut down.
	ErrShutdown = errors.New("projgo: library has been shut down")
)

// Error is a failure reported by the engine for a specific operation.
// Message carries the engine's own diagnostic text.
type Error struct {
	Op      string // Operation that failed
	Message string // Engine-reported message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("proj %s: %s", e.Op, e.Message)
}

// AllocError reports that the engine could not allocate an object.
// The engine signals this by returning a zero handle with no diagnostic.
type AllocError struct {
	Op string // Operation that failed
}

// Error implements the error interface.
func (e *AllocError) Error() string {
	return fmt.Sprintf("proj %s: cannot allocate PROJ object", e.Op)
}

// ReclamationError reports a failure while releasing an unreferenced
// native object. The reclamation worker logs these and keeps running.
type ReclamationError struct {
	Identity uintptr // Raw identity of the object being released
	Err      error   // Underlying failure
}

// Error implements the error interface.
func (e *ReclamationError) Error() string {
	return fmt.Sprintf("projgo: reclaiming object 0x%x: %v", e.Identity, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ReclamationError) Unwrap() error {
	return e.Err
}

// ConsistencyError reports a broken internal invariant of the shared
// object cache. Only produced by debug builds.
type ConsistencyError struct {
	Detail string
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	return "projgo: cache consistency: " + e.Detail
}

// newOpError converts an engine failure into the right error type.
// An empty diagnostic means the engine ran out of resources rather than
// rejecting the request.
func newOpError(op, message string) error {
	if message == "" {
		return &AllocError{Op: op}
	}
	return &Error{Op: op, Message: message}
}

// IsAllocation returns true if the error reports an engine allocation
// failure.
func IsAllocation(err error) bool {
	var allocErr *AllocError
	return errors.As(err, &allocErr)
}

// Message returns the engine diagnostic carried by an error, or "" if the
// error did not come from the engine.
func Message(err error) string {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Message
	}
	return ""
}
