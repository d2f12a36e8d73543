package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDispatchInput marks a malformed dispatch request. Fatal to
	// that call; never enqueued for retry.
	ErrInvalidDispatchInput = errors.New("dispatch: invalid input")

	// ErrNoDriverAvailable means scoring ran but no candidate qualified.
	// Recoverable through the retry queue.
	ErrNoDriverAvailable = errors.New("dispatch: no driver available")

	// ErrRetryExhausted is terminal and only surfaced through the
	// notification sink, never returned to the original caller.
	ErrRetryExhausted = errors.New("dispatch: retry attempts exhausted")
)

// ProviderError wraps a failed driver or order lookup. Recoverable through
// the retry queue, capped at the configured attempt ceiling.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("dispatch: provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
