package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrClassNotRegistered signals a class tag unknown to the registry.
	ErrClassNotRegistered = errors.New("class not registered")
	// ErrClassAlreadyRegistered signals a duplicate class registration.
	ErrClassAlreadyRegistered = errors.New("class already registered")
	// ErrUnknownClass signals a class attribute value that maps to no registered class.
	ErrUnknownClass = errors.New("unknown class attribute")
	// ErrSpaceExhausted signals that no free identifier was found within the retry budget.
	ErrSpaceExhausted = errors.New("identifier space exhausted")
	// ErrDaemonUnavailable signals that the search daemon cannot be reached.
	ErrDaemonUnavailable = errors.New("search daemon unavailable")
	// ErrInvalidConfig signals an invalid index configuration.
	ErrInvalidConfig = errors.New("invalid index configuration")
)

// SpaceExhaustedError wraps ErrSpaceExhausted with the retry budget that was spent.
type SpaceExhaustedError struct {
	Class    string
	Attempts int
	Space    uint64
}

func (e *SpaceExhaustedError) Error() string {
	return fmt.Sprintf(
		"%s: class %s: no free identifier after %d attempts (space size %d)",
		ErrSpaceExhausted.Error(), e.Class, e.Attempts, e.Space,
	)
}

func (e *SpaceExhaustedError) Unwrap() error { return ErrSpaceExhausted }

// NewSpaceExhausted creates a space exhaustion error for a class.
func NewSpaceExhausted(class string, attempts int, space uint64) error {
	return &SpaceExhaustedError{Class: class, Attempts: attempts, Space: space}
}
