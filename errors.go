package sphindex

import "github.com/meridian-oss/sphindex/internal/domain"

// Sentinel errors returned by the SDK. Match with errors.Is.
var (
	// ErrClassNotRegistered is returned for operations on a class tag that
	// was never registered with the client.
	ErrClassNotRegistered = domain.ErrClassNotRegistered

	// ErrClassAlreadyRegistered is returned when registering a class tag twice.
	ErrClassAlreadyRegistered = domain.ErrClassAlreadyRegistered

	// ErrDocumentNotFound is returned when a document does not exist.
	ErrDocumentNotFound = domain.ErrDocumentNotFound

	// ErrSpaceExhausted is returned when no free identifier could be drawn
	// within the retry budget.
	ErrSpaceExhausted = domain.ErrSpaceExhausted

	// ErrDaemonUnavailable is returned when the search daemon cannot be
	// reached at all (search failures at the daemon level yield empty
	// results, not errors).
	ErrDaemonUnavailable = domain.ErrDaemonUnavailable
)
