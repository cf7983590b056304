package daemon

import "errors"

// Sentinel errors for daemon operations.
var (
	ErrUnavailable = errors.New("daemon: connection failed")
	ErrBadResponse = errors.New("daemon: malformed response")
)

// Op constants name daemon commands for error context.
const (
	OpConnect = "connect"
	OpSearch  = "search"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "daemon " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
