package health

import "context"

// Pinger checks one collaborator's connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status reports the reachability of both collaborators.
type Status struct {
	StoreOK  bool
	DaemonOK bool
}

// Healthy reports whether every collaborator responded.
func (s Status) Healthy() bool { return s.StoreOK && s.DaemonOK }

// Service checks store and daemon readiness.
type Service struct {
	store  Pinger
	daemon Pinger
}

// New creates a health service.
func New(store, daemon Pinger) *Service {
	return &Service{store: store, daemon: daemon}
}

// Check pings the store and the daemon.
func (s *Service) Check(ctx context.Context) Status {
	return Status{
		StoreOK:  s.store.Ping(ctx) == nil,
		DaemonOK: s.daemon.Ping(ctx) == nil,
	}
}
