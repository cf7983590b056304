package db

import (
	"context"
	"time"
)

// Store is the document-store facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	JSONStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides schemaless JSON document operations.
type JSONStore interface {
	// JSONSet stores a document unconditionally.
	JSONSet(ctx context.Context, key, path string, data []byte) error
	// JSONSetNX stores a document only if the key does not exist yet.
	// Returns false when the key was already taken. This is the final
	// arbiter for concurrent identifier claims.
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	// JSONGetMulti fetches several documents in one pipelined round-trip.
	// Missing keys yield nil entries in the same positions.
	JSONGetMulti(ctx context.Context, keys []string, paths ...string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Scan returns all keys matching a glob pattern.
	Scan(ctx context.Context, pattern string) ([]string, error)
}
