package sphindex

import (
	"time"

	"go.uber.org/zap"

	"github.com/meridian-oss/sphindex/internal/daemon"
	"github.com/meridian-oss/sphindex/internal/db"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs      []string
	username   string
	password   string
	standalone bool

	daemonHost    string
	daemonPort    int
	daemonTimeout time.Duration

	// Injected collaborators, mainly for tests.
	store        db.Store
	daemonClient daemon.Client

	logger           *zap.Logger
	readinessTimeout time.Duration
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithValkey configures the client to connect to a Valkey instance.
// Valkey speaks the same protocol; only plain key and JSON commands are used.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithUsername sets the store ACL username.
func WithUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithStandalone disables cluster topology discovery.
// Use for standalone instances not managed by a cluster operator.
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithDaemon sets the search daemon endpoint. Defaults to localhost:9312.
func WithDaemon(host string, port int) Option {
	return optionFunc(func(c *clientConfig) {
		c.daemonHost = host
		c.daemonPort = port
	})
}

// WithDaemonTimeout sets the per-request daemon timeout. Default: 5s.
func WithDaemonTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.daemonTimeout = d
	})
}

// WithStore injects a pre-built document store, skipping connection setup.
func WithStore(s db.Store) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = s
	})
}

// WithDaemonClient injects a pre-built daemon client, skipping connection setup.
func WithDaemonClient(d daemon.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.daemonClient = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithReadinessTimeout bounds the initial store readiness wait. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}
