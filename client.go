package sphindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-oss/sphindex/internal/daemon"
	"github.com/meridian-oss/sphindex/internal/daemon/sphinx"
	"github.com/meridian-oss/sphindex/internal/db"
	dbRedis "github.com/meridian-oss/sphindex/internal/db/redis"
	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
	"github.com/meridian-oss/sphindex/internal/domain/index"
	"github.com/meridian-oss/sphindex/internal/logger"
	"github.com/meridian-oss/sphindex/internal/registry"
	documentrepo "github.com/meridian-oss/sphindex/internal/repository/document"
	documentuc "github.com/meridian-oss/sphindex/internal/usecase/document"
	healthuc "github.com/meridian-oss/sphindex/internal/usecase/health"
	searchuc "github.com/meridian-oss/sphindex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the sphindex SDK entry point. It owns the store and daemon
// connections and the class registry shared by every service handle.
type Client struct {
	store   db.Store
	daemon  daemon.Client
	classes *registry.Registry
	logger  *zap.Logger

	docSvc    *documentuc.Service
	searchSvc *searchuc.Service
	healthSvc *healthuc.Service
}

// New creates a sphindex Client and connects to the document store.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		daemonHost:       index.DefaultHost,
		daemonPort:       index.DefaultPort,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	store := cfg.store
	if store == nil {
		if len(cfg.addrs) == 0 {
			return nil, errors.New("sphindex: store address required (use WithRedis or WithValkey)")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Username:   cfg.username,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("sphindex: create store: %w", err)
		}

		ctx := context.Background()
		if err := s.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("sphindex: store not ready: %w", err)
		}
		store = s
	}

	daemonClient := cfg.daemonClient
	if daemonClient == nil {
		d, err := sphinx.NewClient(sphinx.Config{
			Host:    cfg.daemonHost,
			Port:    cfg.daemonPort,
			Timeout: cfg.daemonTimeout,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("sphindex: create daemon client: %w", err)
		}
		daemonClient = d
	}

	return wireClient(store, daemonClient, cfg), nil
}

func wireClient(store db.Store, daemonClient daemon.Client, cfg *clientConfig) *Client {
	classes := registry.New()
	docRepo := documentrepo.New(store)

	log := cfg.logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		store:     store,
		daemon:    daemonClient,
		classes:   classes,
		logger:    log,
		docSvc:    documentuc.New(docRepo, classes),
		searchSvc: searchuc.New(daemonClient, docRepo, classes),
		healthSvc: healthuc.New(store, daemonClient),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.daemon != nil {
		c.daemon.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks document store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health reports the reachability of the store and the daemon.
func (c *Client) Health(ctx context.Context) (storeOK, daemonOK bool) {
	status := c.healthSvc.Check(c.contextWithLogger(ctx))
	return status.StoreOK, status.DaemonOK
}

// RegisterClass registers a document class. The class set is closed after
// setup: register every class before serving traffic.
func (c *Client) RegisterClass(cfg IndexConfig) error {
	host := cfg.Host
	port := cfg.Port
	if host == "" {
		host = index.DefaultHost
	}
	if port == 0 {
		port = index.DefaultPort
	}

	idxCfg, err := index.New(cfg.Class, cfg.Fields, cfg.Attributes, cfg.IDBits, host, port)
	if err != nil {
		return fmt.Errorf("register class: %w", err)
	}
	if err := c.classes.Register(idxCfg); err != nil {
		return fmt.Errorf("register class: %w", err)
	}
	return nil
}

// Classes returns the registered class tags (unordered).
func (c *Client) Classes() []string {
	return c.classes.Tags()
}

// Documents returns the document service for a given class.
func (c *Client) Documents(class string) *DocumentService {
	return &DocumentService{class: class, client: c}
}

// Search returns the search service for a given class.
// An empty class searches across all registered classes.
func (c *Client) Search(class string) *SearchService {
	return &SearchService{class: class, client: c}
}

// contextWithLogger makes the SDK logger visible to internal services.
func (c *Client) contextWithLogger(ctx context.Context) context.Context {
	return logger.ContextWithLogger(ctx, c.logger)
}

func toPublicDocument(doc *domdoc.Document) Document {
	return Document{
		Identifier: doc.Identifier(),
		Class:      doc.Class(),
		Fields:     doc.Fields(),
	}
}
