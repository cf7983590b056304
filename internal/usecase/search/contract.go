package search

import (
	"context"

	"github.com/meridian-oss/sphindex/internal/daemon"
	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
	"github.com/meridian-oss/sphindex/internal/domain/index"
)

// Daemon executes search queries against the full-text daemon.
type Daemon interface {
	Query(ctx context.Context, req *daemon.Request) (*daemon.Result, error)
}

// DocumentReader batch-fetches documents from the store for resolution.
// Returned documents follow the input identifier order; missing identifiers
// are omitted.
type DocumentReader interface {
	FindByIdentifiers(
		ctx context.Context, class string, ids []uint64, selectFields []string,
	) ([]domdoc.Document, error)
}

// ClassRegistry resolves class configurations and decodes the per-match
// class attribute back to a class tag.
type ClassRegistry interface {
	Config(tag string) (index.Config, error)
	DecodeClass(code uint32) (string, error)
}
