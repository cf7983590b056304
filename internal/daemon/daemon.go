package daemon

import (
	"context"

	"github.com/meridian-oss/sphindex/internal/domain/search/mode"
)

// Client is the search-daemon contract required by the reconciliation layer:
// query in, ranked match list with attributes out. Transport failures are
// returned unchanged; retry policy belongs to the implementation.
type Client interface {
	Query(ctx context.Context, req *Request) (*Result, error)
	Ping(ctx context.Context) error
	Close()
}

// Filter is a single exact-value attribute constraint.
type Filter struct {
	Attr   string
	Values []uint64
}

// Request is the daemon-ready form of one search query.
type Request struct {
	// Index is the daemon index list ("*" for all indexes).
	Index      string
	Query      string
	MatchMode  mode.MatchMode
	SortMode   mode.SortMode
	SortBy     string
	Offset     int
	Limit      int
	MaxMatches int
	Filters    []Filter
}

// Match is one daemon-returned hit, in daemon-assigned rank order.
type Match struct {
	DocID  uint64
	Weight int
	Attrs  map[string]uint64
}

// Result is the raw outcome of one daemon query.
type Result struct {
	Status     int
	Warning    string
	Total      int
	TotalFound int
	TimeMsec   int
	Matches    []Match
}
