package query

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/meridian-oss/sphindex/internal/domain/search/mode"
)

// Pagination defaults. Invalid or zero page/pageSize inputs normalize to
// these rather than failing the query.
const (
	DefaultPageSize = 20
	DefaultPage     = 1
	MaxQueryLength  = 4096
)

// Filter is a single exact-value attribute constraint. Multiple filters on
// one request are ANDed by the daemon.
type Filter struct {
	Attr  string
	Value uint64
}

// Options is the caller-facing option surface of the search entry point.
// Page and PageSize accept any scalar (int, float64, string); anything that
// does not parse as a positive integer falls back to the default.
// DefaultPageSize overrides the built-in page-size fallback (0 = built-in).
type Options struct {
	MatchMode       mode.MatchMode
	Limit           int
	MaxMatches      int
	SortBy          string
	With            map[string]uint64
	Raw             bool
	Select          []string
	Page            any
	PageSize        any
	DefaultPageSize int
}

// Request is a validated, normalized search query (immutable).
type Request struct {
	text       string
	matchMode  mode.MatchMode
	sortMode   mode.SortMode
	sortBy     string
	filters    []Filter
	limit      int
	maxMatches int
	offset     int
	page       int
	pageSize   int
	raw        bool
	selects    []string
}

// New validates and normalizes search parameters.
// Defaults: matchMode=extended, pageSize=20, page=1. limit defaults to
// pageSize unless explicitly supplied; offset is (page-1)*pageSize.
// A supplied sortBy forces extended sort mode.
func New(text string, opts Options) (Request, error) {
	if len(text) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}

	m := opts.MatchMode
	if m == "" {
		m = mode.Extended
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid match mode: %q", m)
	}

	defPageSize := opts.DefaultPageSize
	if defPageSize <= 0 {
		defPageSize = DefaultPageSize
	}
	pageSize := intValue(opts.PageSize, defPageSize)
	page := intValue(opts.Page, DefaultPage)

	limit := opts.Limit
	if limit <= 0 {
		limit = pageSize
	}

	sortMode := mode.SortRelevance
	if opts.SortBy != "" {
		sortMode = mode.SortExtended
	}

	return Request{
		text:       text,
		matchMode:  m,
		sortMode:   sortMode,
		sortBy:     opts.SortBy,
		filters:    filtersFromMap(opts.With),
		limit:      limit,
		maxMatches: opts.MaxMatches,
		offset:     (page - 1) * pageSize,
		page:       page,
		pageSize:   pageSize,
		raw:        opts.Raw,
		selects:    append([]string(nil), opts.Select...),
	}, nil
}

// Text returns the raw query text (class scoping is applied by the builder).
func (r *Request) Text() string { return r.text }

// MatchMode returns the query-syntax interpretation mode.
func (r *Request) MatchMode() mode.MatchMode { return r.matchMode }

// SortMode returns the daemon sort mode.
func (r *Request) SortMode() mode.SortMode { return r.sortMode }

// SortBy returns the sort expression ("" for daemon default ranking).
func (r *Request) SortBy() string { return r.sortBy }

// Filters returns the exact-value attribute constraints.
func (r *Request) Filters() []Filter { return r.filters }

// Limit returns the number of matches requested from the daemon.
func (r *Request) Limit() int { return r.limit }

// MaxMatches returns the daemon-side match ceiling (0 = daemon default).
func (r *Request) MaxMatches() int { return r.maxMatches }

// Offset returns the daemon-side result offset.
func (r *Request) Offset() int { return r.offset }

// Page returns the normalized page number (1-based).
func (r *Request) Page() int { return r.page }

// PageSize returns the normalized page size.
func (r *Request) PageSize() int { return r.pageSize }

// Raw reports whether document resolution should be skipped.
func (r *Request) Raw() bool { return r.raw }

// Select returns the field projection for document resolution (nil = all).
func (r *Request) Select() []string { return r.selects }

// filtersFromMap flattens the with-map into a deterministic filter list.
func filtersFromMap(with map[string]uint64) []Filter {
	if len(with) == 0 {
		return nil
	}
	attrs := make([]string, 0, len(with))
	for attr := range with {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	filters := make([]Filter, len(attrs))
	for i, attr := range attrs {
		filters[i] = Filter{Attr: attr, Value: with[attr]}
	}
	return filters
}

// intValue coerces a loosely-typed pagination input into a positive int.
// Zero, negative, non-numeric, and absent inputs all fall back to def.
func intValue(v any, def int) int {
	n := 0
	switch t := v.(type) {
	case nil:
	case int:
		n = t
	case int32:
		n = int(t)
	case int64:
		n = int(t)
	case uint:
		n = int(t)
	case float64:
		if t == float64(int(t)) {
			n = int(t)
		}
	case float32:
		if t == float32(int(t)) {
			n = int(t)
		}
	case string:
		parsed, err := strconv.Atoi(t)
		if err != nil {
			return def
		}
		n = parsed
	default:
		return def
	}
	if n <= 0 {
		return def
	}
	return n
}
