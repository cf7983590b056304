package sphindex

import (
	"context"
	"fmt"
)

// TypedResults is the paginated outcome of a typed search.
type TypedResults[T any] struct {
	TotalFound int
	Page       int
	PageSize   int
	Warning    string
	Items      []T
}

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	idx *TypedIndex[T]

	text     string
	mode     MatchMode
	sortBy   string
	with     map[string]uint64
	selects  []string
	limit    int
	page     any
	pageSize any
}

// Query sets the full-text query.
func (b *SearchBuilder[T]) Query(text string) *SearchBuilder[T] {
	b.text = text
	return b
}

// Matching sets the match mode (default: extended).
func (b *SearchBuilder[T]) Matching(m MatchMode) *SearchBuilder[T] {
	b.mode = m
	return b
}

// Where adds an exact-value attribute filter. Multiple filters are ANDed.
func (b *SearchBuilder[T]) Where(attr string, value uint64) *SearchBuilder[T] {
	if b.with == nil {
		b.with = make(map[string]uint64)
	}
	b.with[attr] = value
	return b
}

// SortBy sets a sort expression, switching the daemon to extended sort mode.
func (b *SearchBuilder[T]) SortBy(expr string) *SearchBuilder[T] {
	b.sortBy = expr
	return b
}

// Select restricts document resolution to the named fields.
func (b *SearchBuilder[T]) Select(fields ...string) *SearchBuilder[T] {
	b.selects = fields
	return b
}

// Limit overrides the page-size-derived match limit.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.limit = n
	return b
}

// Page sets the 1-based page number. Accepts any scalar; invalid input
// falls back to page 1.
func (b *SearchBuilder[T]) Page(p any) *SearchBuilder[T] {
	b.page = p
	return b
}

// PageSize sets the page size. Accepts any scalar; invalid input falls back
// to the default of 20.
func (b *SearchBuilder[T]) PageSize(ps any) *SearchBuilder[T] {
	b.pageSize = ps
	return b
}

// Do executes the search and returns typed results in daemon rank order.
func (b *SearchBuilder[T]) Do(ctx context.Context) (TypedResults[T], error) {
	results, err := b.idx.client.Search(b.idx.class).Query(ctx, b.text, b.options())
	if err != nil {
		return TypedResults[T]{}, fmt.Errorf("search %q: %w", b.idx.class, err)
	}

	items := make([]T, 0, len(results.Documents))
	for _, doc := range results.Documents {
		item, ok := b.idx.meta.fromDocument(doc).(T)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return TypedResults[T]{
		TotalFound: results.TotalFound,
		Page:       results.Page,
		PageSize:   results.PageSize,
		Warning:    results.Warning,
		Items:      items,
	}, nil
}

// IDs executes the search in raw mode, returning ranked identifiers and the
// daemon's total match count without touching the store.
func (b *SearchBuilder[T]) IDs(ctx context.Context) ([]uint64, int, error) {
	ids, total, err := b.idx.client.Search(b.idx.class).QueryIDs(ctx, b.text, b.options())
	if err != nil {
		return nil, 0, fmt.Errorf("search %q: %w", b.idx.class, err)
	}
	return ids, total, nil
}

func (b *SearchBuilder[T]) options() *SearchOptions {
	return &SearchOptions{
		MatchMode: b.mode,
		Limit:     b.limit,
		SortBy:    b.sortBy,
		With:      b.with,
		Select:    b.selects,
		Page:      b.page,
		PageSize:  b.pageSize,
	}
}
