package sphindex

import (
	"context"
	"fmt"

	"github.com/meridian-oss/sphindex/internal/domain/search/mode"
	"github.com/meridian-oss/sphindex/internal/domain/search/query"
	"github.com/meridian-oss/sphindex/internal/domain/search/result"
)

// SearchService executes queries against a single class, or across all
// registered classes when the class tag is empty.
type SearchService struct {
	class  string
	client *Client
}

// Query executes a search and resolves matches into full documents in daemon
// rank order. Daemon-level failures (error or retry status) yield a valid
// empty result; only transport-level failures return an error.
func (s *SearchService) Query(
	ctx context.Context, text string, opts *SearchOptions,
) (SearchResults, error) {
	req, err := buildRequest(text, opts, false)
	if err != nil {
		return SearchResults{}, fmt.Errorf("query: %w", err)
	}

	results, err := s.client.searchSvc.Search(s.client.contextWithLogger(ctx), s.class, &req)
	if err != nil {
		return SearchResults{}, fmt.Errorf("query: %w", err)
	}
	return fromResults(&results), nil
}

// QueryIDs executes a search but skips document resolution, returning the
// ranked identifier list and the daemon's total match count.
func (s *SearchService) QueryIDs(
	ctx context.Context, text string, opts *SearchOptions,
) ([]uint64, int, error) {
	req, err := buildRequest(text, opts, true)
	if err != nil {
		return nil, 0, fmt.Errorf("query ids: %w", err)
	}

	ids, total, err := s.client.searchSvc.SearchIdentifiers(
		s.client.contextWithLogger(ctx), s.class, &req,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query ids: %w", err)
	}
	return ids, total, nil
}

func buildRequest(text string, opts *SearchOptions, raw bool) (query.Request, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	return query.New(text, query.Options{
		MatchMode:  mode.MatchMode(opts.MatchMode),
		Limit:      opts.Limit,
		MaxMatches: opts.MaxMatches,
		SortBy:     opts.SortBy,
		With:       opts.With,
		Raw:        raw,
		Select:     opts.Select,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
	})
}

func fromResults(res *result.Results) SearchResults {
	docs := make([]Document, 0, len(res.Documents()))
	for _, doc := range res.Documents() {
		docs = append(docs, toPublicDocument(&doc))
	}
	return SearchResults{
		TotalFound: res.TotalFound(),
		Page:       res.Page(),
		PageSize:   res.PageSize(),
		Warning:    res.Warning(),
		Documents:  docs,
	}
}
