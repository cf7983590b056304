package search

import (
	"fmt"

	"github.com/meridian-oss/sphindex/internal/daemon"
	"github.com/meridian-oss/sphindex/internal/domain/index"
	"github.com/meridian-oss/sphindex/internal/domain/search/query"
	"github.com/meridian-oss/sphindex/internal/registry"
)

// buildDaemonRequest turns a normalized query into the daemon-ready form.
//
// With a class scope, a scoping token is appended to the query text
// (`@class_tag <Tag>` in the daemon's extended syntax) so results are
// pre-filtered server-side, and the query targets the class's own index.
// Without a scope the text passes through unchanged and every index is
// searched.
func buildDaemonRequest(req *query.Request, scope *index.Config) *daemon.Request {
	text := req.Text()
	indexName := "*"
	if scope != nil {
		text = fmt.Sprintf("%s @%s %s", text, registry.ClassField, scope.Class())
		indexName = scope.IndexName()
	}

	var filters []daemon.Filter
	for _, f := range req.Filters() {
		filters = append(filters, daemon.Filter{
			Attr:   f.Attr,
			Values: []uint64{f.Value},
		})
	}

	return &daemon.Request{
		Index:      indexName,
		Query:      text,
		MatchMode:  req.MatchMode(),
		SortMode:   req.SortMode(),
		SortBy:     req.SortBy(),
		Offset:     req.Offset(),
		Limit:      req.Limit(),
		MaxMatches: req.MaxMatches(),
		Filters:    filters,
	}
}
