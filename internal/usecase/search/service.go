package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-oss/sphindex/internal/daemon"
	"github.com/meridian-oss/sphindex/internal/domain"
	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
	"github.com/meridian-oss/sphindex/internal/domain/index"
	"github.com/meridian-oss/sphindex/internal/domain/search/query"
	"github.com/meridian-oss/sphindex/internal/domain/search/result"
	"github.com/meridian-oss/sphindex/internal/logger"
	"github.com/meridian-oss/sphindex/internal/metrics"
)

// Service runs the search pipeline: build the daemon query, decode the
// ranked matches, resolve them against the store, and assemble the paginated
// result. One synchronous daemon round-trip, then one batch store fetch per
// class group. No state is shared between requests.
type Service struct {
	daemon  Daemon
	docs    DocumentReader
	classes ClassRegistry
}

// New creates a search service.
func New(d Daemon, docs DocumentReader, classes ClassRegistry) *Service {
	return &Service{daemon: d, docs: docs, classes: classes}
}

// Search executes a class-scoped (classTag != "") or store-wide search and
// resolves the matches into full documents in daemon rank order.
func (s *Service) Search(
	ctx context.Context, classTag string, req *query.Request,
) (result.Results, error) {
	start := time.Now()
	ctx = logger.WithFields(ctx, zap.String("scope", classLabel(classTag)))

	res, scopeErr := s.queryDaemon(ctx, classTag, req)
	if scopeErr != nil {
		metrics.ObserveSearch(classLabel(classTag), "error", time.Since(start).Seconds())
		return result.Results{}, scopeErr
	}

	docs, err := s.resolve(ctx, res, req)
	if err != nil {
		metrics.ObserveSearch(classLabel(classTag), "error", time.Since(start).Seconds())
		return result.Results{}, err
	}

	metrics.ObserveSearch(classLabel(classTag), statusLabel(res.Status), time.Since(start).Seconds())
	return result.Assemble(
		res.Status, res.TotalFound, docs, req.Page(), req.PageSize(), res.Warning,
	), nil
}

// SearchIdentifiers executes the same query but stops after decoding: the
// ranked identifier list is returned without touching the store (raw mode).
func (s *Service) SearchIdentifiers(
	ctx context.Context, classTag string, req *query.Request,
) ([]uint64, int, error) {
	res, err := s.queryDaemon(ctx, classTag, req)
	if err != nil {
		return nil, 0, err
	}
	if !daemonStatusOK(res.Status) {
		return nil, 0, nil
	}

	dec := s.decodeMatches(ctx, res.Matches)
	return dec.identifiers(), res.TotalFound, nil
}

// queryDaemon builds and runs the daemon query for an optional class scope.
// Daemon transport failures are surfaced unchanged (no retry here); a
// non-success daemon status is not an error.
func (s *Service) queryDaemon(
	ctx context.Context, classTag string, req *query.Request,
) (*daemon.Result, error) {
	var scope *index.Config
	if classTag != "" {
		cfg, err := s.classes.Config(classTag)
		if err != nil {
			return nil, fmt.Errorf("resolve class scope: %w", err)
		}
		scope = &cfg
	}

	res, err := s.daemon.Query(ctx, buildDaemonRequest(req, scope))
	if err != nil {
		if errors.Is(err, daemon.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %w", domain.ErrDaemonUnavailable, err)
		}
		return nil, fmt.Errorf("daemon query: %w", err)
	}
	return res, nil
}

// resolve decodes the match list and materializes documents, preserving
// daemon rank order across class groups. Identifiers missing from the store
// are silently omitted.
func (s *Service) resolve(
	ctx context.Context, res *daemon.Result, req *query.Request,
) ([]domdoc.Document, error) {
	if !daemonStatusOK(res.Status) || len(res.Matches) == 0 {
		return nil, nil
	}

	dec := s.decodeMatches(ctx, res.Matches)

	resolved := make(map[matchRef]domdoc.Document, len(dec.order))
	for _, group := range dec.groups {
		docs, err := s.docs.FindByIdentifiers(ctx, group.class, group.ids, req.Select())
		if err != nil {
			return nil, fmt.Errorf("resolve class %s: %w", group.class, err)
		}
		for _, doc := range docs {
			resolved[matchRef{class: group.class, id: doc.Identifier()}] = doc
		}
	}

	ordered := make([]domdoc.Document, 0, len(dec.order))
	for _, ref := range dec.order {
		if doc, ok := resolved[ref]; ok {
			ordered = append(ordered, doc)
		}
	}
	return ordered, nil
}

func daemonStatusOK(status int) bool {
	return status == result.StatusOK || status == result.StatusWarning
}

func classLabel(classTag string) string {
	if classTag == "" {
		return "*"
	}
	return classTag
}

func statusLabel(status int) string {
	if daemonStatusOK(status) {
		return "ok"
	}
	return "daemon_error"
}
