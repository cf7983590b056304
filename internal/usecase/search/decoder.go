package search

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/meridian-oss/sphindex/internal/daemon"
	"github.com/meridian-oss/sphindex/internal/domain"
	"github.com/meridian-oss/sphindex/internal/logger"
	"github.com/meridian-oss/sphindex/internal/metrics"
	"github.com/meridian-oss/sphindex/internal/registry"
)

// matchRef addresses one decoded match: which class it came from and which
// store document it points at.
type matchRef struct {
	class string
	id    uint64
}

// classGroup collects the identifiers of one class in rank order, so the
// resolver can issue one batch fetch per class.
type classGroup struct {
	class string
	ids   []uint64
}

// decoded is the outcome of walking a raw match list.
type decoded struct {
	// order holds every kept match in daemon rank order.
	order []matchRef
	// groups holds per-class identifier lists in first-seen class order.
	// A class-scoped query produces exactly one group; a store-wide query
	// may produce several.
	groups []classGroup
}

// decodeMatches recovers the originating class of each raw match via the
// class attribute and extracts the ordered identifier list. Matches with an
// unusable identifier or an unregistered class are skipped, never fatal.
func (s *Service) decodeMatches(ctx context.Context, matches []daemon.Match) decoded {
	var dec decoded
	groupIdx := make(map[string]int)

	for _, m := range matches {
		if m.DocID == 0 {
			metrics.AddDroppedMatch("invalid_identifier")
			continue
		}

		class, err := s.classes.DecodeClass(uint32(m.Attrs[registry.ClassAttr]))
		if err != nil {
			if errors.Is(err, domain.ErrUnknownClass) {
				metrics.AddDroppedMatch("unknown_class")
				logger.FromContext(ctx).Warn("skipping match with unknown class attribute",
					zap.Uint64("doc_id", m.DocID),
					zap.Uint64("attr", m.Attrs[registry.ClassAttr]),
				)
				continue
			}
			metrics.AddDroppedMatch("decode_error")
			continue
		}

		dec.order = append(dec.order, matchRef{class: class, id: m.DocID})

		i, ok := groupIdx[class]
		if !ok {
			i = len(dec.groups)
			groupIdx[class] = i
			dec.groups = append(dec.groups, classGroup{class: class})
		}
		dec.groups[i].ids = append(dec.groups[i].ids, m.DocID)
	}

	return dec
}

// identifiers returns the kept identifier list in rank order (raw mode).
func (d *decoded) identifiers() []uint64 {
	ids := make([]uint64, len(d.order))
	for i, ref := range d.order {
		ids[i] = ref.id
	}
	return ids
}
