package document

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/meridian-oss/sphindex/internal/db"
	"github.com/meridian-oss/sphindex/internal/domain"
	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
	"github.com/meridian-oss/sphindex/internal/logger"
	"github.com/meridian-oss/sphindex/internal/metrics"
)

// Service handles document persistence, assigning a collision-free daemon
// identifier on first save.
type Service struct {
	repo    Repository
	classes ClassReader

	// randUint draws a uniform value in [0, n); swapped out in tests.
	randUint func(n uint64) uint64
}

// New creates a document service.
func New(repo Repository, classes ClassReader) *Service {
	return &Service{
		repo:     repo,
		classes:  classes,
		randUint: rand.Uint64N,
	}
}

// Save persists a document. Documents without an identifier get one drawn
// from the class's identifier space first; documents that already carry an
// identifier are replaced in place, so repeated saves are idempotent.
func (s *Service) Save(ctx context.Context, doc domdoc.Document) (domdoc.Document, error) {
	cfg, err := s.classes.Config(doc.Class())
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("resolve class: %w", err)
	}

	if doc.HasIdentifier() {
		if err := s.repo.Replace(ctx, &doc); err != nil {
			return domdoc.Document{}, fmt.Errorf("replace document: %w", err)
		}
		return doc, nil
	}

	return s.assignAndInsert(ctx, doc, cfg.SpaceSize())
}

// assignAndInsert draws candidate identifiers until one slot is claimed or
// the retry budget runs out. The store's NX insert is the final arbiter for
// racing writers; a lost race counts as a collision and retries.
func (s *Service) assignAndInsert(
	ctx context.Context, doc domdoc.Document, space uint64,
) (domdoc.Document, error) {
	used, err := s.repo.Count(ctx, doc.Class())
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("count documents: %w", err)
	}

	// Identifier 0 means "unassigned", so the usable space starts at 1.
	budget := retryBudget(space-1, uint64(used))
	for attempt := 0; attempt < budget; attempt++ {
		id := 1 + s.randUint(space-1)

		taken, err := s.repo.ExistsByIdentifier(ctx, doc.Class(), id)
		if err != nil {
			return domdoc.Document{}, fmt.Errorf("probe identifier %d: %w", id, err)
		}
		if taken {
			metrics.AddIDCollision(doc.Class())
			continue
		}

		candidate := doc.WithIdentifier(id)
		err = s.repo.Insert(ctx, &candidate)
		if errors.Is(err, db.ErrKeyExists) {
			// Another writer claimed the slot between probe and insert.
			metrics.AddIDCollision(doc.Class())
			continue
		}
		if err != nil {
			return domdoc.Document{}, fmt.Errorf("insert document: %w", err)
		}
		return candidate, nil
	}

	logger.FromContext(ctx).Warn("identifier space exhausted",
		zap.String("class", doc.Class()),
		zap.Int("attempts", budget),
		zap.Uint64("space", space),
		zap.Int("used", used),
	)
	return domdoc.Document{}, domain.NewSpaceExhausted(doc.Class(), budget, space)
}

// Get retrieves a document by class and identifier.
func (s *Service) Get(ctx context.Context, class string, id uint64) (domdoc.Document, error) {
	if _, err := s.classes.Config(class); err != nil {
		return domdoc.Document{}, fmt.Errorf("resolve class: %w", err)
	}

	doc, err := s.repo.FindByIdentifier(ctx, class, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Delete removes a document by class and identifier.
func (s *Service) Delete(ctx context.Context, class string, id uint64) error {
	if _, err := s.classes.Config(class); err != nil {
		return fmt.Errorf("resolve class: %w", err)
	}

	if err := s.repo.Delete(ctx, class, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of stored documents in a class.
func (s *Service) Count(ctx context.Context, class string) (int, error) {
	if _, err := s.classes.Config(class); err != nil {
		return 0, fmt.Errorf("resolve class: %w", err)
	}

	n, err := s.repo.Count(ctx, class)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
