package document

import (
	"context"

	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
	"github.com/meridian-oss/sphindex/internal/domain/index"
)

// Repository defines the storage contract for documents.
type Repository interface {
	// Insert persists a document only if its identifier slot is free.
	// A duplicate identifier returns an error matching db.ErrKeyExists.
	Insert(ctx context.Context, doc *domdoc.Document) error
	// Replace persists a document that already owns its identifier.
	Replace(ctx context.Context, doc *domdoc.Document) error
	ExistsByIdentifier(ctx context.Context, class string, id uint64) (bool, error)
	FindByIdentifier(ctx context.Context, class string, id uint64) (domdoc.Document, error)
	Delete(ctx context.Context, class string, id uint64) error
	Count(ctx context.Context, class string) (int, error)
}

// ClassReader resolves registered class configurations.
type ClassReader interface {
	Config(tag string) (index.Config, error)
}
