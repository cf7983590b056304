package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/meridian-oss/sphindex/internal/db"
	"github.com/meridian-oss/sphindex/internal/domain"
	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
)

// store is the consumer interface for document persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string, paths ...string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the storage contracts of usecase/document and
// usecase/search against the schemaless JSON store.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert persists a document only if its identifier slot is free.
// A lost race against a concurrent writer claiming the same identifier
// returns ErrKeyExists; the caller treats it as a retry-worthy collision.
func (r *Repo) Insert(ctx context.Context, doc *domdoc.Document) error {
	key := docKey(doc.Class(), doc.Identifier())
	data, err := marshalDoc(doc)
	if err != nil {
		return err
	}

	created, err := r.store.JSONSetNX(ctx, key, "$", data)
	if err != nil {
		return fmt.Errorf("json.set nx %s: %w", key, err)
	}
	if !created {
		return fmt.Errorf("insert %s: %w", key, db.ErrKeyExists)
	}
	return nil
}

// Replace persists a document that already owns its identifier.
func (r *Repo) Replace(ctx context.Context, doc *domdoc.Document) error {
	key := docKey(doc.Class(), doc.Identifier())
	data, err := marshalDoc(doc)
	if err != nil {
		return err
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// ExistsByIdentifier probes whether an identifier is taken within a class.
// A store failure is reported as an error, never conflated with "free".
func (r *Repo) ExistsByIdentifier(ctx context.Context, class string, id uint64) (bool, error) {
	key := docKey(class, id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return exists, nil
}

// FindByIdentifier returns a single document by class and identifier.
func (r *Repo) FindByIdentifier(ctx context.Context, class string, id uint64) (domdoc.Document, error) {
	key := docKey(class, id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseJSONPathResult(raw, nil)
}

// FindByIdentifiers batch-fetches documents for a class in one pipelined
// round-trip. The returned order is the input identifier order; identifiers
// missing from the store are omitted. An optional projection restricts the
// returned fields.
func (r *Repo) FindByIdentifiers(
	ctx context.Context, class string, ids []uint64, selectFields []string,
) ([]domdoc.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(class, id)
	}

	raws, err := r.store.JSONGetMulti(ctx, keys, "$")
	if err != nil {
		return nil, fmt.Errorf("json.get multi %s: %w", class, err)
	}

	docs := make([]domdoc.Document, 0, len(ids))
	for i, raw := range raws {
		if raw == nil {
			// Deleted after indexing but before the index refreshed.
			continue
		}
		doc, err := parseJSONPathResult(raw, selectFields)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", keys[i], err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, class string, id uint64) error {
	key := docKey(class, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Count returns the number of documents stored for a class. Feeds the
// identifier generator's retry-budget computation.
func (r *Repo) Count(ctx context.Context, class string) (int, error) {
	keys, err := r.store.Scan(ctx, classPattern(class))
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", class, err)
	}
	return len(keys), nil
}

// parseJSONPathResult unwraps the JSONPath array envelope around "$" results.
func parseJSONPathResult(raw []byte, selectFields []string) (domdoc.Document, error) {
	data := raw
	if len(data) > 0 && data[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(data, &docs); err != nil {
			return domdoc.Document{}, fmt.Errorf("unwrap json path result: %w", err)
		}
		if len(docs) == 0 {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		data = docs[0]
	}
	return unmarshalDoc(data, selectFields)
}

func docKey(class string, id uint64) string {
	return domain.KeyPrefix + class + ":" + strconv.FormatUint(id, 10)
}

func classPattern(class string) string {
	return domain.KeyPrefix + class + ":*"
}
