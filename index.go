package sphindex

import (
	"context"
	"errors"
	"fmt"
)

// TypedIndex is a generic, schema-first handle over one document class.
// Schema is inferred from T's struct tags at construction time.
type TypedIndex[T any] struct {
	class  string
	client *Client
	meta   *schemaMeta
}

// NewIndex creates a typed index handle for the given class tag and registers
// the class with the client (idempotent). T must be a struct with sphindex
// tags; schema is parsed once and cached.
func NewIndex[T any](client *Client, class string, idBits int) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", class, err)
	}

	err = client.RegisterClass(meta.indexConfig(class, idBits))
	if err != nil && !errors.Is(err, ErrClassAlreadyRegistered) {
		return nil, fmt.Errorf("new index %q: %w", class, err)
	}

	return &TypedIndex[T]{class: class, client: client, meta: meta}, nil
}

// Save persists a single item. An item whose id field is zero gets a fresh
// identifier; the returned copy carries it.
func (idx *TypedIndex[T]) Save(ctx context.Context, item T) (T, error) {
	var zero T

	id, fields := idx.meta.toFields(item)
	doc, err := idx.client.Documents(idx.class).Save(ctx, fields, id)
	if err != nil {
		return zero, fmt.Errorf("save: %w", err)
	}

	saved, ok := idx.meta.fromDocument(doc).(T)
	if !ok {
		return zero, fmt.Errorf("save: type assertion failed")
	}
	return saved, nil
}

// Get retrieves a typed item by identifier.
func (idx *TypedIndex[T]) Get(ctx context.Context, id uint64) (T, error) {
	var zero T

	doc, err := idx.client.Documents(idx.class).Get(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("get: %w", err)
	}

	item, ok := idx.meta.fromDocument(doc).(T)
	if !ok {
		return zero, fmt.Errorf("get: type assertion failed")
	}
	return item, nil
}

// Delete removes an item by identifier.
func (idx *TypedIndex[T]) Delete(ctx context.Context, id uint64) error {
	return idx.client.Documents(idx.class).Delete(ctx, id)
}

// Count returns the number of stored items in the class.
func (idx *TypedIndex[T]) Count(ctx context.Context) (int, error) {
	return idx.client.Documents(idx.class).Count(ctx)
}

// Search returns a fluent search builder for this index.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}
