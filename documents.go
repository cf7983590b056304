package sphindex

import (
	"context"
	"fmt"

	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
)

// DocumentService persists and retrieves documents of a single class.
type DocumentService struct {
	class  string
	client *Client
}

// Save persists a document. A document with Identifier 0 gets a fresh
// collision-free identifier; a document with an identifier is replaced in
// place, so repeated saves are idempotent. The returned document carries the
// assigned identifier.
func (s *DocumentService) Save(ctx context.Context, fields map[string]string, identifier ...uint64) (Document, error) {
	doc, err := domdoc.New(s.class, fields)
	if err != nil {
		return Document{}, fmt.Errorf("save: %w", err)
	}
	if len(identifier) > 0 && identifier[0] != 0 {
		doc = doc.WithIdentifier(identifier[0])
	}

	saved, err := s.client.docSvc.Save(s.client.contextWithLogger(ctx), doc)
	if err != nil {
		return Document{}, fmt.Errorf("save: %w", err)
	}
	return toPublicDocument(&saved), nil
}

// Get retrieves a document by identifier.
func (s *DocumentService) Get(ctx context.Context, id uint64) (Document, error) {
	doc, err := s.client.docSvc.Get(s.client.contextWithLogger(ctx), s.class, id)
	if err != nil {
		return Document{}, fmt.Errorf("get: %w", err)
	}
	return toPublicDocument(&doc), nil
}

// Delete removes a document by identifier.
func (s *DocumentService) Delete(ctx context.Context, id uint64) error {
	if err := s.client.docSvc.Delete(s.client.contextWithLogger(ctx), s.class, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Count returns the number of stored documents in the class.
func (s *DocumentService) Count(ctx context.Context) (int, error) {
	n, err := s.client.docSvc.Count(s.client.contextWithLogger(ctx), s.class)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
