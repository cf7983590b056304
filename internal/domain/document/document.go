package document

import "fmt"

// Document is the indexed-document aggregate (immutable value object).
// A document belongs to exactly one class and carries a schemaless field map.
// The identifier is daemon-compatible: a non-zero unsigned integer, assigned
// once before first persistence and never reassigned.
type Document struct {
	identifier uint64
	class      string
	fields     map[string]string
}

// New validates and creates a Document without an identifier.
// The identifier is assigned by the save pipeline before persistence.
func New(class string, fields map[string]string) (Document, error) {
	if class == "" {
		return Document{}, fmt.Errorf("document class is required")
	}
	return Document{class: class, fields: cloneFields(fields)}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(identifier uint64, class string, fields map[string]string) Document {
	return Document{identifier: identifier, class: class, fields: fields}
}

// Identifier returns the daemon-compatible document identifier (0 if unassigned).
func (d *Document) Identifier() uint64 { return d.identifier }

// HasIdentifier reports whether an identifier has been assigned.
func (d *Document) HasIdentifier() bool { return d.identifier != 0 }

// Class returns the logical class tag.
func (d *Document) Class() string { return d.class }

// Fields returns the schemaless field map.
func (d *Document) Fields() map[string]string { return d.fields }

// Field returns a single field value ("" if absent).
func (d *Document) Field(name string) string { return d.fields[name] }

// WithIdentifier returns a copy carrying the given identifier.
func (d *Document) WithIdentifier(id uint64) Document {
	return Document{identifier: id, class: d.class, fields: d.fields}
}

func cloneFields(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
