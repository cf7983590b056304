package registry

import (
	"fmt"
	"hash/crc32"
	"sync"

	"github.com/meridian-oss/sphindex/internal/domain"
	"github.com/meridian-oss/sphindex/internal/domain/index"
)

// Attribute and field names injected into every indexed document so that
// cross-class matches can be mapped back to their originating class.
const (
	// ClassAttr is the numeric daemon attribute carrying the packed class code.
	ClassAttr = "doc_class"
	// ClassField is the full-text field carrying the class tag, used for
	// server-side class scoping via the extended query syntax.
	ClassField = "class_tag"
)

// Registry is the closed set of registered document classes. It owns each
// class's immutable index configuration and the class attribute codec:
// a class tag packs into a CRC-32 code stored per indexed document, and the
// code decodes back through the registry's reverse map.
//
// Classes are registered at configuration time; lookups afterwards are
// read-only and safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byTag  map[string]entry
	byCode map[uint32]string
}

type entry struct {
	cfg  index.Config
	code uint32
}

// New creates an empty class registry.
func New() *Registry {
	return &Registry{
		byTag:  make(map[string]entry),
		byCode: make(map[uint32]string),
	}
}

// Register adds a class configuration. Duplicate tags and code collisions
// are rejected; a collision would break the codec's round-trip guarantee.
func (r *Registry) Register(cfg index.Config) error {
	tag := cfg.Class()
	code := Encode(tag)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byTag[tag]; ok {
		return fmt.Errorf("class %s: %w", tag, domain.ErrClassAlreadyRegistered)
	}
	if other, ok := r.byCode[code]; ok {
		return fmt.Errorf(
			"class %s: attribute code %d collides with class %s", tag, code, other,
		)
	}

	r.byTag[tag] = entry{cfg: cfg, code: code}
	r.byCode[code] = tag
	return nil
}

// Config returns the configuration for a registered class tag.
func (r *Registry) Config(tag string) (index.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byTag[tag]
	if !ok {
		return index.Config{}, fmt.Errorf("class %s: %w", tag, domain.ErrClassNotRegistered)
	}
	return e.cfg, nil
}

// DecodeClass maps a packed class attribute value back to its class tag.
// Codes from classes never registered with this layer yield ErrUnknownClass.
func (r *Registry) DecodeClass(code uint32) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, ok := r.byCode[code]
	if !ok {
		return "", fmt.Errorf("code %d: %w", code, domain.ErrUnknownClass)
	}
	return tag, nil
}

// Tags returns the registered class tags (unordered).
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	return tags
}

// Encode packs a class tag into its numeric attribute value. Deterministic:
// the same tag always yields the same code, on every process and host, so
// the value written at index-build time never drifts.
func Encode(tag string) uint32 {
	return crc32.ChecksumIEEE([]byte(tag))
}
