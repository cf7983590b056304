package index

import (
	"fmt"
	"math"
	"strings"
)

// Identifier width limits. The daemon addresses documents with unsigned
// integers; 64 bits would overflow the free-space arithmetic, so the usable
// ceiling is 63.
const (
	DefaultIDBits = 32
	MinIDBits     = 8
	MaxIDBits     = 63
)

// Default daemon endpoint.
const (
	DefaultHost = "localhost"
	DefaultPort = 9312
)

// Config holds per-class index settings. Defined once at class-registration
// time, immutable afterwards.
type Config struct {
	class      string
	fields     []string
	attributes []string
	idBits     int
	host       string
	port       int
}

// New validates and creates an index configuration for a class.
// fields is the ordered list of full-text indexed field names; attributes is
// the ordered list of daemon-filterable field names. Zero values take
// defaults: idBits=32, host=localhost, port=9312.
func New(class string, fields, attributes []string, idBits int, host string, port int) (Config, error) {
	if class == "" {
		return Config{}, fmt.Errorf("class tag is required")
	}
	if len(fields) == 0 {
		return Config{}, fmt.Errorf("class %s: at least one indexed field is required", class)
	}
	if idBits == 0 {
		idBits = DefaultIDBits
	}
	if idBits < MinIDBits || idBits > MaxIDBits {
		return Config{}, fmt.Errorf(
			"class %s: idBits must be between %d and %d, got %d",
			class, MinIDBits, MaxIDBits, idBits,
		)
	}
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || port > 65535 {
		return Config{}, fmt.Errorf("class %s: invalid daemon port %d", class, port)
	}

	return Config{
		class:      class,
		fields:     append([]string(nil), fields...),
		attributes: append([]string(nil), attributes...),
		idBits:     idBits,
		host:       host,
		port:       port,
	}, nil
}

// Class returns the class tag.
func (c *Config) Class() string { return c.class }

// Fields returns the ordered full-text indexed field names.
func (c *Config) Fields() []string { return c.fields }

// Attributes returns the ordered filterable attribute names.
func (c *Config) Attributes() []string { return c.attributes }

// IDBits returns the identifier width in bits.
func (c *Config) IDBits() int { return c.idBits }

// Host returns the daemon host.
func (c *Config) Host() string { return c.host }

// Port returns the daemon port.
func (c *Config) Port() int { return c.port }

// IndexName returns the daemon-side index name for this class.
func (c *Config) IndexName() string { return strings.ToLower(c.class) }

// SpaceSize returns the number of addressable identifiers (2^idBits).
func (c *Config) SpaceSize() uint64 {
	if c.idBits <= 0 || c.idBits > MaxIDBits {
		return math.MaxUint64
	}
	return uint64(1) << uint(c.idBits)
}
