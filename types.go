package sphindex

// MatchMode selects how the daemon interprets the query text.
type MatchMode string

// Match modes. Extended is the default and enables the boolean-capable
// extended query syntax.
const (
	MatchExtended MatchMode = "extended"
	MatchAll      MatchMode = "all"
	MatchAny      MatchMode = "any"
	MatchPhrase   MatchMode = "phrase"
	MatchBoolean  MatchMode = "boolean"
)

// Document is a schemaless indexed document. Identifier 0 means "not yet
// assigned"; Save fills it in.
type Document struct {
	Identifier uint64
	Class      string
	Fields     map[string]string
}

// IndexConfig declares one document class. The daemon endpoint is inherited
// from the client unless Host/Port are set.
type IndexConfig struct {
	Class      string
	Fields     []string
	Attributes []string
	IDBits     int
	Host       string
	Port       int
}

// SearchOptions configures a search query. Page and PageSize accept any
// scalar (int, float64, string); anything that does not parse as a positive
// integer falls back to the default (page 1, page size 20).
type SearchOptions struct {
	MatchMode  MatchMode
	Limit      int
	MaxMatches int
	SortBy     string
	With       map[string]uint64
	Select     []string
	Page       any
	PageSize   any
}

// SearchResults is the paginated outcome of one query. Documents preserve
// the daemon's rank order.
type SearchResults struct {
	TotalFound int
	Page       int
	PageSize   int
	Warning    string
	Documents  []Document
}
