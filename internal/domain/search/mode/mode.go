package mode

// MatchMode is the query-syntax interpretation mode requested from the daemon.
type MatchMode string

// Match mode constants.
const (
	// Extended enables the boolean-capable extended query syntax.
	// This is the default when no mode is supplied.
	Extended MatchMode = "extended"
	All      MatchMode = "all"
	Any      MatchMode = "any"
	Phrase   MatchMode = "phrase"
	Boolean  MatchMode = "boolean"
)

// IsValid checks if the mode is one of the supported values.
func (m MatchMode) IsValid() bool {
	switch m {
	case Extended, All, Any, Phrase, Boolean:
		return true
	}
	return false
}

// SortMode selects how the daemon orders matches.
type SortMode string

// Sort mode constants.
const (
	// SortRelevance leaves the daemon's default rank ordering in place.
	SortRelevance SortMode = "relevance"
	// SortExtended orders by a caller-supplied sort expression.
	SortExtended SortMode = "extended"
)
