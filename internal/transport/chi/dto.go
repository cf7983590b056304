package chi

import (
	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
	"github.com/meridian-oss/sphindex/internal/domain/search/result"
)

// searchRequest is the JSON body of the search endpoints. Page and PageSize
// are deliberately untyped so clients can send numbers or strings; the query
// layer normalizes whatever arrives.
type searchRequest struct {
	Query      string            `json:"query"`
	MatchMode  string            `json:"match_mode,omitempty"`
	Limit      int               `json:"limit,omitempty"`
	MaxMatches int               `json:"max_matches,omitempty"`
	SortBy     string            `json:"sort_by,omitempty"`
	With       map[string]uint64 `json:"with,omitempty"`
	Raw        bool              `json:"raw,omitempty"`
	Select     []string          `json:"select,omitempty"`
	Page       any               `json:"page,omitempty"`
	PageSize   any               `json:"page_size,omitempty"`
}

type saveRequest struct {
	Identifier uint64            `json:"identifier,omitempty"`
	Fields     map[string]string `json:"fields"`
}

type documentResponse struct {
	Identifier uint64            `json:"identifier"`
	Class      string            `json:"class"`
	Fields     map[string]string `json:"fields"`
}

type searchResponse struct {
	TotalFound int                `json:"total_found"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Warning    string             `json:"warning,omitempty"`
	Documents  []documentResponse `json:"documents"`
}

type rawSearchResponse struct {
	TotalFound  int      `json:"total_found"`
	Identifiers []uint64 `json:"identifiers"`
}

type healthResponse struct {
	Store  bool `json:"store"`
	Daemon bool `json:"daemon"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func documentFrom(doc *domdoc.Document) documentResponse {
	return documentResponse{
		Identifier: doc.Identifier(),
		Class:      doc.Class(),
		Fields:     doc.Fields(),
	}
}

func searchResponseFrom(res *result.Results) searchResponse {
	docs := make([]documentResponse, 0, len(res.Documents()))
	for _, doc := range res.Documents() {
		docs = append(docs, documentFrom(&doc))
	}
	return searchResponse{
		TotalFound: res.TotalFound(),
		Page:       res.Page(),
		PageSize:   res.PageSize(),
		Warning:    res.Warning(),
		Documents:  docs,
	}
}
