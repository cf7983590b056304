package result

import "github.com/meridian-oss/sphindex/internal/domain/document"

// Daemon status codes mirrored into the assembled result.
const (
	StatusOK      = 0
	StatusError   = 1
	StatusRetry   = 2
	StatusWarning = 3
)

// Results is the paginated, materialized outcome of one search request.
// Created once per query, immutable after construction. Documents preserve
// the daemon's rank order.
type Results struct {
	totalFound int
	page       int
	pageSize   int
	documents  []document.Document
	rawStatus  int
	warning    string
}

// Assemble combines the raw daemon outcome with resolved documents.
// A non-success daemon status or zero total matches yields a valid empty
// result (totalFound 0, no documents), never an error.
func Assemble(
	rawStatus, totalFound int,
	documents []document.Document,
	page, pageSize int,
	warning string,
) Results {
	if !statusOK(rawStatus) || totalFound == 0 {
		return Results{
			page: page, pageSize: pageSize,
			rawStatus: rawStatus, warning: warning,
		}
	}
	return Results{
		totalFound: totalFound,
		page:       page,
		pageSize:   pageSize,
		documents:  documents,
		rawStatus:  rawStatus,
		warning:    warning,
	}
}

// TotalFound returns the daemon's total match count (0 on daemon failure).
func (r *Results) TotalFound() int { return r.totalFound }

// Page returns the current page number (1-based).
func (r *Results) Page() int { return r.page }

// PageSize returns the page size.
func (r *Results) PageSize() int { return r.pageSize }

// Documents returns the resolved documents in daemon rank order.
func (r *Results) Documents() []document.Document { return r.documents }

// RawStatus returns the daemon's reported status code.
func (r *Results) RawStatus() int { return r.rawStatus }

// Warning returns the daemon warning message, if any.
func (r *Results) Warning() string { return r.warning }

// statusOK treats a warning status as success: the daemon still returned a
// usable match list alongside the warning.
func statusOK(status int) bool {
	return status == StatusOK || status == StatusWarning
}
