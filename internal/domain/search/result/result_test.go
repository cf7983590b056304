package result

import (
	"testing"

	"github.com/meridian-oss/sphindex/internal/domain/document"
)

func docs(ids ...uint64) []document.Document {
	out := make([]document.Document, len(ids))
	for i, id := range ids {
		out[i] = document.Reconstruct(id, "Post", nil)
	}
	return out
}

func TestAssemble_Success(t *testing.T) {
	res := Assemble(StatusOK, 25, docs(7, 3), 2, 10, "")

	if res.TotalFound() != 25 {
		t.Errorf("total found = %d, want 25", res.TotalFound())
	}
	if len(res.Documents()) != 2 {
		t.Errorf("documents len = %d, want 2", len(res.Documents()))
	}
	if res.Page() != 2 || res.PageSize() != 10 {
		t.Errorf("page/pageSize = %d/%d, want 2/10", res.Page(), res.PageSize())
	}
}

func TestAssemble_DaemonFailureIsEmpty(t *testing.T) {
	for _, status := range []int{StatusError, StatusRetry} {
		res := Assemble(status, 25, docs(7, 3), 1, 20, "broken")

		if res.TotalFound() != 0 {
			t.Errorf("status %d: total found = %d, want 0", status, res.TotalFound())
		}
		if len(res.Documents()) != 0 {
			t.Errorf("status %d: documents len = %d, want 0", status, len(res.Documents()))
		}
		if res.RawStatus() != status {
			t.Errorf("raw status = %d, want %d", res.RawStatus(), status)
		}
		if res.Warning() != "broken" {
			t.Errorf("warning = %q", res.Warning())
		}
	}
}

func TestAssemble_WarningIsSuccess(t *testing.T) {
	res := Assemble(StatusWarning, 2, docs(7, 3), 1, 20, "partial")

	if res.TotalFound() != 2 {
		t.Errorf("total found = %d, want 2", res.TotalFound())
	}
	if len(res.Documents()) != 2 {
		t.Errorf("documents len = %d, want 2", len(res.Documents()))
	}
}

func TestAssemble_ZeroTotal(t *testing.T) {
	res := Assemble(StatusOK, 0, nil, 1, 20, "")

	if res.TotalFound() != 0 || len(res.Documents()) != 0 {
		t.Errorf("expected empty result, got %d/%d", res.TotalFound(), len(res.Documents()))
	}
}
