package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/meridian-oss/sphindex/internal/daemon"
	"github.com/meridian-oss/sphindex/internal/db"
	"github.com/meridian-oss/sphindex/internal/domain"
	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
	"github.com/meridian-oss/sphindex/internal/domain/index"
	"github.com/meridian-oss/sphindex/internal/domain/search/result"
	"github.com/meridian-oss/sphindex/internal/registry"
	documentuc "github.com/meridian-oss/sphindex/internal/usecase/document"
	healthuc "github.com/meridian-oss/sphindex/internal/usecase/health"
	searchuc "github.com/meridian-oss/sphindex/internal/usecase/search"
)

// --- Mocks ---

// memRepo is an in-memory implementation of both the document repository and
// the search document reader.
type memRepo struct {
	docs map[string]map[uint64]domdoc.Document
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[string]map[uint64]domdoc.Document)}
}

func (m *memRepo) class(class string) map[uint64]domdoc.Document {
	if m.docs[class] == nil {
		m.docs[class] = make(map[uint64]domdoc.Document)
	}
	return m.docs[class]
}

func (m *memRepo) Insert(_ context.Context, doc *domdoc.Document) error {
	c := m.class(doc.Class())
	if _, ok := c[doc.Identifier()]; ok {
		return fmt.Errorf("insert: %w", db.ErrKeyExists)
	}
	c[doc.Identifier()] = *doc
	return nil
}

func (m *memRepo) Replace(_ context.Context, doc *domdoc.Document) error {
	m.class(doc.Class())[doc.Identifier()] = *doc
	return nil
}

func (m *memRepo) ExistsByIdentifier(_ context.Context, class string, id uint64) (bool, error) {
	_, ok := m.class(class)[id]
	return ok, nil
}

func (m *memRepo) FindByIdentifier(_ context.Context, class string, id uint64) (domdoc.Document, error) {
	doc, ok := m.class(class)[id]
	if !ok {
		return domdoc.Document{}, fmt.Errorf("find: %w", domain.ErrDocumentNotFound)
	}
	return doc, nil
}

func (m *memRepo) FindByIdentifiers(
	_ context.Context, class string, ids []uint64, _ []string,
) ([]domdoc.Document, error) {
	out := make([]domdoc.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := m.class(class)[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, class string, id uint64) error {
	if _, ok := m.class(class)[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(m.class(class), id)
	return nil
}

func (m *memRepo) Count(_ context.Context, class string) (int, error) {
	return len(m.class(class)), nil
}

type fakeDaemon struct {
	result  *daemon.Result
	err     error
	lastReq *daemon.Request
}

func (f *fakeDaemon) Query(_ context.Context, req *daemon.Request) (*daemon.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type pinger struct{ err error }

func (p pinger) Ping(_ context.Context) error { return p.err }

func newTestServer(t *testing.T, repo *memRepo, d *fakeDaemon) *Server {
	t.Helper()
	return newTestServerPageSize(t, repo, d, 0)
}

func newTestServerPageSize(t *testing.T, repo *memRepo, d *fakeDaemon, pageSize int) *Server {
	t.Helper()

	classes := registry.New()
	cfg, err := index.New("Post", []string{"title"}, []string{"year"}, 0, "", 0)
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	if err := classes.Register(cfg); err != nil {
		t.Fatalf("register: %v", err)
	}

	return NewServer(
		documentuc.New(repo, classes),
		searchuc.New(d, repo, classes),
		healthuc.New(pinger{}, pinger{}),
		zap.NewNop(),
		pageSize,
	)
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestSaveDocument_AssignsIdentifier(t *testing.T) {
	srv := newTestServer(t, newMemRepo(), &fakeDaemon{})

	rec := doRequest(t, srv, http.MethodPost, "/classes/Post/documents",
		`{"fields": {"title": "hello"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Identifier uint64 `json:"identifier"`
		Class      string `json:"class"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Identifier == 0 {
		t.Error("identifier was not assigned")
	}
	if resp.Class != "Post" {
		t.Errorf("class = %q, want Post", resp.Class)
	}
}

func TestSaveDocument_UnregisteredClass(t *testing.T) {
	srv := newTestServer(t, newMemRepo(), &fakeDaemon{})

	rec := doRequest(t, srv, http.MethodPost, "/classes/Ghost/documents",
		`{"fields": {"title": "hello"}}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "class_not_registered") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetDocument_RoundTrip(t *testing.T) {
	srv := newTestServer(t, newMemRepo(), &fakeDaemon{})

	rec := doRequest(t, srv, http.MethodPost, "/classes/Post/documents",
		`{"identifier": 42, "fields": {"title": "hello"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/classes/Post/documents/42", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"title":"hello"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	srv := newTestServer(t, newMemRepo(), &fakeDaemon{})

	rec := doRequest(t, srv, http.MethodGet, "/classes/Post/documents/404", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetDocument_BadIdentifier(t *testing.T) {
	srv := newTestServer(t, newMemRepo(), &fakeDaemon{})

	for _, raw := range []string{"abc", "0", "-5"} {
		rec := doRequest(t, srv, http.MethodGet, "/classes/Post/documents/"+raw, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestDeleteDocument(t *testing.T) {
	repo := newMemRepo()
	srv := newTestServer(t, repo, &fakeDaemon{})

	doRequest(t, srv, http.MethodPost, "/classes/Post/documents",
		`{"identifier": 7, "fields": {"title": "x"}}`)

	rec := doRequest(t, srv, http.MethodDelete, "/classes/Post/documents/7", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/classes/Post/documents/7", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestSearch_NormalizesLoosePagination(t *testing.T) {
	repo := newMemRepo()
	doc := domdoc.Reconstruct(7, "Post", map[string]string{"title": "hello"})
	repo.class("Post")[7] = doc

	d := &fakeDaemon{result: &daemon.Result{
		Status:     result.StatusOK,
		TotalFound: 1,
		Matches: []daemon.Match{{
			DocID: 7,
			Attrs: map[string]uint64{registry.ClassAttr: uint64(registry.Encode("Post"))},
		}},
	}}
	srv := newTestServer(t, repo, d)

	// page_size arrives as a garbage string, page as a float; both normalize.
	rec := doRequest(t, srv, http.MethodPost, "/classes/Post/search",
		`{"query": "hello", "page_size": "abc", "page": 1.0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TotalFound int `json:"total_found"`
		Page       int `json:"page"`
		PageSize   int `json:"page_size"`
		Documents  []struct {
			Identifier uint64 `json:"identifier"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Errorf("page/pageSize = %d/%d, want 1/20", resp.Page, resp.PageSize)
	}
	if len(resp.Documents) != 1 || resp.Documents[0].Identifier != 7 {
		t.Errorf("documents = %+v", resp.Documents)
	}

	// The daemon request carried the scoping clause and the class index.
	if d.lastReq.Index != "post" {
		t.Errorf("daemon index = %q, want post", d.lastReq.Index)
	}
	if !strings.Contains(d.lastReq.Query, "@class_tag Post") {
		t.Errorf("daemon query = %q, want scoping clause", d.lastReq.Query)
	}
}

func TestSearch_ConfiguredDefaultPageSize(t *testing.T) {
	d := &fakeDaemon{result: &daemon.Result{Status: result.StatusOK}}
	srv := newTestServerPageSize(t, newMemRepo(), d, 5)

	rec := doRequest(t, srv, http.MethodPost, "/classes/Post/search", `{"query": "hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		PageSize int `json:"page_size"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PageSize != 5 {
		t.Errorf("page size = %d, want 5", resp.PageSize)
	}
	if d.lastReq.Limit != 5 {
		t.Errorf("daemon limit = %d, want 5", d.lastReq.Limit)
	}
}

func TestSearch_RawMode(t *testing.T) {
	d := &fakeDaemon{result: &daemon.Result{
		Status:     result.StatusOK,
		TotalFound: 2,
		Matches: []daemon.Match{
			{DocID: 7, Attrs: map[string]uint64{registry.ClassAttr: uint64(registry.Encode("Post"))}},
			{DocID: 3, Attrs: map[string]uint64{registry.ClassAttr: uint64(registry.Encode("Post"))}},
		},
	}}
	srv := newTestServer(t, newMemRepo(), d)

	rec := doRequest(t, srv, http.MethodPost, "/search", `{"query": "hello", "raw": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TotalFound  int      `json:"total_found"`
		Identifiers []uint64 `json:"identifiers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Identifiers) != 2 || resp.Identifiers[0] != 7 || resp.Identifiers[1] != 3 {
		t.Errorf("identifiers = %v, want [7, 3]", resp.Identifiers)
	}
}

func TestSearch_DaemonUnavailable(t *testing.T) {
	d := &fakeDaemon{err: &daemon.Error{Op: daemon.OpConnect, Err: daemon.ErrUnavailable}}
	srv := newTestServer(t, newMemRepo(), d)

	rec := doRequest(t, srv, http.MethodPost, "/classes/Post/search", `{"query": "hello"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, newMemRepo(), &fakeDaemon{})

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"store":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSearch_BadBody(t *testing.T) {
	srv := newTestServer(t, newMemRepo(), &fakeDaemon{})

	rec := doRequest(t, srv, http.MethodPost, "/search", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
