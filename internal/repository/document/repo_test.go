package document

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/meridian-oss/sphindex/internal/db"
	"github.com/meridian-oss/sphindex/internal/domain"
	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
)

// --- Mock store ---

type mockStore struct {
	data      map[string][]byte
	existsErr error
	getErr    error
	scanErr   error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	m.data[key] = data
	return nil
}

func (m *mockStore) JSONSetNX(_ context.Context, key, _ string, data []byte) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = data
	return true, nil
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, &db.Error{Op: db.OpJSONGet, Err: db.ErrKeyNotFound}
	}
	// Real JSONPath "$" responses arrive wrapped in an array envelope.
	return append(append([]byte("["), data...), ']'), nil
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string, paths ...string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, key := range keys {
		raw, err := m.JSONGet(ctx, key, paths...)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue
			}
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockStore) Scan(_ context.Context, _ string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func makeDoc(t *testing.T, id uint64, title string) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New("Post", map[string]string{"title": title, "views": "10"})
	if err != nil {
		t.Fatalf("domdoc.New: %v", err)
	}
	return doc.WithIdentifier(id)
}

// --- Tests ---

func TestInsertAndFind(t *testing.T) {
	store := newMockStore()
	repo := New(store)
	ctx := context.Background()

	doc := makeDoc(t, 7, "hello")
	if err := repo.Insert(ctx, &doc); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.FindByIdentifier(ctx, "Post", 7)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Identifier() != 7 {
		t.Errorf("identifier = %d, want 7", got.Identifier())
	}
	if got.Class() != "Post" {
		t.Errorf("class = %q, want Post", got.Class())
	}
	if got.Field("title") != "hello" {
		t.Errorf("title = %q, want hello", got.Field("title"))
	}
}

func TestInsert_TakenSlot(t *testing.T) {
	store := newMockStore()
	repo := New(store)
	ctx := context.Background()

	doc := makeDoc(t, 7, "first")
	if err := repo.Insert(ctx, &doc); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dupe := makeDoc(t, 7, "second")
	err := repo.Insert(ctx, &dupe)
	if !errors.Is(err, db.ErrKeyExists) {
		t.Fatalf("error = %v, want ErrKeyExists", err)
	}
}

func TestReplace_Overwrites(t *testing.T) {
	store := newMockStore()
	repo := New(store)
	ctx := context.Background()

	doc := makeDoc(t, 7, "old")
	if err := repo.Insert(ctx, &doc); err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated := makeDoc(t, 7, "new")
	if err := repo.Replace(ctx, &updated); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.FindByIdentifier(ctx, "Post", 7)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Field("title") != "new" {
		t.Errorf("title = %q, want new", got.Field("title"))
	}
}

func TestFindByIdentifier_NotFound(t *testing.T) {
	repo := New(newMockStore())

	_, err := repo.FindByIdentifier(context.Background(), "Post", 404)
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("error = %v, want ErrDocumentNotFound", err)
	}
}

func TestFindByIdentifiers_OrderAndOmission(t *testing.T) {
	store := newMockStore()
	repo := New(store)
	ctx := context.Background()

	for _, id := range []uint64{3, 7, 9} {
		doc := makeDoc(t, id, fmt.Sprintf("doc-%d", id))
		if err := repo.Insert(ctx, &doc); err != nil {
			t.Fatalf("insert %d: %v", id, err)
		}
	}

	// 5 was never stored; the result keeps request order and omits it.
	docs, err := repo.FindByIdentifiers(ctx, "Post", []uint64{9, 5, 3}, nil)
	if err != nil {
		t.Fatalf("find multi: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs len = %d, want 2", len(docs))
	}
	if docs[0].Identifier() != 9 || docs[1].Identifier() != 3 {
		t.Errorf("order = [%d, %d], want [9, 3]", docs[0].Identifier(), docs[1].Identifier())
	}
}

func TestFindByIdentifiers_Projection(t *testing.T) {
	store := newMockStore()
	repo := New(store)
	ctx := context.Background()

	doc := makeDoc(t, 7, "hello")
	if err := repo.Insert(ctx, &doc); err != nil {
		t.Fatalf("insert: %v", err)
	}

	docs, err := repo.FindByIdentifiers(ctx, "Post", []uint64{7}, []string{"title"})
	if err != nil {
		t.Fatalf("find multi: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("docs len = %d, want 1", len(docs))
	}
	fields := docs[0].Fields()
	if _, ok := fields["views"]; ok {
		t.Error("views leaked through the projection")
	}
	if fields["title"] != "hello" {
		t.Errorf("title = %q, want hello", fields["title"])
	}
}

func TestExistsByIdentifier_ErrorIsNotFree(t *testing.T) {
	store := newMockStore()
	store.existsErr = errors.New("connection reset")
	repo := New(store)

	_, err := repo.ExistsByIdentifier(context.Background(), "Post", 7)
	if err == nil {
		t.Fatal("expected probe failure to surface as an error")
	}
}

func TestDelete(t *testing.T) {
	store := newMockStore()
	repo := New(store)
	ctx := context.Background()

	doc := makeDoc(t, 7, "hello")
	if err := repo.Insert(ctx, &doc); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.Delete(ctx, "Post", 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "Post", 7); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("second delete error = %v, want ErrDocumentNotFound", err)
	}
}

func TestCount(t *testing.T) {
	store := newMockStore()
	repo := New(store)
	ctx := context.Background()

	for _, id := range []uint64{1, 2, 3} {
		doc := makeDoc(t, id, "x")
		if err := repo.Insert(ctx, &doc); err != nil {
			t.Fatalf("insert %d: %v", id, err)
		}
	}

	n, err := repo.Count(ctx, "Post")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestDocKey(t *testing.T) {
	if got := docKey("Post", 42); got != "sphindex:Post:42" {
		t.Errorf("docKey = %q", got)
	}
	if got := classPattern("Post"); got != "sphindex:Post:*" {
		t.Errorf("classPattern = %q", got)
	}
}
