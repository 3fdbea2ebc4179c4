package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/twinrag/internal/db"
	"github.com/kailas-cloud/twinrag/internal/domain"
)

func TestEnsureIndex_CreatesWithSchema(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	created, err := repo.EnsureIndex(context.Background())
	if err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if !created {
		t.Error("expected created=true on first creation")
	}
	if got.Name != "twinrag:profile:idx" {
		t.Errorf("index name: got %q", got.Name)
	}
	if len(got.Prefixes) != 1 || got.Prefixes[0] != "twinrag:profile:doc:" {
		t.Errorf("prefixes: got %v", got.Prefixes)
	}
	if len(got.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(got.Fields))
	}
	vec := got.Fields[2]
	if vec.Name != "__vector" || vec.Type != db.IndexFieldVector {
		t.Errorf("third field should be the vector field, got %+v", vec)
	}
	if vec.Alias != "vector" {
		t.Errorf("vector field alias: got %q, want %q (the attribute KNN queries address)", vec.Alias, "vector")
	}
	if vec.VectorDim != 1536 || vec.VectorDistance != db.DistanceCosine {
		t.Errorf("vector options: got dim=%d metric=%s", vec.VectorDim, vec.VectorDistance)
	}
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		return db.ErrIndexExists
	}

	created, err := repo.EnsureIndex(context.Background())
	if err != nil {
		t.Fatalf("existing index should not be an error: %v", err)
	}
	if created {
		t.Error("expected created=false when index already exists")
	}
}

func TestUpsert_BuildsHashItems(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got []db.HashSetItem
	ms.hSetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	records := []domain.VectorRecord{
		{
			ID:     "skills.languages[0]",
			Vector: []float32{1.0},
			Meta:   domain.Metadata{Text: "Python"},
		},
		{
			ID:     "projects[0]",
			Vector: []float32{0.5},
			Meta:   domain.Metadata{Title: "Projects", Content: "Built a chatbot"},
		},
	}
	if err := repo.Upsert(context.Background(), records); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Key != "twinrag:profile:doc:skills.languages[0]" {
		t.Errorf("doc key: got %q", got[0].Key)
	}
	if got[0].Fields["text"] != "Python" {
		t.Errorf("text field: got %q", got[0].Fields["text"])
	}
	if got[0].Fields["__vector"] != "\x00\x00\x80\x3f" {
		t.Errorf("vector field not little-endian float32: got %q", got[0].Fields["__vector"])
	}
	if _, ok := got[0].Fields["title"]; ok {
		t.Error("empty title must not be written")
	}
	if got[1].Fields["title"] != "Projects" || got[1].Fields["content"] != "Built a chatbot" {
		t.Errorf("second item fields: got %v", got[1].Fields)
	}
}

func TestUpsert_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	called := false
	ms.hSetMultiFn = func(context.Context, []db.HashSetItem) error {
		called = true
		return nil
	}

	if err := repo.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("Upsert(nil): %v", err)
	}
	if called {
		t.Error("empty upsert must not touch the store")
	}
}

func TestQuery_MapsEntriesToMatches(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "twinrag:profile:idx" {
			t.Errorf("index name: got %q", q.IndexName)
		}
		if q.K != 3 {
			t.Errorf("K: got %d", q.K)
		}
		wantReturn := []string{"text", "title", "content", "__vector_score"}
		if len(q.ReturnFields) != len(wantReturn) {
			t.Fatalf("return fields: got %v, want %v", q.ReturnFields, wantReturn)
		}
		for i, f := range wantReturn {
			if q.ReturnFields[i] != f {
				t.Errorf("return field [%d]: got %q, want %q", i, q.ReturnFields[i], f)
			}
		}
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{
					Key:   "twinrag:profile:doc:experience[0]",
					Score: 0.92,
					Fields: map[string]string{
						"text":  "Senior engineer at Acme",
						"title": "Experience",
					},
				},
			},
		}, nil
	}

	matches, err := repo.Query(context.Background(), []float32{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.ID != "experience[0]" {
		t.Errorf("key prefix should be trimmed: got %q", m.ID)
	}
	if m.Score != 0.92 {
		t.Errorf("score: got %f", m.Score)
	}
	if m.Meta.Text != "Senior engineer at Acme" || m.Meta.Title != "Experience" {
		t.Errorf("metadata: got %+v", m.Meta)
	}
}

func TestQuery_EmptyResult(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{}, nil
	}

	matches, err := repo.Query(context.Background(), []float32{0.1}, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if matches != nil {
		t.Errorf("expected nil matches, got %v", matches)
	}
}

func TestQuery_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	boom := errors.New("connection refused")
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, boom
	}

	if _, err := repo.Query(context.Background(), []float32{0.1}, 3); !errors.Is(err, boom) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestStamp_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)

	stored := map[string]string{}
	ms.hSetFn = func(_ context.Context, key string, fields map[string]string) error {
		if key != "twinrag:profile:index:meta" {
			t.Errorf("stamp key: got %q", key)
		}
		stored = fields
		return nil
	}
	ms.hGetAllFn = func(context.Context, string) (map[string]string, error) {
		return stored, nil
	}

	in := domain.IndexStamp{Provider: "openai", Model: "text-embedding-3-small", Dimensions: 1536}
	if err := repo.WriteStamp(context.Background(), in); err != nil {
		t.Fatalf("WriteStamp: %v", err)
	}

	out, ok, err := repo.ReadStamp(context.Background())
	if err != nil {
		t.Fatalf("ReadStamp: %v", err)
	}
	if !ok {
		t.Fatal("expected stamp to exist")
	}
	if out != in {
		t.Errorf("stamp round trip: got %+v want %+v", out, in)
	}
}

func TestReadStamp_Missing(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hGetAllFn = func(context.Context, string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, ok, err := repo.ReadStamp(context.Background())
	if err != nil {
		t.Fatalf("ReadStamp: %v", err)
	}
	if ok {
		t.Error("expected no stamp for a fresh index")
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "twinrag:profile:doc:*" {
			t.Errorf("scan pattern: got %q", pattern)
		}
		return []string{"a", "b", "c"}, nil
	}

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
}
