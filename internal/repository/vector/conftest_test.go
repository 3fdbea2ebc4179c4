package vector

import (
	"context"
	"testing"

	"github.com/kailas-cloud/twinrag/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hSetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	hSetFn        func(ctx context.Context, key string, fields map[string]string) error
	hGetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	scanFn        func(ctx context.Context, pattern string) ([]string, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hSetMultiFn != nil {
		return m.hSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hSetFn != nil {
		return m.hSetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hGetAllFn != nil {
		return m.hGetAllFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "twinrag:profile:", Options{Dimensions: 1536, M: 16, EFConstruct: 200})
	return repo, ms
}
