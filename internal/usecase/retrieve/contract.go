package retrieve

import (
	"context"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher runs KNN queries against the vector store.
type Searcher interface {
	Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error)
}
