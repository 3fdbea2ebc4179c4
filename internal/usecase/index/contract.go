package index

import (
	"context"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

// Embedder vectorizes profile fragments.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Repository persists vectors and the index stamp.
type Repository interface {
	EnsureIndex(ctx context.Context) (bool, error)
	Upsert(ctx context.Context, records []domain.VectorRecord) error
	WriteStamp(ctx context.Context, stamp domain.IndexStamp) error
	Count(ctx context.Context) (int, error)
}
