package enhance

import (
	"context"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

// Chat is the completion contract for query rewriting.
type Chat interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}
