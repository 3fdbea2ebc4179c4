package format

import (
	"context"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

// Chat is the completion contract for interview formatting.
type Chat interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}
