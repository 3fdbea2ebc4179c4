package generate

import (
	"context"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

// Chat is the completion contract for answer generation.
type Chat interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}

// Provider is a named chat backend. The name appears in logs when the
// fallback chain advances.
type Provider struct {
	Name string
	Chat Chat
}
