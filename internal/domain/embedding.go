package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// PaddedEmbedder is a domain decorator that right-pads vectors with zeros to a
// fixed dimensionality. The store index has one dimensionality for its
// lifetime; a local model producing shorter vectors must be padded to it or
// retrieval silently returns irrelevant matches.
type PaddedEmbedder struct {
	inner Embedder
	dim   int
}

// NewPaddedEmbedder creates a decorator that pads vectors to dim entries.
func NewPaddedEmbedder(inner Embedder, dim int) *PaddedEmbedder {
	return &PaddedEmbedder{inner: inner, dim: dim}
}

// Embed delegates to the inner embedder and pads the result.
func (e *PaddedEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, err
	}
	padded, err := PadVector(result.Embedding, e.dim)
	if err != nil {
		return EmbeddingResult{}, err
	}
	result.Embedding = padded
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (e *PaddedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// PadVector right-pads v with zeros to dim entries. A vector longer than dim
// is a configuration error, not something to truncate silently.
func PadVector(v []float32, dim int) ([]float32, error) {
	if len(v) > dim {
		return nil, fmt.Errorf("%w: got %d, index expects %d", ErrVectorDimMismatch, len(v), dim)
	}
	if len(v) == dim {
		return v, nil
	}
	padded := make([]float32, dim)
	copy(padded, v)
	return padded, nil
}
