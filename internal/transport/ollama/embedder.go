// Package ollama is the local embedding transport. It talks to an Ollama
// daemon over its HTTP API, so the index can be built and queried without
// any external provider.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
	"github.com/kailas-cloud/twinrag/internal/metrics"
)

const providerName = "ollama"

// Embedder is an embedding provider backed by a local Ollama daemon.
type Embedder struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the Ollama provider settings.
type Config struct {
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewEmbedder creates an Ollama embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "all-minilm"
	}

	return &Embedder{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{},
		logger:  cfg.Logger,
	}
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed implements domain.Embedder. Ollama reports no token usage, so the
// result carries the vector only.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Prompt: text})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := e.http.Do(req)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("ollama request: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("read ollama response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("ollama embedding error %d: %s: %w",
			resp.StatusCode, string(raw), domain.ErrEmbeddingProviderError)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("parse ollama response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())

	// Ollama returns float64 on the wire.
	vec := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		vec[i] = float32(v)
	}

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck verifies the daemon is reachable via its tag listing.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health status %d", resp.StatusCode)
	}
	return nil
}
