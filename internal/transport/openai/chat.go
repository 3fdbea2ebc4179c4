package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
	"github.com/kailas-cloud/twinrag/internal/metrics"
)

// ChatClient is a chat completion provider using the OpenAI-compatible
// API. Groq exposes the same endpoints under its own BaseURL, so the one
// client type covers both providers.
type ChatClient struct {
	client      *openai.Client
	model       string
	provider    string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// ChatConfig holds the chat provider settings. Temperature and MaxTokens
// are defaults used when a request leaves them zero.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Provider    string
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat completion client.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		provider:    cfg.Provider,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// Complete issues one chat completion. The reply is returned trimmed;
// an empty choice list is an error, not an empty answer.
func (c *ChatClient) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, apiReq)

	duration := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return "", parseChatError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.ChatRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrChatProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.ChatTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ChatTokensTotal.WithLabelValues(c.provider, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.ChatTokensTotal.WithLabelValues(c.provider, c.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *ChatClient) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseChatError wraps API failures with domain.ErrChatProviderError so
// callers can decide on provider fallback with errors.Is.
func parseChatError(err error) error {
	return parseAPIError(err, "chat", domain.ErrChatProviderError)
}
