// Package generate produces the first-person answer from the retrieved
// context, with a single-step provider fallback chain.
package generate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
	"github.com/kailas-cloud/twinrag/internal/metrics"
)

// DefaultPersona is the system prompt used when the config leaves the
// persona unset.
const DefaultPersona = "You are an AI digital twin. Answer questions as if you are the person, " +
	"speaking in first person about your background, skills, and experience."

const (
	generateTemperature = 0.7
	contextMaxTokens    = 500
	directMaxTokens     = 700
)

const contextPromptTemplate = `Based on the following information about yourself, answer the question.
Speak in first person as if you are describing your own background.

Your Information:
%s

Question: %s

Provide a helpful, professional response:`

const directPromptTemplate = `%s

Question: %s

Provide a helpful, professional response in first person, including specific examples and metrics when relevant:`

// Service is the generation stage. It asks the primary provider, and on
// failure makes at most one attempt against the secondary with an
// identically built request. No backoff.
type Service struct {
	primary        Provider
	secondary      *Provider
	persona        string
	profileContext string
	logger         *zap.Logger
}

// New creates a generation service. secondary may be nil; profileContext
// is the static persona background used when retrieval is disabled.
func New(primary Provider, secondary *Provider, persona, profileContext string, logger *zap.Logger) *Service {
	if persona == "" {
		persona = DefaultPersona
	}
	return &Service{
		primary:        primary,
		secondary:      secondary,
		persona:        persona,
		profileContext: profileContext,
		logger:         logger,
	}
}

// Answer generates a reply for question. A non-empty retrievalContext
// selects the grounded prompt; an empty one selects the direct prompt
// built on the static profile context. Exhausting all providers returns
// an error wrapped in domain.ErrGenerationFailed.
func (s *Service) Answer(ctx context.Context, question, retrievalContext string) (string, error) {
	req := s.buildRequest(question, retrievalContext)

	answer, err := s.primary.Chat.Complete(ctx, req)
	if err == nil {
		return answer, nil
	}

	if s.secondary == nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrGenerationFailed, s.primary.Name, err)
	}

	s.logger.Warn("Primary chat provider failed, trying secondary",
		zap.String("primary", s.primary.Name),
		zap.String("secondary", s.secondary.Name),
		zap.Error(err),
	)
	metrics.GenerationFallbacksTotal.Inc()

	answer, err2 := s.secondary.Chat.Complete(ctx, req)
	if err2 == nil {
		return answer, nil
	}

	return "", fmt.Errorf("%w: %s: %v; %s: %w",
		domain.ErrGenerationFailed, s.primary.Name, err, s.secondary.Name, err2)
}

func (s *Service) buildRequest(question, retrievalContext string) domain.ChatRequest {
	if retrievalContext != "" {
		return domain.ChatRequest{
			System:      s.persona,
			User:        fmt.Sprintf(contextPromptTemplate, retrievalContext, question),
			Temperature: generateTemperature,
			MaxTokens:   contextMaxTokens,
		}
	}
	return domain.ChatRequest{
		System:      s.persona,
		User:        fmt.Sprintf(directPromptTemplate, s.profileContext, question),
		Temperature: generateTemperature,
		MaxTokens:   directMaxTokens,
	}
}
