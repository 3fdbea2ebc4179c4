// Package enhance rewrites user questions into retrieval-friendly queries
// before the vector search runs.
package enhance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

const (
	enhanceTemperature = 0.3
	enhanceMaxTokens   = 150
)

const promptTemplate = `You are a query optimization assistant for a professional profile system.

Improve this question to better search professional profile data:

Original Question: %s

Enhanced query should:
- Include relevant synonyms (e.g., "built" → "developed, created, implemented")
- Add professional context (e.g., "Python" → "Python development, Python frameworks")
- Focus on interview-relevant aspects
- Expand acronyms if present

Return ONLY the enhanced query, no explanations:`

// Service rewrites questions through one chat call. It never fails its
// caller: any provider error falls back to the original question.
type Service struct {
	chat   Chat
	logger *zap.Logger
}

// New creates a query enhancement service.
func New(chat Chat, logger *zap.Logger) *Service {
	return &Service{chat: chat, logger: logger}
}

// Enhance returns the rewritten question, or the original unchanged when
// the provider fails. Single attempt, no retries.
func (s *Service) Enhance(ctx context.Context, question string) (string, domain.StageOutcome) {
	reply, err := s.chat.Complete(ctx, domain.ChatRequest{
		User:        fmt.Sprintf(promptTemplate, question),
		Temperature: enhanceTemperature,
		MaxTokens:   enhanceMaxTokens,
	})
	if err != nil {
		s.logger.Warn("Query enhancement failed, using original question", zap.Error(err))
		return question, domain.FellBack(err.Error())
	}
	if reply == "" {
		s.logger.Warn("Query enhancement returned empty reply, using original question")
		return question, domain.FellBack("empty reply")
	}

	s.logger.Debug("Query enhanced",
		zap.String("original", question),
		zap.String("enhanced", reply),
	)
	return reply, domain.Applied()
}
