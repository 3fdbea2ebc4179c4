// Package format polishes generated answers for an interview setting,
// applying STAR structure where the answer describes past work.
package format

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

const (
	formatTemperature = 0.7
	formatMaxTokens   = 600
)

const promptTemplate = `You are an expert interview coach. Refine this response for an interview setting.

Original Question: %s
Current Response: %s

Improve the response to:
- Use STAR format (Situation, Task, Action, Result) if describing past work
- Include specific metrics and achievements when mentioned
- Sound confident, natural, and conversational
- Be concise but complete (2-4 sentences for simple questions, more for complex)
- Speak in first person
- Directly address the question

Return ONLY the improved response:`

// Service rewrites answers through one chat call. Like enhancement, it
// never fails its caller: provider errors fall back to the unmodified answer.
type Service struct {
	chat   Chat
	logger *zap.Logger
}

// New creates an interview formatting service.
func New(chat Chat, logger *zap.Logger) *Service {
	return &Service{chat: chat, logger: logger}
}

// Format returns the polished answer, or the original unchanged when the
// provider fails. question is the user's question before enhancement, so
// the coach sees what was actually asked.
func (s *Service) Format(ctx context.Context, answer, question string) (string, domain.StageOutcome) {
	reply, err := s.chat.Complete(ctx, domain.ChatRequest{
		User:        fmt.Sprintf(promptTemplate, question, answer),
		Temperature: formatTemperature,
		MaxTokens:   formatMaxTokens,
	})
	if err != nil {
		s.logger.Warn("Interview formatting failed, using unformatted answer", zap.Error(err))
		return answer, domain.FellBack(err.Error())
	}
	if reply == "" {
		s.logger.Warn("Interview formatting returned empty reply, using unformatted answer")
		return answer, domain.FellBack("empty reply")
	}

	return reply, domain.Applied()
}
