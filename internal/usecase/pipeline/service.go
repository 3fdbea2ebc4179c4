// Package pipeline composes the four stages — enhance, retrieve, generate,
// format — into the single Ask operation behind the HTTP adapter and CLI.
package pipeline

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
	"github.com/kailas-cloud/twinrag/internal/metrics"
)

// Options gates the optional stages server-wide, independent of per-request
// flags. Retrieval off means every answer is generated directly from the
// static persona context.
type Options struct {
	DisableEnhance   bool
	DisableFormat    bool
	DisableRetrieval bool
}

// Service runs the question pipeline strictly sequentially. Each request is
// independent: no session state, no conversation memory.
type Service struct {
	enhancer  Enhancer
	retriever Retriever
	generator Generator
	formatter Formatter
	opts      Options
	logger    *zap.Logger
}

// New creates the pipeline service.
func New(
	enhancer Enhancer,
	retriever Retriever,
	generator Generator,
	formatter Formatter,
	opts Options,
	logger *zap.Logger,
) *Service {
	return &Service{
		enhancer:  enhancer,
		retriever: retriever,
		generator: generator,
		formatter: formatter,
		opts:      opts,
		logger:    logger,
	}
}

// Ask answers one question. A blank question is domain.ErrQuestionRequired
// before any provider is touched; a failed enhancement or formatting stage
// degrades silently; a failed retrieval degrades to the no-information
// answer; only exhausted generation surfaces as an error.
func (s *Service) Ask(ctx context.Context, req domain.AskRequest) (domain.AskResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return domain.AskResult{}, domain.ErrQuestionRequired
	}

	result := domain.AskResult{
		OriginalQuestion: question,
		Enhance:          domain.Skipped(),
		Format:           domain.Skipped(),
	}

	query := question
	if req.EnhanceQuery && !s.opts.DisableEnhance {
		query, result.Enhance = s.enhancer.Enhance(ctx, question)
		result.EnhancedQuestion = query
	}
	recordStage("enhance", result.Enhance)

	retrievalContext, canned := s.retrieve(ctx, query, req.TopK, &result)
	if canned != "" {
		result.Answer = canned
		recordStage("format", result.Format)
		return result, nil
	}

	answer, err := s.generator.Answer(ctx, query, retrievalContext)
	if err != nil {
		return domain.AskResult{}, err
	}

	if req.FormatResponse && !s.opts.DisableFormat {
		// The coach sees the pre-enhancement question: it polishes the
		// answer for what the user actually asked.
		answer, result.Format = s.formatter.Format(ctx, answer, question)
	}
	recordStage("format", result.Format)

	result.Answer = answer
	return result, nil
}

// retrieve runs the retrieval stage and translates its degraded modes into
// canned answers. A non-empty second return value short-circuits the
// pipeline without invoking the generator.
func (s *Service) retrieve(ctx context.Context, query string, topK int, result *domain.AskResult) (string, string) {
	if s.opts.DisableRetrieval {
		return "", ""
	}

	rc, err := s.retriever.Retrieve(ctx, query, topK)
	result.Matches = len(rc.Matches)

	switch {
	case err == nil:
		return rc.Context, ""
	case errors.Is(err, domain.ErrNoInformation):
		return "", domain.NoInformationAnswer
	case errors.Is(err, domain.ErrNoExtractableText):
		return "", domain.NoExtractableTextAnswer
	default:
		s.logger.Error("Retrieval failed, degrading to no-information answer", zap.Error(err))
		return "", domain.NoInformationAnswer
	}
}

func recordStage(stage string, outcome domain.StageOutcome) {
	metrics.PipelineStageTotal.WithLabelValues(stage, string(outcome.Status)).Inc()
}
