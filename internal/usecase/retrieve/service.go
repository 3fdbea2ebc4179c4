// Package retrieve embeds the query, runs the nearest-neighbor search, and
// assembles the retrieved fragments into one context block for generation.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

// Service is the retrieval stage.
type Service struct {
	embed       Embedder
	search      Searcher
	defaultTopK int
	maxTopK     int
	logger      *zap.Logger
}

// New creates a retrieval service. defaultTopK is used when the request
// leaves topK unset; maxTopK caps client-supplied values.
func New(embed Embedder, search Searcher, defaultTopK, maxTopK int, logger *zap.Logger) *Service {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	if maxTopK <= 0 {
		maxTopK = 10
	}
	return &Service{
		embed:       embed,
		search:      search,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
		logger:      logger,
	}
}

// Retrieve embeds query and returns the assembled context. Zero matches
// yield domain.ErrNoInformation; matches that all lack usable text yield
// domain.ErrNoExtractableText. Both are distinct from provider failures.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) (domain.RetrievalContext, error) {
	topK = s.normalizeTopK(topK)

	embRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		return domain.RetrievalContext{}, fmt.Errorf("vectorize query: %w", err)
	}

	matches, err := s.search.Query(ctx, embRes.Embedding, topK)
	if err != nil {
		return domain.RetrievalContext{}, fmt.Errorf("knn query: %w", err)
	}
	if len(matches) == 0 {
		return domain.RetrievalContext{}, domain.ErrNoInformation
	}

	extracts := make([]string, 0, len(matches))
	for _, m := range matches {
		s.logger.Debug("Retrieved fragment",
			zap.String("id", m.ID),
			zap.Float64("score", m.Score),
		)
		if text := m.Meta.ExtractText(); text != "" {
			extracts = append(extracts, text)
		}
	}
	if len(extracts) == 0 {
		return domain.RetrievalContext{Matches: matches}, domain.ErrNoExtractableText
	}

	return domain.RetrievalContext{
		Context: strings.Join(extracts, "\n\n"),
		Matches: matches,
	}, nil
}

func (s *Service) normalizeTopK(topK int) int {
	if topK <= 0 {
		return s.defaultTopK
	}
	if topK > s.maxTopK {
		return s.maxTopK
	}
	return topK
}
