// Package index is the offline build path: it flattens a nested profile
// JSON into addressable fragments, embeds each, and upserts them into the
// vector store. Re-running against the same profile overwrites in place.
package index

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
	"github.com/kailas-cloud/twinrag/internal/domain/profile"
)

const progressEvery = 50

// Stats reports one index build run.
type Stats struct {
	Uploaded int
	Skipped  int
	Failed   int
}

// Service builds the profile index.
type Service struct {
	embed  Embedder
	repo   Repository
	stamp  domain.IndexStamp
	logger *zap.Logger
}

// New creates an index builder. stamp records which embedder configuration
// produced the vectors.
func New(embed Embedder, repo Repository, stamp domain.IndexStamp, logger *zap.Logger) *Service {
	return &Service{embed: embed, repo: repo, stamp: stamp, logger: logger}
}

// Build flattens profileJSON, embeds every non-blank fragment, and upserts
// each keyed by its flattened path. Per-record failures are logged and
// skipped so one bad fragment does not abort the run.
func (s *Service) Build(ctx context.Context, profileJSON []byte) (Stats, error) {
	docs, err := profile.Flatten(profileJSON)
	if err != nil {
		return Stats{}, fmt.Errorf("flatten profile: %w", err)
	}

	if _, err := s.repo.EnsureIndex(ctx); err != nil {
		return Stats{}, fmt.Errorf("ensure index: %w", err)
	}

	s.logger.Info("Building profile index", zap.Int("fragments", len(docs)))

	var stats Stats
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			stats.Skipped++
			continue
		}

		embRes, err := s.embed.Embed(ctx, doc.Text)
		if err != nil {
			s.logger.Warn("Failed to embed fragment, skipping",
				zap.String("key", doc.Key), zap.Error(err))
			stats.Failed++
			continue
		}

		record := domain.VectorRecord{
			ID:     doc.Key,
			Vector: embRes.Embedding,
			Meta:   domain.Metadata{Text: doc.Text},
		}
		if err := s.repo.Upsert(ctx, []domain.VectorRecord{record}); err != nil {
			s.logger.Warn("Failed to upsert fragment, skipping",
				zap.String("key", doc.Key), zap.Error(err))
			stats.Failed++
			continue
		}

		stats.Uploaded++
		if stats.Uploaded%progressEvery == 0 {
			s.logger.Info("Upload progress",
				zap.Int("uploaded", stats.Uploaded), zap.Int("total", len(docs)))
		}
	}

	if err := s.repo.WriteStamp(ctx, s.stamp); err != nil {
		s.logger.Warn("Failed to write index stamp", zap.Error(err))
	}

	s.logger.Info("Profile index built",
		zap.Int("uploaded", stats.Uploaded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// Count reports the number of fragments currently stored.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
