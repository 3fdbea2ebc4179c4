// Package bootstrap assembles the object graph the three binaries share:
// store, embedder chain, chat providers, repositories, and the pipeline.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/config"
	"github.com/kailas-cloud/twinrag/internal/db"
	dbRedis "github.com/kailas-cloud/twinrag/internal/db/redis"
	"github.com/kailas-cloud/twinrag/internal/domain"
	"github.com/kailas-cloud/twinrag/internal/metrics"
	"github.com/kailas-cloud/twinrag/internal/repository/embcache"
	vectorrepo "github.com/kailas-cloud/twinrag/internal/repository/vector"
	ollamaEmb "github.com/kailas-cloud/twinrag/internal/transport/ollama"
	openaiTransport "github.com/kailas-cloud/twinrag/internal/transport/openai"
	enhanceuc "github.com/kailas-cloud/twinrag/internal/usecase/enhance"
	formatuc "github.com/kailas-cloud/twinrag/internal/usecase/format"
	generateuc "github.com/kailas-cloud/twinrag/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/twinrag/internal/usecase/health"
	indexuc "github.com/kailas-cloud/twinrag/internal/usecase/index"
	pipelineuc "github.com/kailas-cloud/twinrag/internal/usecase/pipeline"
	retrieveuc "github.com/kailas-cloud/twinrag/internal/usecase/retrieve"
)

// Container holds the wired application services.
type Container struct {
	Store    db.Store
	Vectors  *vectorrepo.Repo
	Embedder domain.Embedder
	Stamp    domain.IndexStamp
	Pipeline *pipelineuc.Service
	Indexer  *indexuc.Service
	Health   *healthuc.Service

	logger *zap.Logger
}

// New builds the container. The caller owns Close.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Store.Addrs,
		Password: cfg.Store.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	readiness := time.Duration(cfg.Store.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}

	embedder, stamp := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", stamp.Provider),
		zap.String("model", stamp.Model),
		zap.Int("dimensions", stamp.Dimensions),
	)

	vectors := vectorrepo.New(store, cfg.Store.KeyPrefix+"profile:", vectorrepo.Options{
		Dimensions:  cfg.Embedding.PadTo,
		M:           cfg.Embedding.HNSWM,
		EFConstruct: cfg.Embedding.HNSWEFConstruct,
	})

	primary, secondary := buildChatProviders(cfg, logger)

	enhanceSvc := enhanceuc.New(primary.Chat, logger)
	retrieveSvc := retrieveuc.New(embedder, vectors, cfg.Pipeline.TopK, cfg.Pipeline.MaxTopK, logger)
	generateSvc := generateuc.New(primary, secondary, cfg.Pipeline.Persona, cfg.Pipeline.ProfileContext, logger)
	formatSvc := formatuc.New(primary.Chat, logger)

	pipeline := pipelineuc.New(
		enhanceSvc, retrieveSvc, generateSvc, formatSvc,
		pipelineuc.Options{
			DisableEnhance:   cfg.Pipeline.DisableEnhance,
			DisableFormat:    cfg.Pipeline.DisableFormat,
			DisableRetrieval: cfg.Pipeline.DisableRetrieval,
		},
		logger,
	)

	c := &Container{
		Store:    store,
		Vectors:  vectors,
		Embedder: embedder,
		Stamp:    stamp,
		Pipeline: pipeline,
		Indexer:  indexuc.New(embedder, vectors, stamp, logger),
		logger:   logger,
	}
	c.Health = healthuc.New(store, embedderHealth(embedder), chatHealth(primary.Chat))
	return c, nil
}

// Close releases the container's resources.
func (c *Container) Close() {
	c.Store.Close()
}

// Features reports the enabled pipeline capabilities for GET /.
func (c *Container) Features(cfg config.Config) []string {
	features := make([]string, 0, 4)
	if !cfg.Pipeline.DisableEnhance {
		features = append(features, "query_enhancement")
	}
	if !cfg.Pipeline.DisableFormat {
		features = append(features, "interview_formatting", "star_format")
	}
	if !cfg.Pipeline.DisableRetrieval {
		features = append(features, "vector_retrieval")
	}
	return features
}

// CheckIndexStamp warns when the stored index was built by a different
// embedder configuration than the one now serving queries. A mismatch
// makes retrieval silently irrelevant, so it is surfaced loudly at start.
func (c *Container) CheckIndexStamp(ctx context.Context) {
	stored, ok, err := c.Vectors.ReadStamp(ctx)
	if err != nil {
		c.logger.Warn("Failed to read index stamp", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	if stored != c.Stamp {
		c.logger.Warn("Index was built with a different embedder configuration",
			zap.String("index_provider", stored.Provider),
			zap.String("index_model", stored.Model),
			zap.Int("index_dimensions", stored.Dimensions),
			zap.String("active_provider", c.Stamp.Provider),
			zap.String("active_model", c.Stamp.Model),
			zap.Int("active_dimensions", c.Stamp.Dimensions),
		)
	}
}

// buildEmbedder assembles the decorator chain: provider -> cache -> pad.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) (domain.Embedder, domain.IndexStamp) {
	var base domain.Embedder
	var stamp domain.IndexStamp

	switch cfg.Embedding.Provider {
	case "local":
		base = ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			BaseURL: cfg.Embedding.Ollama.BaseURL,
			Model:   cfg.Embedding.Ollama.Model,
			Logger:  logger,
		})
		stamp = domain.IndexStamp{
			Provider:   "ollama",
			Model:      cfg.Embedding.Ollama.Model,
			Dimensions: cfg.Embedding.PadTo,
		}
	default:
		base = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.Embedding.OpenAI.APIKey,
			BaseURL:    cfg.Embedding.OpenAI.BaseURL,
			Model:      cfg.Embedding.OpenAI.Model,
			Dimensions: cfg.Embedding.OpenAI.Dimensions,
			Provider:   "openai",
			Logger:     logger,
		})
		stamp = domain.IndexStamp{
			Provider:   "openai",
			Model:      cfg.Embedding.OpenAI.Model,
			Dimensions: cfg.Embedding.PadTo,
		}
	}

	embedder := base
	if cfg.Embedding.Cache {
		embedder = embcache.New(
			base, store, cfg.Store.KeyPrefix+"emb_cache:",
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	// Pad outermost so cached entries keep the provider's native width.
	return domain.NewPaddedEmbedder(embedder, cfg.Embedding.PadTo), stamp
}

// buildChatProviders creates the primary and optional secondary chat clients.
func buildChatProviders(cfg config.Config, logger *zap.Logger) (generateuc.Provider, *generateuc.Provider) {
	primary := newChatProvider(cfg.LLM.Primary, cfg.LLM.Providers[cfg.LLM.Primary], logger)

	var secondary *generateuc.Provider
	if cfg.LLM.Secondary != "" {
		p := newChatProvider(cfg.LLM.Secondary, cfg.LLM.Providers[cfg.LLM.Secondary], logger)
		secondary = &p
	}
	return primary, secondary
}

func newChatProvider(name string, cfg config.ProviderConfig, logger *zap.Logger) generateuc.Provider {
	return generateuc.Provider{
		Name: name,
		Chat: openaiTransport.NewChatClient(&openaiTransport.ChatConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Provider:    name,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Logger:      logger,
		}),
	}
}

func embedderHealth(e domain.Embedder) healthuc.ProviderChecker {
	if hc, ok := e.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}

func chatHealth(c enhanceuc.Chat) healthuc.ProviderChecker {
	if hc, ok := c.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}
