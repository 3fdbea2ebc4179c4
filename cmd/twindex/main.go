// Command twindex builds the profile vector index offline: it flattens a
// profile JSON document, embeds each fragment and uploads the records to
// the store, then stamps the index with the embedder configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/bootstrap"
	"github.com/kailas-cloud/twinrag/internal/config"
	logpkg "github.com/kailas-cloud/twinrag/internal/logger"
	"github.com/kailas-cloud/twinrag/internal/version"
)

func main() {
	profilePath := flag.String("profile", "digitaltwin.json", "path to the profile JSON document")
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Starting twindex",
		zap.String("env", env),
		zap.String("version", version.Version),
		zap.String("profile", *profilePath),
	)

	profileJSON, err := os.ReadFile(*profilePath)
	if err != nil {
		logger.Fatal("Failed to read profile", zap.Error(err))
	}

	ctx := context.Background()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	stats, err := app.Indexer.Build(ctx, profileJSON)
	if err != nil {
		logger.Fatal("Index build failed", zap.Error(err))
	}

	total, err := app.Indexer.Count(ctx)
	if err != nil {
		logger.Warn("Failed to count indexed documents", zap.Error(err))
	}

	fmt.Printf("Uploaded %d documents (%d skipped, %d failed), %d in index\n",
		stats.Uploaded, stats.Skipped, stats.Failed, total)

	if stats.Failed > 0 {
		os.Exit(1)
	}
}
