package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/civix-app/civix-backend/internal/config"
	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/integration/embedding"
	"github.com/civix-app/civix-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Backfills embeddings for ordinance chunks that were ingested without one.
// Runs until no pending chunks remain for the target jurisdiction.
func main() {
	slug := flag.String("jurisdiction", "", "jurisdiction slug to embed (required)")
	batchSize := flag.Int("batch", 50, "chunks per embedding batch")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if *slug == "" {
		fmt.Fprintln(os.Stderr, "usage: embed-ordinances -jurisdiction <slug> [-batch N]")
		os.Exit(2)
	}
	if *batchSize < 1 {
		log.Fatal("batch size must be positive")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	jurisdictionRepo := repository.NewJurisdictionPostgres(db)
	ordinanceRepo := repository.NewOrdinancePostgres(db)

	var embedder interface {
		EmbedBatch(ctx context.Context, texts []string, taskType entity.EmbeddingTaskType) ([][]float64, error)
	}
	if cfg.EnableMocks {
		embedder = embedding.NewMockConnector(logger)
	} else {
		embedder = embedding.NewConnector(cfg.EmbeddingConnectorCfg, logger)
	}

	jurisdiction, err := jurisdictionRepo.GetBySlug(ctx, *slug)
	if err != nil {
		logger.Fatal("Failed to resolve jurisdiction", zap.String("slug", *slug), zap.Error(err))
	}

	logger.Info("Starting embedding backfill",
		zap.String("jurisdiction", jurisdiction.Name),
		zap.String("state", jurisdiction.State),
		zap.Int("batch_size", *batchSize),
	)

	total := 0
	for {
		chunks, err := ordinanceRepo.ListWithoutEmbedding(ctx, jurisdiction.ID, *batchSize)
		if err != nil {
			logger.Fatal("Failed to list pending chunks", zap.Error(err))
		}
		if len(chunks) == 0 {
			break
		}

		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}

		embeddings, err := embedder.EmbedBatch(ctx, texts, entity.EmbeddingTaskDocument)
		if err != nil {
			logger.Fatal("Embedding batch failed", zap.Int("processed", total), zap.Error(err))
		}

		for i, chunk := range chunks {
			if err := ordinanceRepo.SetEmbedding(ctx, chunk.ID, embeddings[i]); err != nil {
				logger.Fatal("Failed to store embedding",
					zap.String("chunk_id", chunk.ID),
					zap.Error(err),
				)
			}
		}

		total += len(chunks)
		logger.Info("Embedded batch", zap.Int("batch", len(chunks)), zap.Int("total", total))
	}

	logger.Info("Embedding backfill complete", zap.Int("chunks_embedded", total))
}
