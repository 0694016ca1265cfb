// Package query implements retrieval-augmented ordinance Q&A: embed the
// question, rank chunks by cosine similarity, synthesize an answer with
// citations.
package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/pkg/logger"
	"github.com/civix-app/civix-backend/internal/pkg/validator"
	"github.com/civix-app/civix-backend/internal/pkg/vector"
	"github.com/civix-app/civix-backend/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// QueryUsecase implements ordinance question answering
type QueryUsecase struct {
	jurisdictionRepo repository.JurisdictionRepository
	ordinanceRepo    repository.OrdinanceRepository
	embedder         EmbeddingConnector
	completer        CompletionProvider
	validator        *validator.Validator
	maxTokens        int
	temperature      float64
	logger           *zap.Logger
}

// NewUsecase creates a new query use case
func NewUsecase(
	jurisdictionRepo repository.JurisdictionRepository,
	ordinanceRepo repository.OrdinanceRepository,
	embedder EmbeddingConnector,
	completer CompletionProvider,
	validator *validator.Validator,
	maxTokens int,
	temperature float64,
	logger *zap.Logger,
) *QueryUsecase {
	return &QueryUsecase{
		jurisdictionRepo: jurisdictionRepo,
		ordinanceRepo:    ordinanceRepo,
		embedder:         embedder,
		completer:        completer,
		validator:        validator,
		maxTokens:        maxTokens,
		temperature:      temperature,
		logger:           logger,
	}
}

type scoredChunk struct {
	chunk      *entity.OrdinanceChunk
	similarity float64
}

// Ask answers a question about a jurisdiction's ordinances. A jurisdiction
// without ordinance data gets a graceful answer with empty sources; an
// unknown jurisdiction is an error.
func (uc *QueryUsecase) Ask(ctx context.Context, req *entity.AskRequest) (*entity.AskResponse, error) {
	if err := uc.validator.ValidateAsk(req); err != nil {
		return nil, err
	}

	jurisdiction, err := uc.jurisdictionRepo.Get(ctx, req.JurisdictionID)
	if err != nil {
		return nil, err
	}
	ctx = logger.AddFields(ctx,
		zap.String("jurisdiction", jurisdiction.Slug),
	)

	chunkCount, err := uc.jurisdictionRepo.ChunkCount(ctx, jurisdiction.ID)
	if err != nil {
		return nil, err
	}
	if chunkCount == 0 {
		ctxzap.Info(ctx, "jurisdiction has no ordinance data", zap.String("jurisdiction_id", jurisdiction.ID))
		return uc.noDataResponse(req, jurisdiction,
			fmt.Sprintf("I don't have ordinance data for %s, %s yet. We're working on adding more cities!",
				jurisdiction.Name, jurisdiction.State)), nil
	}

	queryEmbedding, err := uc.embedder.Embed(ctx, req.Question, entity.EmbeddingTaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	allChunks, err := uc.ordinanceRepo.ListByJurisdiction(ctx, jurisdiction.ID)
	if err != nil {
		return nil, err
	}

	// Only chunks with embeddings take part in scoring.
	scored := make([]scoredChunk, 0, len(allChunks))
	for _, chunk := range allChunks {
		if !chunk.HasEmbedding() {
			continue
		}
		similarity, err := vector.Cosine(queryEmbedding, chunk.Embedding)
		if err != nil {
			ctxzap.Warn(ctx, "skipping chunk with incompatible embedding",
				zap.String("chunk_id", chunk.ID),
				zap.Error(err),
			)
			continue
		}
		scored = append(scored, scoredChunk{chunk: chunk, similarity: similarity})
	}

	if len(scored) == 0 {
		return uc.noDataResponse(req, jurisdiction,
			fmt.Sprintf("No ordinance data found for %s, %s.", jurisdiction.Name, jurisdiction.State)), nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})

	topK := req.TopK
	if topK > len(scored) {
		topK = len(scored)
	}
	top := scored[:topK]

	promptContext := make([]chunkContext, len(top))
	similarities := make([]float64, len(top))
	for i, sc := range top {
		promptContext[i] = chunkContext{
			Citation: citationLabel(jurisdiction.Name, sc.chunk),
			Title:    sc.chunk.Title,
			Content:  sc.chunk.Content,
		}
		similarities[i] = sc.similarity
	}

	ctxzap.Info(ctx, "retrieved ordinance chunks",
		zap.Int("chunks_searched", len(scored)),
		zap.Int("top_k", topK),
		zap.Float64("top_similarity", similarities[0]),
	)

	result, err := uc.completer.Complete(ctx, &entity.CompletionRequest{
		System:      buildSystemPrompt(jurisdiction.Name),
		Prompt:      buildUserPrompt(req.Question, jurisdiction.Name, jurisdiction.State, promptContext),
		MaxTokens:   uc.maxTokens,
		Temperature: uc.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	sources := make([]entity.AskSource, len(top))
	for i, sc := range top {
		sources[i] = entity.AskSource{
			Citation:   citationLabel(jurisdiction.Name, sc.chunk),
			Title:      sc.chunk.Title,
			Chapter:    sc.chunk.Chapter,
			Section:    sc.chunk.Section,
			Similarity: vector.Percent(sc.similarity),
			URL:        sc.chunk.SourceURL,
		}
	}

	return &entity.AskResponse{
		Answer:  result.Text,
		Sources: sources,
		Jurisdiction: entity.AskJurisdiction{
			ID:    jurisdiction.ID,
			Name:  jurisdiction.Name,
			State: jurisdiction.State,
		},
		Metadata: entity.AskMetadata{
			Question:       req.Question,
			ChunksSearched: len(scored),
			TopChunksUsed:  topK,
			Provider:       result.Provider,
			TokensUsed:     result.TokensUsed,
			Confidence:     answerConfidence(similarities, result.Text),
		},
	}, nil
}

func (uc *QueryUsecase) noDataResponse(req *entity.AskRequest, jurisdiction *entity.Jurisdiction, answer string) *entity.AskResponse {
	return &entity.AskResponse{
		Answer:  answer,
		Sources: []entity.AskSource{},
		Jurisdiction: entity.AskJurisdiction{
			ID:    jurisdiction.ID,
			Name:  jurisdiction.Name,
			State: jurisdiction.State,
		},
		Metadata: entity.AskMetadata{
			Question:   req.Question,
			Confidence: "low",
		},
	}
}
