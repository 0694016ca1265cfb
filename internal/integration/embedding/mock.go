package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockDimensions = 16

// MockConnector produces deterministic pseudo-embeddings without calling the
// API. Identical texts map to identical vectors, so similarity ranking stays
// meaningful in local runs and tests.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Embed(ctx context.Context, text string, taskType entity.EmbeddingTaskType) ([]float64, error) {
	ctxzap.Debug(ctx, "[MOCK] generating embedding", zap.Int("text_length", len(text)))
	return pseudoEmbedding(text), nil
}

func (m *MockConnector) EmbedBatch(ctx context.Context, texts []string, taskType entity.EmbeddingTaskType) ([][]float64, error) {
	ctxzap.Debug(ctx, "[MOCK] generating batch embeddings", zap.Int("count", len(texts)))

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = pseudoEmbedding(text)
	}
	return vectors, nil
}

// pseudoEmbedding derives a unit vector from the text's FNV hash stream.
func pseudoEmbedding(text string) []float64 {
	vec := make([]float64, mockDimensions)
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float64(int64(seed>>1))/float64(math.MaxInt64) - 0.5
		norm += vec[i] * vec[i]
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
