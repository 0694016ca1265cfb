package query

import (
	"context"

	"github.com/civix-app/civix-backend/internal/entity"
)

type EmbeddingConnector interface {
	Embed(ctx context.Context, text string, taskType entity.EmbeddingTaskType) ([]float64, error)
}

type CompletionProvider interface {
	Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResult, error)
	Name() string
}
