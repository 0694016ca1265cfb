package decision

import (
	"context"

	"github.com/civix-app/civix-backend/internal/entity"
)

type DecisionUsecase interface {
	Evaluate(ctx context.Context, req *entity.EvaluateRequest) (*entity.EvaluationResult, error)
}
