package query

import (
	"context"

	"github.com/civix-app/civix-backend/internal/entity"
)

type QueryUsecase interface {
	Ask(ctx context.Context, req *entity.AskRequest) (*entity.AskResponse, error)
}
