package jurisdiction

import (
	"context"

	"github.com/civix-app/civix-backend/internal/entity"
)

type JurisdictionReader interface {
	List(ctx context.Context) ([]*entity.Jurisdiction, error)
	GetByNameState(ctx context.Context, name, state string) (*entity.Jurisdiction, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Jurisdiction, error)
}
