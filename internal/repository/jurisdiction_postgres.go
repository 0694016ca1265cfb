package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JurisdictionRepository defines the interface for jurisdiction persistence
type JurisdictionRepository interface {
	Create(ctx context.Context, jurisdiction entity.Jurisdiction) (*entity.Jurisdiction, error)
	Get(ctx context.Context, id string) (*entity.Jurisdiction, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Jurisdiction, error)
	GetByNameState(ctx context.Context, name, state string) (*entity.Jurisdiction, error)
	List(ctx context.Context) ([]*entity.Jurisdiction, error)
	ChunkCount(ctx context.Context, id string) (int, error)
}

var _ JurisdictionRepository = &JurisdictionPostgres{}

// JurisdictionPostgres implements JurisdictionRepository using PostgreSQL
type JurisdictionPostgres struct {
	db *pgxpool.Pool
}

func NewJurisdictionPostgres(db *pgxpool.Pool) *JurisdictionPostgres {
	return &JurisdictionPostgres{db: db}
}

const jurisdictionColumns = "id, slug, name, state, type, created_at, updated_at"

func (r *JurisdictionPostgres) Create(ctx context.Context, jurisdiction entity.Jurisdiction) (*entity.Jurisdiction, error) {
	if jurisdiction.ID == "" {
		jurisdiction.ID = uuid.NewString()
	}
	if _, err := uuid.Parse(jurisdiction.ID); err != nil {
		return nil, fmt.Errorf("parse jurisdiction ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO jurisdictions (id, slug, name, state, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+jurisdictionColumns,
		jurisdiction.ID, jurisdiction.Slug, jurisdiction.Name, jurisdiction.State, jurisdiction.Type,
	)

	created, err := scanJurisdiction(row)
	if err != nil {
		return nil, fmt.Errorf("create jurisdiction: %w", err)
	}
	return created, nil
}

func (r *JurisdictionPostgres) Get(ctx context.Context, id string) (*entity.Jurisdiction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrJurisdictionNotFound, id)
	}

	row := r.db.QueryRow(ctx, `
		SELECT `+jurisdictionColumns+`
		FROM jurisdictions
		WHERE id = $1`,
		id,
	)

	jurisdiction, err := scanJurisdiction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", entity.ErrJurisdictionNotFound, id)
		}
		return nil, fmt.Errorf("get jurisdiction: %w", err)
	}
	return jurisdiction, nil
}

func (r *JurisdictionPostgres) GetBySlug(ctx context.Context, slug string) (*entity.Jurisdiction, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+jurisdictionColumns+`
		FROM jurisdictions
		WHERE slug = $1`,
		strings.ToLower(slug),
	)

	jurisdiction, err := scanJurisdiction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", entity.ErrJurisdictionNotFound, slug)
		}
		return nil, fmt.Errorf("get jurisdiction by slug: %w", err)
	}
	return jurisdiction, nil
}

// GetByNameState resolves "Name, STATE" references case-insensitively.
func (r *JurisdictionPostgres) GetByNameState(ctx context.Context, name, state string) (*entity.Jurisdiction, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+jurisdictionColumns+`
		FROM jurisdictions
		WHERE lower(name) = lower($1) AND lower(state) = lower($2)`,
		strings.TrimSpace(name), strings.TrimSpace(state),
	)

	jurisdiction, err := scanJurisdiction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s, %s", entity.ErrJurisdictionNotFound, name, state)
		}
		return nil, fmt.Errorf("get jurisdiction by name: %w", err)
	}
	return jurisdiction, nil
}

func (r *JurisdictionPostgres) List(ctx context.Context) ([]*entity.Jurisdiction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+jurisdictionColumns+`
		FROM jurisdictions
		ORDER BY state, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list jurisdictions: %w", err)
	}
	defer rows.Close()

	var jurisdictions []*entity.Jurisdiction
	for rows.Next() {
		jurisdiction, err := scanJurisdiction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan jurisdiction: %w", err)
		}
		jurisdictions = append(jurisdictions, jurisdiction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jurisdictions: %w", err)
	}

	return jurisdictions, nil
}

// ChunkCount returns how many ordinance chunks a jurisdiction has, embedded
// or not. Zero means the jurisdiction has no ordinance data yet.
func (r *JurisdictionPostgres) ChunkCount(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT count(*)
		FROM ordinance_chunks
		WHERE jurisdiction_id = $1`,
		id,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ordinance chunks: %w", err)
	}
	return count, nil
}

func scanJurisdiction(row pgx.Row) (*entity.Jurisdiction, error) {
	var j entity.Jurisdiction
	err := row.Scan(&j.ID, &j.Slug, &j.Name, &j.State, &j.Type, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
