package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrdinanceRepository defines the interface for ordinance chunk persistence
type OrdinanceRepository interface {
	Create(ctx context.Context, chunk entity.OrdinanceChunk) (*entity.OrdinanceChunk, error)
	Get(ctx context.Context, id string) (*entity.OrdinanceChunk, error)
	ListByJurisdiction(ctx context.Context, jurisdictionID string) ([]*entity.OrdinanceChunk, error)
	ListWithoutEmbedding(ctx context.Context, jurisdictionID string, limit int) ([]*entity.OrdinanceChunk, error)
	SetEmbedding(ctx context.Context, id string, embedding []float64) error
}

var _ OrdinanceRepository = &OrdinancePostgres{}

// OrdinancePostgres implements OrdinanceRepository using PostgreSQL.
// Embeddings are stored as JSONB arrays; similarity scoring happens in the
// usecase, so queries here only filter and fetch.
type OrdinancePostgres struct {
	db *pgxpool.Pool
}

func NewOrdinancePostgres(db *pgxpool.Pool) *OrdinancePostgres {
	return &OrdinancePostgres{db: db}
}

const chunkColumns = "id, jurisdiction_id, chapter, section, title, content, embedding, source_url, created_at"

func (r *OrdinancePostgres) Create(ctx context.Context, chunk entity.OrdinanceChunk) (*entity.OrdinanceChunk, error) {
	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}

	embedding, err := marshalEmbedding(chunk.Embedding)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO ordinance_chunks (id, jurisdiction_id, chapter, section, title, content, embedding, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+chunkColumns,
		chunk.ID, chunk.JurisdictionID, chunk.Chapter, chunk.Section, chunk.Title, chunk.Content, embedding, chunk.SourceURL,
	)

	created, err := scanChunk(row)
	if err != nil {
		return nil, fmt.Errorf("create ordinance chunk: %w", err)
	}
	return created, nil
}

func (r *OrdinancePostgres) Get(ctx context.Context, id string) (*entity.OrdinanceChunk, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+chunkColumns+`
		FROM ordinance_chunks
		WHERE id = $1`,
		id,
	)

	chunk, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", entity.ErrChunkNotFound, id)
		}
		return nil, fmt.Errorf("get ordinance chunk: %w", err)
	}
	return chunk, nil
}

func (r *OrdinancePostgres) ListByJurisdiction(ctx context.Context, jurisdictionID string) ([]*entity.OrdinanceChunk, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+chunkColumns+`
		FROM ordinance_chunks
		WHERE jurisdiction_id = $1
		ORDER BY chapter, section NULLS FIRST`,
		jurisdictionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ordinance chunks: %w", err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

// ListWithoutEmbedding returns chunks pending embedding, oldest first. The
// ingestion job works through them in batches.
func (r *OrdinancePostgres) ListWithoutEmbedding(ctx context.Context, jurisdictionID string, limit int) ([]*entity.OrdinanceChunk, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+chunkColumns+`
		FROM ordinance_chunks
		WHERE jurisdiction_id = $1 AND embedding IS NULL
		ORDER BY created_at
		LIMIT $2`,
		jurisdictionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list chunks without embedding: %w", err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

func (r *OrdinancePostgres) SetEmbedding(ctx context.Context, id string, embedding []float64) error {
	data, err := marshalEmbedding(embedding)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE ordinance_chunks
		SET embedding = $2
		WHERE id = $1`,
		id, data,
	)
	if err != nil {
		return fmt.Errorf("set embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", entity.ErrChunkNotFound, id)
	}
	return nil
}

func marshalEmbedding(embedding []float64) ([]byte, error) {
	if embedding == nil {
		return nil, nil
	}
	data, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}
	return data, nil
}

func scanChunk(row pgx.Row) (*entity.OrdinanceChunk, error) {
	var c entity.OrdinanceChunk
	var embedding []byte
	err := row.Scan(&c.ID, &c.JurisdictionID, &c.Chapter, &c.Section, &c.Title, &c.Content, &embedding, &c.SourceURL, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &c.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding: %w", err)
		}
	}
	return &c, nil
}

func collectChunks(rows pgx.Rows) ([]*entity.OrdinanceChunk, error) {
	var chunks []*entity.OrdinanceChunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ordinance chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ordinance chunks: %w", err)
	}
	return chunks, nil
}
