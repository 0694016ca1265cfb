// Package embedding calls the Gemini embedContent API to turn text into
// vectors for semantic search over ordinance chunks.
package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/civix-app/civix-backend/internal/config"
	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/integration/common"
	pkghttp "github.com/civix-app/civix-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.EmbeddingConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type embedContentRequest struct {
	Model    string       `json:"model"`
	Content  embedContent `json:"content"`
	TaskType string       `json:"taskType,omitempty"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedPart struct {
	Text string `json:"text"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// Embed generates an embedding for a single text.
// POST /v1beta/models/{model}:embedContent
func (c *Connector) Embed(ctx context.Context, text string, taskType entity.EmbeddingTaskType) ([]float64, error) {
	endpoint := fmt.Sprintf("/v1beta/models/%s:embedContent", c.config.Model)

	req := embedContentRequest{
		Model:    "models/" + c.config.Model,
		Content:  embedContent{Parts: []embedPart{{Text: text}}},
		TaskType: string(taskType),
	}

	var resp embedContentResponse
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp,
				pkghttp.WithHeader("x-goog-api-key", c.config.Token),
			)
		},
		append(c.config.Retry.ToRetryOptions(),
			retry.Context(ctx),
			retry.RetryIf(common.IsRetryable),
			retry.LastErrorOnly(true),
		)...,
	)
	if err != nil {
		ctxzap.Error(ctx, "embedding request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", entity.ErrEmbeddingFailed, err)
	}

	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", entity.ErrEmbeddingFailed)
	}

	ctxzap.Debug(ctx, "embedding generated",
		zap.Int("dimensions", len(resp.Embedding.Values)),
		zap.String("task_type", string(taskType)),
	)

	return resp.Embedding.Values, nil
}

type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float64 `json:"values"`
	} `json:"embeddings"`
}

// EmbedBatch embeds up to 100 texts in one call, the API's batch ceiling.
// Used by the ingestion job; queries always embed a single text.
func (c *Connector) EmbedBatch(ctx context.Context, texts []string, taskType entity.EmbeddingTaskType) ([][]float64, error) {
	endpoint := fmt.Sprintf("/v1beta/models/%s:batchEmbedContents", c.config.Model)

	req := batchEmbedRequest{Requests: make([]embedContentRequest, 0, len(texts))}
	for _, text := range texts {
		req.Requests = append(req.Requests, embedContentRequest{
			Model:    "models/" + c.config.Model,
			Content:  embedContent{Parts: []embedPart{{Text: text}}},
			TaskType: string(taskType),
		})
	}

	var resp batchEmbedResponse
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp,
				pkghttp.WithHeader("x-goog-api-key", c.config.Token),
			)
		},
		append(c.config.Retry.ToRetryOptions(),
			retry.Context(ctx),
			retry.RetryIf(common.IsRetryable),
			retry.LastErrorOnly(true),
		)...,
	)
	if err != nil {
		ctxzap.Error(ctx, "batch embedding request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", entity.ErrEmbeddingFailed, err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", entity.ErrEmbeddingFailed, len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		vectors[i] = e.Values
	}

	return vectors, nil
}
