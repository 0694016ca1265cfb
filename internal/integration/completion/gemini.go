package completion

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

type GeminiConnector struct {
	config    config.CompletionConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewGeminiConnector(
	cfg config.CompletionConnectorConfig,
	logger *zap.Logger,
) *GeminiConnector {
	return &GeminiConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

func (c *GeminiConnector) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// Complete calls the generateContent API.
// POST /v1beta/models/{model}:generateContent
func (c *GeminiConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResult, error) {
	ctxzap.Info(ctx, "generating completion", zap.String("provider", c.Name()), zap.String("model", c.config.Model))

	endpoint := fmt.Sprintf("/v1beta/models/%s:generateContent", c.config.Model)

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	var resp geminiResponse
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, endpoint, body, &resp,
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
		ctxzap.Error(ctx, "completion request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", entity.ErrCompletionFailed, err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", entity.ErrCompletionFailed)
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return nil, fmt.Errorf("%w: empty candidate text", entity.ErrCompletionFailed)
	}

	ctxzap.Info(ctx, "completion generated",
		zap.Int("tokens_used", resp.UsageMetadata.CandidatesTokenCount),
		zap.Int("answer_length", len(text)),
	)

	return &entity.CompletionResult{
		Text:       text,
		Provider:   c.Name(),
		TokensUsed: resp.UsageMetadata.CandidatesTokenCount,
	}, nil
}
