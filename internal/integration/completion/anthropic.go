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

const anthropicVersion = "2023-06-01"

type AnthropicConnector struct {
	config    config.CompletionConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewAnthropicConnector(
	cfg config.CompletionConnectorConfig,
	logger *zap.Logger,
) *AnthropicConnector {
	return &AnthropicConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

func (c *AnthropicConnector) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete calls the Messages API.
// POST /v1/messages
func (c *AnthropicConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResult, error) {
	ctxzap.Info(ctx, "generating completion", zap.String("provider", c.Name()), zap.String("model", c.config.Model))

	body := anthropicRequest{
		Model:       c.config.Model,
		MaxTokens:   req.MaxTokens,
		System:      req.System,
		Temperature: req.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	var resp anthropicResponse
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, "/v1/messages", body, &resp,
				pkghttp.WithHeader("x-api-key", c.config.Token),
				pkghttp.WithHeader("anthropic-version", anthropicVersion),
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

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: no text block in response", entity.ErrCompletionFailed)
	}

	ctxzap.Info(ctx, "completion generated",
		zap.Int("tokens_used", resp.Usage.OutputTokens),
		zap.Int("answer_length", len(text)),
	)

	return &entity.CompletionResult{
		Text:       text,
		Provider:   c.Name(),
		TokensUsed: resp.Usage.OutputTokens,
	}, nil
}
