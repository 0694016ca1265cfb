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

type OpenAIConnector struct {
	config    config.CompletionConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewOpenAIConnector(
	cfg config.CompletionConnectorConfig,
	logger *zap.Logger,
) *OpenAIConnector {
	return &OpenAIConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithAuthToken(cfg.Token),
		),
		config: cfg,
		logger: logger,
	}
}

func (c *OpenAIConnector) Name() string { return "openai" }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete calls the Chat Completions API.
// POST /v1/chat/completions
func (c *OpenAIConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResult, error) {
	ctxzap.Info(ctx, "generating completion", zap.String("provider", c.Name()), zap.String("model", c.config.Model))

	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	body := openAIRequest{
		Model:       c.config.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    messages,
	}

	var resp openAIResponse
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, "/v1/chat/completions", body, &resp)
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

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: no choices in response", entity.ErrCompletionFailed)
	}
	text := resp.Choices[0].Message.Content

	ctxzap.Info(ctx, "completion generated",
		zap.Int("tokens_used", resp.Usage.CompletionTokens),
		zap.Int("answer_length", len(text)),
	)

	return &entity.CompletionResult{
		Text:       text,
		Provider:   c.Name(),
		TokensUsed: resp.Usage.CompletionTokens,
	}, nil
}
