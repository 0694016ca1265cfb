// Package completion abstracts the answer-synthesis model behind a single
// Provider interface with Anthropic, Gemini and OpenAI backends.
package completion

import (
	"context"
	"fmt"

	"github.com/civix-app/civix-backend/internal/config"
	"github.com/civix-app/civix-backend/internal/entity"
	"go.uber.org/zap"
)

// Provider generates a completion for a system/user prompt pair. Name is the
// identifier surfaced in response metadata.
type Provider interface {
	Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResult, error)
	Name() string
}

// NewProvider selects the backend named by the configuration.
func NewProvider(cfg config.CompletionConnectorConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicConnector(cfg, logger), nil
	case "gemini":
		return NewGeminiConnector(cfg, logger), nil
	case "openai":
		return NewOpenAIConnector(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %q", cfg.Provider)
	}
}
