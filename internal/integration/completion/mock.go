package completion

import (
	"context"
	"fmt"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockProvider echoes a canned answer for local runs without API keys.
type MockProvider struct {
	logger *zap.Logger
}

func NewMockProvider(logger *zap.Logger) *MockProvider {
	return &MockProvider{
		logger: logger,
	}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResult, error) {
	ctxzap.Info(ctx, "[MOCK] generating completion", zap.Int("prompt_length", len(req.Prompt)))

	text := fmt.Sprintf(
		"Based on the provided ordinance sections, here is a summary response. "+
			"(Mock answer generated for a %d-character prompt; configure a real provider for production use.)",
		len(req.Prompt),
	)

	return &entity.CompletionResult{
		Text:       text,
		Provider:   m.Name(),
		TokensUsed: 0,
	}, nil
}
