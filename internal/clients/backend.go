package clients

import (
	"context"

	"github.com/spacesedan/honestreviews/config"
	"github.com/spacesedan/honestreviews/internal/insights"
)

// NewBackend builds the generation backend selected by cfg.Provider.
func NewBackend(ctx context.Context, cfg config.LLMConfig) (insights.Backend, error) {
	if cfg.Provider == config.ProviderGemini {
		gemini, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}

	oai, err := NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return oai, nil
}
