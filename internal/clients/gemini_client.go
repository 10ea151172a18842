package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/honestreviews/config"
	"github.com/spacesedan/honestreviews/internal/insights"
	"google.golang.org/genai"
)

type GeminiClient struct {
	Client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("[GeminiClient] GEMINI_API_KEY is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("[GeminiClient] failed to create client: %w", err)
	}

	slog.Info("[GeminiClient] client initialized", slog.String("model", cfg.Model))
	return &GeminiClient{Client: client, model: cfg.Model}, nil
}

func (c *GeminiClient) Name() string { return config.ProviderGemini + ":" + c.model }

func (c *GeminiClient) InputBudget() int { return GEMINI_INPUT_BUDGET }

func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts insights.GenerateOptions) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = int32(opts.MaxOutputTokens)
	}
	if opts.ResponseFormat == insights.ResponseFormatJSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	ctx, cancel := context.WithTimeout(ctx, generationRequestTimeout)
	defer cancel()

	resp, err := c.Client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("[GeminiClient] generate content failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("[GeminiClient] response had no text")
	}
	return text, nil
}
