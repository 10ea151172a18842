package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/honestreviews/config"
	"github.com/spacesedan/honestreviews/internal/insights"
)

// OpenAIClient talks to any OpenAI-compatible chat completions API. Groq is
// reached through a base URL override.
type OpenAIClient struct {
	Client   *openai.Client
	model    string
	provider string
}

func NewOpenAIClient(cfg config.LLMConfig, opts ...option.RequestOption) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("[OpenAIClient] missing API key for provider %q", cfg.Provider)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: generationRequestTimeout}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		clientOpts = append(clientOpts, option.WithBaseURL(base))
	}
	clientOpts = append(clientOpts, opts...)

	slog.Info("[OpenAIClient] client initialized",
		slog.String("provider", cfg.Provider),
		slog.String("model", cfg.Model),
		slog.Duration("timeout", generationRequestTimeout))

	return &OpenAIClient{
		Client:   openai.NewClient(clientOpts...),
		model:    cfg.Model,
		provider: cfg.Provider,
	}, nil
}

func (c *OpenAIClient) Name() string { return c.provider + ":" + c.model }

func (c *OpenAIClient) InputBudget() int { return OPENAI_INPUT_BUDGET }

// Generate sends the whole prompt as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts insights.GenerateOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(openai.ChatModel(c.model)),
		Temperature: openai.Float(float64(opts.Temperature)),
	}
	if opts.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxOutputTokens))
	}
	if opts.ResponseFormat == insights.ResponseFormatJSON {
		params.ResponseFormat = openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONObjectParam{
				Type: openai.F(openai.ResponseFormatJSONObjectTypeJSONObject),
			})
	}

	completion, err := c.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("[OpenAIClient] chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("[OpenAIClient] response had no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
