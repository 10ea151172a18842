// Package insights turns a bounded review corpus into a structured
// InsightResult using a generative-text backend.
package insights

import (
	"context"
	"log/slog"

	"github.com/spacesedan/honestreviews/internal/faults"
	"github.com/spacesedan/honestreviews/internal/logging"
	"github.com/spacesedan/honestreviews/internal/models"
)

const (
	ResponseFormatJSON = "json"

	DEFAULT_TEMPERATURE       = 0.2
	DEFAULT_MAX_OUTPUT_TOKENS = 2048
)

// Backend is a generative-text service. Implementations report failures as
// plain errors; the extractor classifies them.
type Backend interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// InputBudget is the largest corpus, in characters, the backend accepts.
	InputBudget() int
	Name() string
}

type GenerateOptions struct {
	ResponseFormat  string
	Temperature     float32
	MaxOutputTokens int
}

type Extractor struct {
	backend Backend
	opts    GenerateOptions
}

func NewExtractor(backend Backend) *Extractor {
	return &Extractor{
		backend: backend,
		opts: GenerateOptions{
			ResponseFormat:  ResponseFormatJSON,
			Temperature:     DEFAULT_TEMPERATURE,
			MaxOutputTokens: DEFAULT_MAX_OUTPUT_TOKENS,
		},
	}
}

func (e *Extractor) Backend() Backend { return e.backend }

// Extract sends one request to the backend and parses its answer. The corpus
// is expected to already fit the backend's input budget.
func (e *Extractor) Extract(ctx context.Context, corpus string) (models.InsightResult, error) {
	log := logging.FromContext(ctx)

	raw, err := e.backend.Generate(ctx, BuildPrompt(corpus), e.opts)
	if err != nil {
		log.Error("[InsightExtractor] Backend request failed",
			slog.String("backend", e.backend.Name()),
			slog.String("error", err.Error()))
		return models.InsightResult{}, faults.NewBackendUnavailable(err)
	}

	result, err := ParseInsight(raw)
	if err != nil {
		log.Error("[InsightExtractor] Failed to parse backend response",
			slog.String("backend", e.backend.Name()),
			slog.String("error", err.Error()),
			slog.String("raw", raw))
		return models.InsightResult{}, err
	}

	log.Info("[InsightExtractor] Insight extracted",
		slog.String("backend", e.backend.Name()),
		slog.Int("sentiment_score", result.SentimentScore),
		slog.Int("pros", len(result.Pros)),
		slog.Int("cons", len(result.Cons)))
	return result, nil
}
