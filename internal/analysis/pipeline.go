// Package analysis wires planning, aggregation and extraction into one
// request-scoped run.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/honestreviews/internal/faults"
	"github.com/spacesedan/honestreviews/internal/insights"
	"github.com/spacesedan/honestreviews/internal/logging"
	"github.com/spacesedan/honestreviews/internal/models"
	"github.com/spacesedan/honestreviews/internal/processing"
	"github.com/spacesedan/honestreviews/internal/sentiment"
)

const PUBLISH_TIMEOUT = 5 * time.Second

// EventPublisher is notified after each successful analysis.
type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, event models.AnalysisCompletedEvent) error
}

type Pipeline struct {
	planner    *processing.Planner
	aggregator *processing.Aggregator
	extractor  *insights.Extractor
	publisher  EventPublisher
	timeout    time.Duration
}

func NewPipeline(planner *processing.Planner, aggregator *processing.Aggregator, extractor *insights.Extractor, timeout time.Duration) *Pipeline {
	return &Pipeline{
		planner:    planner,
		aggregator: aggregator,
		extractor:  extractor,
		timeout:    timeout,
	}
}

func (p *Pipeline) WithPublisher(publisher EventPublisher) *Pipeline {
	p.publisher = publisher
	return p
}

func (p *Pipeline) Categories() []string {
	return p.planner.Categories()
}

// Analyze runs one request end to end. Either a complete response or a
// classified error is returned, never a partial result.
func (p *Pipeline) Analyze(ctx context.Context, req models.AnalyzeRequest) (models.AnalyzeResponse, error) {
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)
	log := logging.FromContext(ctx)
	start := time.Now()

	plan, err := p.planner.Plan(req.ProductName, req.Category)
	if err != nil {
		log.Warn("[Pipeline] Rejected request", slog.String("error", err.Error()))
		return models.AnalyzeResponse{}, err
	}

	product := strings.TrimSpace(req.ProductName)
	category := strings.TrimSpace(req.Category)
	log.Info("[Pipeline] Analysis started",
		slog.String("product", product),
		slog.String("category", category),
		slog.String("mode", plan.Mode.String()),
		slog.Int("queries", len(plan.Queries)))

	runCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	corpus, err := p.aggregator.Aggregate(runCtx, product, plan)
	if err != nil {
		return models.AnalyzeResponse{}, p.classify(ctx, err)
	}

	backend := p.extractor.Backend()
	bounded := processing.EnforceBudget(corpus.TextBlob(), backend.InputBudget())

	result, err := p.extractor.Extract(runCtx, bounded)
	if err != nil {
		return models.AnalyzeResponse{}, p.classify(ctx, err)
	}

	baseline := sentiment.Baseline(bounded)
	if sentiment.Diverges(result.SentimentScore, baseline) {
		log.Warn("[Pipeline] Model score diverges from lexical baseline",
			slog.Int("model_score", result.SentimentScore),
			slog.Int("baseline_score", baseline.Score),
			slog.String("baseline_label", baseline.Label))
	}

	resp := models.AnalyzeResponse{
		Product:  product,
		Category: category,
		Analysis: result,
		Sources:  corpus.Sources,
		Baseline: &baseline,
	}

	duration := time.Since(start)
	log.Info("[Pipeline] Analysis completed",
		slog.String("product", product),
		slog.Int("sources", len(corpus.Sources)),
		slog.Int("corpus_chars", len(bounded)),
		slog.Duration("duration", duration))

	p.publish(ctx, models.AnalysisCompletedEvent{
		RequestID:      requestID,
		Product:        product,
		Category:       category,
		Backend:        backend.Name(),
		SentimentScore: result.SentimentScore,
		BaselineScore:  baseline.Score,
		SourceCount:    len(corpus.Sources),
		DurationMS:     duration.Milliseconds(),
		CompletedAt:    time.Now().UTC(),
	})
	return resp, nil
}

// classify turns an overall timeout into BackendUnavailable and logs the
// failure once.
func (p *Pipeline) classify(ctx context.Context, err error) error {
	if faults.KindOf(err) == faults.Unknown && errors.Is(err, context.DeadlineExceeded) {
		err = faults.NewBackendUnavailable(fmt.Errorf("[Pipeline] request timed out after %s: %w", p.timeout, err))
	}
	logging.FromContext(ctx).Error("[Pipeline] Analysis failed",
		slog.String("kind", faults.KindOf(err).String()),
		slog.String("error", err.Error()))
	return err
}

func (p *Pipeline) publish(ctx context.Context, event models.AnalysisCompletedEvent) {
	if p.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PUBLISH_TIMEOUT)
	defer cancel()

	if err := p.publisher.PublishAnalysisCompleted(pubCtx, event); err != nil {
		logging.FromContext(ctx).Warn("[Pipeline] Failed to publish analysis event",
			slog.String("error", err.Error()))
	}
}
