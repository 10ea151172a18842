package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spacesedan/honestreviews/internal/faults"
	"github.com/spacesedan/honestreviews/internal/logging"
	"github.com/spacesedan/honestreviews/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	BODY_CEILING    = 2000
	COMMENT_CEILING = 1500
)

// AggregateSettings bounds how much of each query's results makes it into a
// corpus. A zero MinCommentCount or MinCommentLength disables that filter.
type AggregateSettings struct {
	MaxThreads           int
	PerQueryLimit        int
	MaxCommentsPerThread int
	MinCommentCount      int
	MinCommentLength     int
	BodyCeiling          int
	CommentCeiling       int
}

// DefaultSettings returns the limits used for mode.
func DefaultSettings(mode models.Mode) AggregateSettings {
	if mode == models.ModeCategory {
		return AggregateSettings{
			MaxThreads:           10,
			PerQueryLimit:        5,
			MaxCommentsPerThread: 10,
			BodyCeiling:          BODY_CEILING,
			CommentCeiling:       COMMENT_CEILING,
		}
	}
	return AggregateSettings{
		MaxThreads:           6,
		PerQueryLimit:        6,
		MaxCommentsPerThread: 15,
		MinCommentCount:      3,
		MinCommentLength:     21,
		BodyCeiling:          BODY_CEILING,
		CommentCeiling:       COMMENT_CEILING,
	}
}

type Aggregator struct {
	fetcher  ThreadFetcher
	workers  int
	settings map[models.Mode]AggregateSettings
}

// NewAggregator runs queries one at a time when workers <= 1. With more
// workers queries run concurrently and acceptance order follows completion
// order instead of plan order.
func NewAggregator(fetcher ThreadFetcher, workers int) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		workers: workers,
		settings: map[models.Mode]AggregateSettings{
			models.ModeOpen:     DefaultSettings(models.ModeOpen),
			models.ModeCategory: DefaultSettings(models.ModeCategory),
		},
	}
}

// WithSettings overrides the limits for one mode.
func (a *Aggregator) WithSettings(mode models.Mode, s AggregateSettings) *Aggregator {
	a.settings[mode] = s
	return a
}

// accumulator owns the seen set and the growing corpus. All reads and
// writes go through mu.
type accumulator struct {
	mu       sync.Mutex
	settings AggregateSettings
	seen     map[string]struct{}
	corpus   models.AggregatedCorpus
}

func newAccumulator(s AggregateSettings) *accumulator {
	return &accumulator{
		settings: s,
		seen:     make(map[string]struct{}),
	}
}

func (acc *accumulator) full() bool {
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return len(acc.corpus.Sources) >= acc.settings.MaxThreads
}

// admits is offer's check without the insert. A thread it lets through can
// still lose the race in offer to another worker.
func (acc *accumulator) admits(thread models.CandidateThread) bool {
	acc.mu.Lock()
	defer acc.mu.Unlock()

	if len(acc.corpus.Sources) >= acc.settings.MaxThreads {
		return false
	}
	if _, dup := acc.seen[thread.URL]; dup {
		return false
	}
	return thread.CommentCount >= acc.settings.MinCommentCount
}

// offer accepts thread unless the corpus is full, the URL was already taken
// or the thread has too few comments. It reports whether the corpus is full
// afterwards.
func (acc *accumulator) offer(thread models.CandidateThread) (accepted, full bool) {
	acc.mu.Lock()
	defer acc.mu.Unlock()

	if len(acc.corpus.Sources) >= acc.settings.MaxThreads {
		return false, true
	}
	if _, dup := acc.seen[thread.URL]; dup {
		return false, false
	}
	if thread.CommentCount < acc.settings.MinCommentCount {
		return false, false
	}

	acc.seen[thread.URL] = struct{}{}
	acc.corpus.Sources = append(acc.corpus.Sources, citationFor(thread))
	acc.corpus.Fragments = append(acc.corpus.Fragments, buildFragment(thread, acc.settings))
	return true, len(acc.corpus.Sources) >= acc.settings.MaxThreads
}

// Aggregate runs plan's queries and collects at most MaxThreads distinct
// threads into a corpus. Queries whose scope cannot be searched are logged
// and skipped. No accepted thread at all is a NoResults fault.
func (a *Aggregator) Aggregate(ctx context.Context, productName string, plan models.PlanResult) (models.AggregatedCorpus, error) {
	log := logging.FromContext(ctx)
	settings, ok := a.settings[plan.Mode]
	if !ok {
		settings = DefaultSettings(plan.Mode)
	}
	acc := newAccumulator(settings)

	var err error
	if a.workers <= 1 {
		err = a.runSequential(ctx, plan.Queries, acc)
	} else {
		err = a.runConcurrent(ctx, plan.Queries, acc)
	}
	if err != nil {
		return models.AggregatedCorpus{}, fmt.Errorf("[Aggregator] aggregation interrupted: %w", err)
	}

	if len(acc.corpus.Sources) == 0 {
		log.Warn("[Aggregator] No threads accepted",
			slog.String("product", productName),
			slog.String("mode", plan.Mode.String()),
			slog.Int("queries", len(plan.Queries)))
		return models.AggregatedCorpus{}, faults.NewNoResults(productName)
	}

	log.Info("[Aggregator] Corpus assembled",
		slog.String("product", productName),
		slog.String("mode", plan.Mode.String()),
		slog.Int("threads", len(acc.corpus.Sources)))
	return acc.corpus, nil
}

func (a *Aggregator) runSequential(ctx context.Context, queries []models.SearchQuery, acc *accumulator) error {
	for _, q := range queries {
		if acc.full() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.runQuery(ctx, q, acc) {
			return nil
		}
	}
	return ctx.Err()
}

func (a *Aggregator) runConcurrent(ctx context.Context, queries []models.SearchQuery, acc *accumulator) error {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := new(errgroup.Group)
	g.SetLimit(a.workers)
	for _, q := range queries {
		if acc.full() || fetchCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if acc.full() {
				return nil
			}
			if a.runQuery(fetchCtx, q, acc) {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// runQuery feeds one query's threads into acc and reports whether the corpus
// filled up.
func (a *Aggregator) runQuery(ctx context.Context, q models.SearchQuery, acc *accumulator) bool {
	log := logging.FromContext(ctx)

	for thread, err := range a.fetcher.Search(ctx, q, acc.settings.PerQueryLimit, acc.admits) {
		if err != nil {
			if acc.full() || errors.Is(err, context.Canceled) {
				return acc.full()
			}
			log.Warn("[Aggregator] Skipping query",
				slog.String("scope", q.Scope.String()),
				slog.String("query", q.Text),
				slog.String("kind", faults.KindOf(err).String()),
				slog.String("error", err.Error()))
			return false
		}

		accepted, full := acc.offer(thread)
		if accepted {
			log.Debug("[Aggregator] Thread accepted",
				slog.String("url", thread.URL),
				slog.Int("comments", thread.CommentCount))
		}
		if full {
			return true
		}
	}
	return false
}
