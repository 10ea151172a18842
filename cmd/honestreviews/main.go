package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spacesedan/honestreviews/config"
	"github.com/spacesedan/honestreviews/internal/analysis"
	"github.com/spacesedan/honestreviews/internal/clients"
	"github.com/spacesedan/honestreviews/internal/insights"
	"github.com/spacesedan/honestreviews/internal/logging"
	"github.com/spacesedan/honestreviews/internal/processing"
	"github.com/spf13/cobra"
)

// appConfig is resolved once per invocation before any command runs.
var appConfig config.Config

var rootCmd = &cobra.Command{
	Use:   "honestreviews",
	Short: "Summarise what Reddit thinks about a product",
	Long: `honestreviews searches Reddit for discussions about a product, bounds the
collected text and asks a generative model for a verdict, pros, cons, a
sentiment score and a word cloud.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "dev"
		}
		config.LoadEnv(env)
		appConfig = config.Load()
		logging.InitLogger(appConfig.LogLevel)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, analyzeCmd, categoriesCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired pipeline and whatever must be closed with it.
type app struct {
	cfg      config.Config
	pipeline *analysis.Pipeline
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	categories, err := config.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	redditOpts := []clients.RedditOption{}
	if cfg.Valkey.Enabled() {
		cache, err := clients.NewValkeyClient(ctx, cfg.Valkey)
		if err != nil {
			slog.Warn("[App] Valkey unavailable, Reddit responses will not be cached",
				slog.String("error", err.Error()))
		} else {
			redditOpts = append(redditOpts, clients.WithResponseCache(cache, cfg.Reddit.CacheTTL))
			a.closers = append(a.closers, cache.Close)
		}
	}
	reddit := clients.NewRedditClient(cfg.Reddit, redditOpts...)

	backend, err := clients.NewBackend(ctx, cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.pipeline = analysis.NewPipeline(
		processing.NewPlanner(categories),
		processing.NewAggregator(processing.NewRedditFetcher(reddit), cfg.FetchWorkers),
		insights.NewExtractor(backend),
		cfg.RequestTimeout,
	)

	if cfg.Kafka.Enabled() {
		publisher, err := clients.NewEventPublisher(cfg.Kafka)
		if err != nil {
			slog.Warn("[App] Kafka unavailable, analysis events disabled",
				slog.String("error", err.Error()))
		} else {
			a.pipeline.WithPublisher(publisher)
			a.closers = append(a.closers, publisher.Close)
		}
	}

	slog.Info("[App] Pipeline ready",
		slog.String("backend", backend.Name()),
		slog.Int("fetch_workers", cfg.FetchWorkers),
		slog.Bool("cache", cfg.Valkey.Enabled()),
		slog.Bool("events", cfg.Kafka.Enabled()))
	return a, nil
}
