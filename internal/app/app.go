package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsRanker/internal/config"
	"NewsRanker/internal/credibility"
	"NewsRanker/internal/domain"
	"NewsRanker/internal/features"
	"NewsRanker/internal/infrastructure/llm"
	"NewsRanker/internal/infrastructure/ml"
	"NewsRanker/internal/infrastructure/parser"
	"NewsRanker/internal/infrastructure/scheduler"
	"NewsRanker/internal/infrastructure/storage"
	"NewsRanker/internal/logging"
	"NewsRanker/internal/ports"
	"NewsRanker/internal/ranking"
	"NewsRanker/internal/scanner"
	"NewsRanker/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	corpus   *storage.SQLiteRepository
	logger   *slog.Logger
}

// New builds the ranking pipeline from configuration. The corpus database is
// opened only when a path is configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewNewsAPIScanner(nil, cfg.Providers.NewsAPI, baseLogger.With("component", "scanner.newsapi")))
	registry.Register(parser.NewRSSScanner(nil, baseLogger.With("component", "scanner.rss")))

	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	predictor, err := newPredictor(cfg)
	if err != nil {
		return nil, err
	}

	table, err := credibility.New(cfg.Ranking.Credibility, cfg.Ranking.DefaultCredibility)
	if err != nil {
		return nil, fmt.Errorf("credibility table: %w", err)
	}

	ranker, err := ranking.New(ranking.Config{
		Extractor:   features.NewExtractor(cfg.Ranking.FeatureOptions()),
		Credibility: table,
		Weights:     cfg.Ranking.Weights,
		Workers:     cfg.Ranking.Workers,
		Logger:      baseLogger.With("component", "ranker"),
	})
	if err != nil {
		return nil, err
	}

	deps := usecase.PipelineDeps{
		Source:      source,
		Predictor:   predictor,
		Ranker:      ranker,
		Logger:      baseLogger.With("component", "pipeline"),
		Concurrency: cfg.Sentiment.Concurrency,
		UseHistory:  cfg.Ranking.Novelty.Scope == config.NoveltyScopeHistory,
		Window:      cfg.Ranking.Novelty.Window,
		MaxHistory:  cfg.Ranking.Novelty.MaxHistory,
	}

	application := &Application{cfg: cfg, logger: baseLogger}
	if cfg.Corpus.Path != "" {
		repo, err := storage.OpenSQLite(ctx, cfg.Corpus.Path)
		if err != nil {
			return nil, err
		}
		application.corpus = repo
		deps.Corpus = repo
	} else if deps.UseHistory {
		baseLogger.Warn("history novelty requested without a corpus path, using batch only")
	}

	application.pipeline = usecase.NewPipeline(deps)
	return application, nil
}

func newPredictor(cfg config.Config) (ports.SentimentPredictor, error) {
	switch cfg.Sentiment.Backend {
	case config.BackendChatGPT:
		if cfg.ChatGPT.APIKey == "" {
			return nil, fmt.Errorf("sentiment backend %s requires an api key", config.BackendChatGPT)
		}
		return llm.NewChatGPTClient(cfg.ChatGPT), nil
	case config.BackendML, "":
		return ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey, cfg.ML.RequestsPerSecond), nil
	default:
		return nil, fmt.Errorf("unknown sentiment backend %q", cfg.Sentiment.Backend)
	}
}

// RankOnce runs a single fetch and rank cycle. Empty query and strategy fall
// back to configuration; a negative limit falls back to the configured limit.
func (a *Application) RankOnce(ctx context.Context, query, strategy string, limit int) ([]domain.ScoredArticle, error) {
	return a.pipeline.Run(ctx, a.request(query, strategy, limit))
}

// Schedule runs the pipeline on the configured cron expression until ctx ends.
func (a *Application) Schedule(ctx context.Context, query, strategy string, limit int, sink func(time.Time, []domain.ScoredArticle)) error {
	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location(), true, a.logger.With("component", "cron"))
	if err != nil {
		return err
	}

	runner := usecase.NewScheduler(driver, a.pipeline, a.request(query, strategy, limit), sink, a.logger.With("component", "scheduler"))
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Location().String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return runner.Stop(stopCtx)
}

// Close releases the corpus database if one was opened.
func (a *Application) Close() error {
	if a.corpus == nil {
		return nil
	}
	return a.corpus.Close()
}

func (a *Application) request(query, strategy string, limit int) usecase.Request {
	if query == "" {
		query = a.cfg.Scheduler.Query
	}
	if strategy == "" {
		strategy = a.cfg.Ranking.DefaultStrategy
	}
	if limit < 0 {
		limit = a.cfg.Ranking.Limit
	}
	return usecase.Request{Query: query, Strategy: strategy, Limit: limit}
}
