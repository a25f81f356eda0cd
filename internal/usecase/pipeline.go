package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"NewsRanker/internal/domain"
	"NewsRanker/internal/ports"
	"NewsRanker/internal/ranking"
	"NewsRanker/internal/scoring"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.ArticleSource
	Predictor   ports.SentimentPredictor
	Corpus      ports.CorpusRepository
	Ranker      *ranking.Ranker
	Logger      *slog.Logger
	Concurrency int
	// UseHistory measures novelty against the corpus repository as well as the batch.
	UseHistory bool
	Window     time.Duration
	MaxHistory int
}

// Pipeline implements the fetch, predict and rank workflow.
type Pipeline struct {
	source      ports.ArticleSource
	predictor   ports.SentimentPredictor
	corpus      ports.CorpusRepository
	ranker      *ranking.Ranker
	logger      *slog.Logger
	concurrency int
	useHistory  bool
	window      time.Duration
	maxHistory  int
	now         func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pipeline{
		source:      deps.Source,
		predictor:   deps.Predictor,
		corpus:      deps.Corpus,
		ranker:      deps.Ranker,
		logger:      deps.Logger,
		concurrency: concurrency,
		useHistory:  deps.UseHistory,
		window:      deps.Window,
		maxHistory:  deps.MaxHistory,
		now:         time.Now,
	}
}

// Request selects what a single run fetches and how it orders the result.
type Request struct {
	Query    string
	Strategy string
	// Limit keeps the top N results; zero keeps all.
	Limit int
}

// Run fetches articles for the query, predicts sentiment for each and returns
// them ranked. Rank positions refer to the full ordering even when Limit trims it.
func (p *Pipeline) Run(ctx context.Context, req Request) ([]domain.ScoredArticle, error) {
	if p.source == nil || p.predictor == nil || p.ranker == nil {
		return nil, fmt.Errorf("pipeline is not fully configured")
	}

	strategy, err := scoring.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	log := p.logger
	if log != nil {
		log = log.With("run_id", uuid.NewString(), "query", req.Query, "strategy", string(strategy))
	}

	fetched, err := p.source.Fetch(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	articles := Prepare(fetched)
	logDebug(log, "articles prepared", "fetched", len(fetched), "kept", len(articles))
	if len(articles) == 0 {
		return []domain.ScoredArticle{}, nil
	}

	predictions, err := p.predict(ctx, articles)
	if err != nil {
		return nil, err
	}

	var opts []ranking.Option
	if p.useHistory && p.corpus != nil {
		history, err := p.corpus.Recent(ctx, p.now().Add(-p.window), p.maxHistory)
		if err != nil {
			return nil, fmt.Errorf("load corpus history: %w", err)
		}
		logDebug(log, "history loaded", "articles", len(history))
		opts = append(opts, ranking.WithHistory(history))
	}

	ranked, err := p.ranker.Rank(ctx, articles, predictions, strategy, opts...)
	if err != nil {
		return nil, fmt.Errorf("rank articles: %w", err)
	}

	if p.corpus != nil {
		p.remember(ctx, log, articles)
	}

	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	if log != nil {
		log.Info("ranking finished", "articles", len(articles), "returned", len(ranked))
	}
	return ranked, nil
}

func (p *Pipeline) predict(ctx context.Context, articles []domain.Article) (map[string]domain.SentimentPrediction, error) {
	var mu sync.Mutex
	predictions := make(map[string]domain.SentimentPrediction, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, article := range articles {
		article := article
		g.Go(func() error {
			prediction, err := p.predictor.Predict(gctx, article.Text())
			if err != nil {
				return fmt.Errorf("predict sentiment for %s: %w", article.ID, err)
			}
			mu.Lock()
			predictions[article.ID] = prediction
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return predictions, nil
}

// remember stores the batch for later novelty checks. Failures only cost
// history, so they are logged rather than returned.
func (p *Pipeline) remember(ctx context.Context, log *slog.Logger, articles []domain.Article) {
	if err := p.corpus.Remember(ctx, articles); err != nil {
		logWarn(log, "remember articles failed", "error", err)
		return
	}
	if p.window <= 0 {
		return
	}
	removed, err := p.corpus.Prune(ctx, p.now().Add(-p.window))
	if err != nil {
		logWarn(log, "prune corpus failed", "error", err)
		return
	}
	logDebug(log, "corpus pruned", "removed", removed)
}

// Prepare trims text fields and drops articles without a title or any body
// text. The first article with a given ID wins.
func Prepare(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	seen := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		a.ID = strings.TrimSpace(a.ID)
		a.Title = strings.TrimSpace(a.Title)
		a.Description = strings.TrimSpace(a.Description)
		a.Content = strings.TrimSpace(a.Content)
		a.Source = strings.TrimSpace(a.Source)
		if a.ID == "" || a.Title == "" || a.Text() == "" {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}

func logDebug(log *slog.Logger, msg string, args ...any) {
	if log != nil {
		log.Debug(msg, args...)
	}
}

func logWarn(log *slog.Logger, msg string, args ...any) {
	if log != nil {
		log.Warn(msg, args...)
	}
}
