package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"NewsRanker/internal/credibility"
	"NewsRanker/internal/domain"
	"NewsRanker/internal/features"
	"NewsRanker/internal/scoring"
	"NewsRanker/internal/sentiment"
)

// Config carries the static collaborators of a Ranker.
type Config struct {
	Extractor   *features.Extractor
	Credibility *credibility.Table
	Weights     scoring.Weights
	Workers     int
	Logger      *slog.Logger
}

// Ranker scores a batch of articles and orders them. It holds no mutable
// state and can serve concurrent Rank calls.
type Ranker struct {
	extractor   *features.Extractor
	credibility *credibility.Table
	weights     scoring.Weights
	workers     int
	logger      *slog.Logger
}

// New validates weights and fills defaults for missing collaborators.
func New(cfg Config) (*Ranker, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("ranker weights: %w", err)
	}
	if cfg.Extractor == nil {
		cfg.Extractor = features.NewExtractor(features.DefaultOptions())
	}
	if cfg.Credibility == nil {
		table, err := credibility.New(credibility.DefaultEntries(), credibility.DefaultScore)
		if err != nil {
			return nil, fmt.Errorf("default credibility table: %w", err)
		}
		cfg.Credibility = table
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	return &Ranker{
		extractor:   cfg.Extractor,
		credibility: cfg.Credibility,
		weights:     cfg.Weights,
		workers:     cfg.Workers,
		logger:      cfg.Logger,
	}, nil
}

type rankOptions struct {
	history []domain.Article
}

// Option adjusts a single Rank call.
type Option func(*rankOptions)

// WithHistory adds previously seen articles to the novelty corpus. Without it
// novelty is relative to the batch only.
func WithHistory(history []domain.Article) Option {
	return func(o *rankOptions) {
		o.history = history
	}
}

// Rank validates the batch, scores every article with strategy and returns
// them ordered by score, newest first on ties, then by ID.
func (r *Ranker) Rank(ctx context.Context, articles []domain.Article, predictions map[string]domain.SentimentPrediction, strategy scoring.Strategy, opts ...Option) ([]domain.ScoredArticle, error) {
	if _, err := scoring.ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	if strategy == "" {
		strategy = scoring.Default
	}

	var options rankOptions
	for _, opt := range opts {
		opt(&options)
	}

	strengths, err := validate(articles, predictions)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return []domain.ScoredArticle{}, nil
	}

	corpus := features.NewCorpus(append(append([]domain.Article{}, articles...), options.history...)...)
	r.debug("rank batch", "strategy", strategy, "articles", len(articles), "corpus", corpus.Len())

	scored := make([]domain.ScoredArticle, len(articles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range articles {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored[i] = r.score(articles[i], predictions[articles[i].ID], strengths[i], corpus, strategy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score batch: %w", err)
	}

	Sort(scored)
	for i := range scored {
		scored[i].Rank = i + 1
	}

	return scored, nil
}

func (r *Ranker) score(article domain.Article, prediction domain.SentimentPrediction, strength float64, corpus *features.Corpus, strategy scoring.Strategy) domain.ScoredArticle {
	if article.Text() == "" {
		r.warn("article has no text, features set to zero", "id", article.ID)
	}
	fv := r.extractor.Extract(article, corpus)

	cred, known := r.credibility.Lookup(article.Source)
	if !known {
		r.warn("unknown source, using default credibility", "id", article.ID, "source", article.Source, "credibility", cred)
	}

	in := scoring.Inputs{SentimentStrength: strength, Features: fv, Credibility: cred}
	return domain.ScoredArticle{
		Article:           article,
		Sentiment:         prediction,
		Features:          fv,
		SentimentStrength: strength,
		Credibility:       cred,
		Strategy:          string(strategy),
		Score:             strategy.Score(in, r.weights),
	}
}

// validate fails fast before any scoring work and returns the normalized
// sentiment strength of each article.
func validate(articles []domain.Article, predictions map[string]domain.SentimentPrediction) ([]float64, error) {
	seen := make(map[string]struct{}, len(articles))
	strengths := make([]float64, len(articles))

	for i, article := range articles {
		if _, dup := seen[article.ID]; dup {
			return nil, fmt.Errorf("article %q: %w", article.ID, domain.ErrDuplicateArticle)
		}
		seen[article.ID] = struct{}{}

		prediction, ok := predictions[article.ID]
		if !ok {
			return nil, fmt.Errorf("article %q: %w", article.ID, domain.ErrMissingSentimentData)
		}
		strength, err := sentiment.Normalize(prediction)
		if err != nil {
			return nil, fmt.Errorf("article %q: %w", article.ID, err)
		}
		strengths[i] = strength
	}

	return strengths, nil
}

// Sort orders by score descending, then PublishedAt descending, then ID ascending.
func Sort(scored []domain.ScoredArticle) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})
}

func (r *Ranker) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Ranker) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
