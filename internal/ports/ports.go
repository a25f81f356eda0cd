package ports

import (
	"context"
	"time"

	"NewsRanker/internal/domain"
)

// ArticleSource pulls fresh articles for a search query from upstream providers.
type ArticleSource interface {
	Fetch(ctx context.Context, query string) ([]domain.Article, error)
}

// SentimentPredictor runs the external sentiment model over article text.
type SentimentPredictor interface {
	Predict(ctx context.Context, text string) (domain.SentimentPrediction, error)
}

// CorpusRepository keeps recently seen articles so novelty can be measured
// against a sliding window instead of only the current batch.
type CorpusRepository interface {
	Recent(ctx context.Context, since time.Time, limit int) ([]domain.Article, error)
	Remember(ctx context.Context, articles []domain.Article) error
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler controls when ranking runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
