package parser

import (
	"context"
	"fmt"
	"log/slog"

	"NewsRanker/internal/config"
	"NewsRanker/internal/domain"
	"NewsRanker/internal/ports"
	"NewsRanker/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// Fetch iterates over configured sites, executes their scanners and drops
// articles already returned by an earlier site.
func (s *StrategySource) Fetch(ctx context.Context, query string) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch", "sites", len(s.sites), "query", query)

	var aggregated []domain.Article
	seen := map[string]struct{}{}
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "feeds", len(site.Feeds))
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			Query:    query,
			SiteName: site.Name,
			Options:  site.Options,
			Feeds:    toScannerFeeds(site.Feeds),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		kept := 0
		for _, article := range results {
			if article.Source == "" {
				article.Source = site.Name
			}
			if _, dup := seen[article.ID]; dup {
				continue
			}
			seen[article.ID] = struct{}{}
			aggregated = append(aggregated, article)
			kept++
		}
		s.debug("site produced articles", "site", site.Name, "count", len(results), "kept", kept)
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func toScannerFeeds(cfg []config.FeedConfig) []scanner.Feed {
	feeds := make([]scanner.Feed, 0, len(cfg))
	for _, f := range cfg {
		feeds = append(feeds, scanner.Feed{
			Name: f.Name,
			URL:  f.URL,
		})
	}
	return feeds
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
