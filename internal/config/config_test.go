package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRanker/internal/scoring"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "market_importance", cfg.Ranking.DefaultStrategy)
	assert.Equal(t, 0.95, cfg.Ranking.Credibility["bloomberg"])
	assert.True(t, cfg.Ranking.FeatureOptions().CountTickers)
}

func TestMergeConfigOverridesRanking(t *testing.T) {
	t.Parallel()

	fileCfg, err := Parse([]byte(`
ranking:
  defaultStrategy: sentiment
  limit: 5
  countTickers: false
  credibility:
    wsj: 0.9
  weights:
    sentiment: 0.2
    entityDensity: 0.2
    marketVerbDensity: 0.2
    novelty: 0.2
    credibility: 0.2
  novelty:
    scope: history
    window: 24h
sites:
  - name: markets-rss
    scanner: rss
    feeds:
      - name: cnbc
        url: https://www.cnbc.com/id/100003114/device/rss/rss.html
`))
	require.NoError(t, err)

	cfg := mergeConfig(defaultConfig(), fileCfg)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sentiment", cfg.Ranking.DefaultStrategy)
	assert.Equal(t, 5, cfg.Ranking.Limit)
	assert.False(t, cfg.Ranking.FeatureOptions().CountTickers)
	assert.Equal(t, map[string]float64{"wsj": 0.9}, cfg.Ranking.Credibility)
	assert.Equal(t, 0.2, cfg.Ranking.Weights.Novelty)
	assert.Equal(t, NoveltyScopeHistory, cfg.Ranking.Novelty.Scope)
	assert.Equal(t, 24*time.Hour, cfg.Ranking.Novelty.Window)
	assert.Equal(t, 500, cfg.Ranking.Novelty.MaxHistory)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "rss", cfg.Sites[0].Scanner)
	// untouched sections keep defaults
	assert.Equal(t, "https://newsapi.org/v2/everything", cfg.Providers.NewsAPI.BaseURL)
}

func TestMergeConfigKeepsExplicitZeros(t *testing.T) {
	t.Parallel()

	fileCfg, err := Parse([]byte("ranking:\n  defaultCredibility: 0\n  limit: 0\n"))
	require.NoError(t, err)

	cfg := mergeConfig(defaultConfig(), fileCfg)
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.Ranking.DefaultCredibility)
	assert.Zero(t, cfg.Ranking.Limit)

	untouched, err := Parse([]byte("ranking:\n  defaultStrategy: sentiment\n"))
	require.NoError(t, err)

	cfg = mergeConfig(defaultConfig(), untouched)
	assert.Equal(t, 0.5, cfg.Ranking.DefaultCredibility)
	assert.Equal(t, 10, cfg.Ranking.Limit)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.Ranking.DefaultStrategy = "unknown_strategy" }},
		{"credibility above one", func(c *Config) { c.Ranking.Credibility["x"] = 1.5 }},
		{"default credibility negative", func(c *Config) { c.Ranking.DefaultCredibility = -0.1 }},
		{"weights do not sum to one", func(c *Config) { c.Ranking.Weights = scoring.Weights{Sentiment: 0.5} }},
		{"novelty scope", func(c *Config) { c.Ranking.Novelty.Scope = "global" }},
		{"backend", func(c *Config) { c.Sentiment.Backend = "vader" }},
		{"site scanner", func(c *Config) { c.Sites = []SiteConfig{{Name: "x", Scanner: "arxiv"}} }},
		{"feed url", func(c *Config) {
			c.Sites = []SiteConfig{{Name: "x", Scanner: "rss", Feeds: []FeedConfig{{URL: "not a url"}}}}
		}},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadAppliesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scheduler:
  timezone: Europe/London
ranking:
  limit: 3
`), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(newsAPIKeyEnv, "news-key")
	t.Setenv(corpusDBPathEnv, filepath.Join(dir, "corpus.db"))
	t.Setenv(logLevelEnv, "debug")
	t.Setenv(logFormatEnv, "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Ranking.Limit)
	assert.Equal(t, "news-key", cfg.Providers.NewsAPI.APIKey)
	assert.Equal(t, filepath.Join(dir, "corpus.db"), cfg.Corpus.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "Europe/London", cfg.Scheduler.Location().String())
}

func TestLoadExplicitZeroRanking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranking: {defaultCredibility: 0, limit: 0}\n"), 0o600))
	t.Setenv(configPathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Ranking.DefaultCredibility)
	assert.Zero(t, cfg.Ranking.Limit)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranking:\n  defaultStrategy: fastest\n"), 0o600))
	t.Setenv(configPathEnv, path)

	_, err := Load()
	require.Error(t, err)
}
