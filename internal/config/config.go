package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"NewsRanker/internal/credibility"
	"NewsRanker/internal/features"
	"NewsRanker/internal/scoring"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "NEWS_RANKER_CONFIG"
	newsAPIKeyEnv    = "NEWS_API_KEY"
	mlAPIKeyEnv      = "ML_API_KEY"
	chatGPTAPIKeyEnv = "CHATGPT_API_KEY"
	chatGPTModelEnv  = "CHATGPT_MODEL"
	corpusDBPathEnv  = "CORPUS_DB_PATH"
	logLevelEnv      = "LOG_LEVEL"
	logFormatEnv     = "LOG_FORMAT"
)

// Novelty scopes and sentiment backends accepted in configuration.
const (
	NoveltyScopeBatch   = "batch"
	NoveltyScopeHistory = "history"
	BackendML           = "ml"
	BackendChatGPT      = "chatgpt"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Providers ProviderConfig  `yaml:"providers"`
	Sites     []SiteConfig    `yaml:"sites" validate:"dive"`
	ML        MLConfig        `yaml:"ml"`
	ChatGPT   ChatGPTConfig   `yaml:"chatgpt"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Corpus    CorpusConfig    `yaml:"corpus"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// SchedulerConfig defines when recurring ranking runs fire.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	Query          string         `yaml:"query"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// ProviderConfig groups settings for article sources.
type ProviderConfig struct {
	NewsAPI NewsAPIConfig `yaml:"newsapi"`
}

// NewsAPIConfig wires the NewsAPI "everything" endpoint.
type NewsAPIConfig struct {
	BaseURL           string   `yaml:"baseUrl" validate:"omitempty,url"`
	APIKey            string   `yaml:"apiKey"`
	Language          string   `yaml:"language"`
	PageSize          int      `yaml:"pageSize" validate:"gte=0,lte=100"`
	RequestsPerSecond float64  `yaml:"requestsPerSecond" validate:"gte=0"`
	AllowedQueries    []string `yaml:"allowedQueries"`
}

// SiteConfig describes a single source with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name" validate:"required"`
	Scanner string            `yaml:"scanner" validate:"required,oneof=newsapi rss"`
	Feeds   []FeedConfig      `yaml:"feeds" validate:"dive"`
	Options map[string]string `yaml:"options"`
}

// FeedConfig holds a concrete feed endpoint (e.g., an RSS URL).
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url" validate:"required,url"`
}

// MLConfig describes the sentiment inference service.
type MLConfig struct {
	InferenceURL      string  `yaml:"inferenceUrl"`
	APIKey            string  `yaml:"apiKey"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond" validate:"gte=0"`
}

// ChatGPTConfig defines how to contact an OpenAI-compatible chat API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// SentimentConfig selects the prediction backend.
type SentimentConfig struct {
	Backend     string `yaml:"backend" validate:"oneof=ml chatgpt"`
	Concurrency int    `yaml:"concurrency" validate:"gte=1,lte=64"`
}

// RankingConfig is the static scoring configuration passed into the core.
type RankingConfig struct {
	DefaultStrategy    string             `yaml:"defaultStrategy" validate:"omitempty,oneof=market_importance sentiment"`
	Limit              int                `yaml:"limit" validate:"gte=0"`
	Workers            int                `yaml:"workers" validate:"gte=0"`
	EntityTerms        []string           `yaml:"entityTerms"`
	MarketVerbs        []string           `yaml:"marketVerbs"`
	CountTickers       *bool              `yaml:"countTickers"`
	Credibility        map[string]float64 `yaml:"credibility" validate:"dive,keys,required,endkeys,gte=0,lte=1"`
	DefaultCredibility float64            `yaml:"defaultCredibility" validate:"gte=0,lte=1"`
	Weights            scoring.Weights    `yaml:"weights"`
	Novelty            NoveltyConfig      `yaml:"novelty"`

	// set by Parse when the document names the key, so an explicit zero still overrides
	limitSet              bool
	defaultCredibilitySet bool
}

// NoveltyConfig chooses the corpus novelty is measured against.
type NoveltyConfig struct {
	Scope      string        `yaml:"scope" validate:"oneof=batch history"`
	Window     time.Duration `yaml:"window" validate:"gte=0"`
	MaxHistory int           `yaml:"maxHistory" validate:"gte=0"`
}

// CorpusConfig locates the SQLite database of previously seen articles.
type CorpusConfig struct {
	Path string `yaml:"path"`
}

// FeatureOptions converts lexicon settings for the extractor.
func (r RankingConfig) FeatureOptions() features.Options {
	opts := features.Options{
		EntityTerms:  r.EntityTerms,
		MarketVerbs:  r.MarketVerbs,
		CountTickers: true,
	}
	if r.CountTickers != nil {
		opts.CountTickers = *r.CountTickers
	}
	return opts
}

// Load reads YAML configuration (if present), applies environment overrides and validates the result.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := Parse(raw)
			if err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a YAML document without merging defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}

	var present struct {
		Ranking struct {
			Limit              *int     `yaml:"limit"`
			DefaultCredibility *float64 `yaml:"defaultCredibility"`
		} `yaml:"ranking"`
	}
	if err := yaml.Unmarshal(raw, &present); err != nil {
		return Config{}, err
	}
	cfg.Ranking.limitSet = present.Ranking.Limit != nil
	cfg.Ranking.defaultCredibilitySet = present.Ranking.DefaultCredibility != nil

	return cfg, nil
}

// Validate checks field constraints and the scoring weights.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Ranking.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid config: ranking %w", err)
	}
	if c.Ranking.DefaultStrategy != "" {
		if _, err := scoring.ParseStrategy(c.Ranking.DefaultStrategy); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Providers.NewsAPI.APIKey = v
	}

	if v := os.Getenv(mlAPIKeyEnv); v != "" {
		c.ML.APIKey = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.ChatGPT.Model = v
	}

	if v := os.Getenv(corpusDBPathEnv); v != "" {
		c.Corpus.Path = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.Query != "" {
		base.Scheduler.Query = override.Scheduler.Query
	}

	news := override.Providers.NewsAPI
	if news.BaseURL != "" {
		base.Providers.NewsAPI.BaseURL = news.BaseURL
	}
	if news.APIKey != "" {
		base.Providers.NewsAPI.APIKey = news.APIKey
	}
	if news.Language != "" {
		base.Providers.NewsAPI.Language = news.Language
	}
	if news.PageSize != 0 {
		base.Providers.NewsAPI.PageSize = news.PageSize
	}
	if news.RequestsPerSecond != 0 {
		base.Providers.NewsAPI.RequestsPerSecond = news.RequestsPerSecond
	}
	if len(news.AllowedQueries) > 0 {
		base.Providers.NewsAPI.AllowedQueries = news.AllowedQueries
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	if override.ML.InferenceURL != "" {
		base.ML.InferenceURL = override.ML.InferenceURL
	}
	if override.ML.APIKey != "" {
		base.ML.APIKey = override.ML.APIKey
	}
	if override.ML.RequestsPerSecond != 0 {
		base.ML.RequestsPerSecond = override.ML.RequestsPerSecond
	}

	if override.ChatGPT.Endpoint != "" {
		base.ChatGPT.Endpoint = override.ChatGPT.Endpoint
	}
	if override.ChatGPT.Model != "" {
		base.ChatGPT.Model = override.ChatGPT.Model
	}
	if override.ChatGPT.APIKey != "" {
		base.ChatGPT.APIKey = override.ChatGPT.APIKey
	}
	if override.ChatGPT.SystemPrompt != "" {
		base.ChatGPT.SystemPrompt = override.ChatGPT.SystemPrompt
	}

	if override.Sentiment.Backend != "" {
		base.Sentiment.Backend = override.Sentiment.Backend
	}
	if override.Sentiment.Concurrency != 0 {
		base.Sentiment.Concurrency = override.Sentiment.Concurrency
	}

	base.Ranking = mergeRanking(base.Ranking, override.Ranking)

	if override.Corpus.Path != "" {
		base.Corpus.Path = override.Corpus.Path
	}

	return base
}

func mergeRanking(base, override RankingConfig) RankingConfig {
	if override.DefaultStrategy != "" {
		base.DefaultStrategy = override.DefaultStrategy
	}
	if override.Limit != 0 || override.limitSet {
		base.Limit = override.Limit
	}
	if override.Workers != 0 {
		base.Workers = override.Workers
	}
	if len(override.EntityTerms) > 0 {
		base.EntityTerms = override.EntityTerms
	}
	if len(override.MarketVerbs) > 0 {
		base.MarketVerbs = override.MarketVerbs
	}
	if override.CountTickers != nil {
		base.CountTickers = override.CountTickers
	}
	if len(override.Credibility) > 0 {
		base.Credibility = override.Credibility
	}
	if override.DefaultCredibility != 0 || override.defaultCredibilitySet {
		base.DefaultCredibility = override.DefaultCredibility
	}
	if override.Weights != (scoring.Weights{}) {
		base.Weights = override.Weights
	}
	if override.Novelty.Scope != "" {
		base.Novelty.Scope = override.Novelty.Scope
	}
	if override.Novelty.Window != 0 {
		base.Novelty.Window = override.Novelty.Window
	}
	if override.Novelty.MaxHistory != 0 {
		base.Novelty.MaxHistory = override.Novelty.MaxHistory
	}
	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	countTickers := true
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Scheduler: SchedulerConfig{CronExpression: "0 * * * *", Timezone: defaultTimezone, Query: "stock market", location: tz},
		Providers: ProviderConfig{
			NewsAPI: NewsAPIConfig{
				BaseURL:           "https://newsapi.org/v2/everything",
				Language:          "en",
				PageSize:          50,
				RequestsPerSecond: 1,
				AllowedQueries: []string{
					"stock market",
					"federal reserve",
					"interest rates",
					"inflation",
					"earnings",
					"cryptocurrency",
				},
			},
		},
		Sites: []SiteConfig{
			{Name: "newsapi", Scanner: "newsapi"},
		},
		ML: MLConfig{InferenceURL: "http://localhost:8080", RequestsPerSecond: 10},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You classify the sentiment of financial news for market impact.",
		},
		Sentiment: SentimentConfig{Backend: BackendML, Concurrency: 4},
		Ranking: RankingConfig{
			DefaultStrategy:    string(scoring.Default),
			Limit:              10,
			EntityTerms:        features.DefaultEntityTerms(),
			MarketVerbs:        features.DefaultMarketVerbs(),
			CountTickers:       &countTickers,
			Credibility:        credibility.DefaultEntries(),
			DefaultCredibility: credibility.DefaultScore,
			Weights:            scoring.DefaultWeights(),
			Novelty:            NoveltyConfig{Scope: NoveltyScopeBatch, Window: 72 * time.Hour, MaxHistory: 500},
		},
		Corpus: CorpusConfig{Path: "./newsranker.db"},
	}
}
