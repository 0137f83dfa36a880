package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Redis      RedisConfig      `yaml:"redis" mapstructure:"redis"`
	Groq       OpenAIConfig     `yaml:"groq" mapstructure:"groq"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Modes      ModesConfig      `yaml:"modes" mapstructure:"modes"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Cron       CronConfig       `yaml:"cron" mapstructure:"cron"`
	Breaker    BreakerConfig    `yaml:"breaker" mapstructure:"breaker"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// RedisConfig configures the optional run cache. An empty URL disables it.
type RedisConfig struct {
	URL        string `yaml:"url" mapstructure:"url"`
	Prefix     string `yaml:"prefix" mapstructure:"prefix"`
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// OpenAIConfig holds settings for an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// JinaConfig holds Jina search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// ModesConfig points at the backend roster used by each analysis mode.
// When RosterFile is empty the built-in roster is used.
type ModesConfig struct {
	RosterFile string `yaml:"roster_file" mapstructure:"roster_file"`
}

// SearchConfig configures social and web-context lookups.
type SearchConfig struct {
	SocialDomain      string `yaml:"social_domain" mapstructure:"social_domain"`
	SocialPlatform    string `yaml:"social_platform" mapstructure:"social_platform"`
	SocialResults     int    `yaml:"social_results" mapstructure:"social_results"`
	SentimentMaxChars int    `yaml:"sentiment_max_chars" mapstructure:"sentiment_max_chars"`
	ContextResults    int    `yaml:"context_results" mapstructure:"context_results"`
	ContextMaxChars   int    `yaml:"context_max_chars" mapstructure:"context_max_chars"`
	CompetitorResults int    `yaml:"competitor_results" mapstructure:"competitor_results"`
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	TrendWindowDays   int    `yaml:"trend_window_days" mapstructure:"trend_window_days"`
	StripHTML         bool   `yaml:"strip_html" mapstructure:"strip_html"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// CronConfig configures the secret-gated daily analysis endpoint.
type CronConfig struct {
	Secret string `yaml:"secret" mapstructure:"secret"`
}

// BreakerConfig configures the per-backend circuit breakers.
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// PricingConfig holds per-provider pricing rates keyed by model id.
type PricingConfig struct {
	Groq       map[string]ModelPricing `yaml:"groq" mapstructure:"groq"`
	OpenAI     map[string]ModelPricing `yaml:"openai" mapstructure:"openai"`
	Anthropic  map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity map[string]ModelPricing `yaml:"perplexity" mapstructure:"perplexity"`
	Jina       JinaPricing             `yaml:"jina" mapstructure:"jina"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// JinaPricing holds Jina search pricing.
type JinaPricing struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BRANDSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "brandscope.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("redis.prefix", "brandscope:")
	v.SetDefault("redis.ttl_minutes", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.reset_timeout_secs", 60)
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.requests_per_second", 0.5)
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.requests_per_second", 5)
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.requests_per_second", 2)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.requests_per_second", 1)
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("search.social_domain", "x.com")
	v.SetDefault("search.social_platform", "X")
	v.SetDefault("search.social_results", 5)
	v.SetDefault("search.sentiment_max_chars", 2000)
	v.SetDefault("search.context_results", 3)
	v.SetDefault("search.context_max_chars", 300)
	v.SetDefault("search.competitor_results", 5)
	v.SetDefault("search.timeout_secs", 20)
	v.SetDefault("search.trend_window_days", 7)
	v.SetDefault("search.strip_html", true)
	v.SetDefault("pricing.jina.per_query", 0.0002)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings required by the given command mode are
// present. Supported modes: "serve", "analyze", "read".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve", "analyze":
		errs = append(errs, c.validateStore()...)
		if c.Groq.Key == "" && c.OpenAI.Key == "" && c.Anthropic.Key == "" && c.Perplexity.Key == "" {
			errs = append(errs, "at least one of groq.key, openai.key, anthropic.key, perplexity.key is required")
		}
		if c.Jina.Key == "" {
			errs = append(errs, "jina.key is required")
		}
		if c.Search.SocialResults < 1 || c.Search.SocialResults > 25 {
			errs = append(errs, "search.social_results must be between 1 and 25")
		}
		if c.Search.SentimentMaxChars < 1 {
			errs = append(errs, "search.sentiment_max_chars must be > 0")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "read":
		errs = append(errs, c.validateStore()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Wrap(errors.New(strings.Join(errs, "; ")), "config: validate")
	}
	return nil
}

// ValidateProviders checks that every provider the model roster uses has
// an API key.
func (c *Config) ValidateProviders(providers []string) error {
	keys := map[string]string{
		"groq":       c.Groq.Key,
		"openai":     c.OpenAI.Key,
		"anthropic":  c.Anthropic.Key,
		"perplexity": c.Perplexity.Key,
	}
	var errs []string
	for _, p := range providers {
		key, known := keys[p]
		switch {
		case !known:
			errs = append(errs, fmt.Sprintf("roster provider %q is not supported", p))
		case key == "":
			errs = append(errs, fmt.Sprintf("%s.key is required by the model roster", p))
		}
	}
	if len(errs) > 0 {
		return eris.Wrap(errors.New(strings.Join(errs, "; ")), "config: validate providers")
	}
	return nil
}

func (c *Config) validateStore() []string {
	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required"}
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return []string{"store.sqlite_path is required"}
		}
	default:
		return []string{fmt.Sprintf("store.driver %q is not supported", c.Store.Driver)}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
