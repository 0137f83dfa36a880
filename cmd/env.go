package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brand-scope/internal/analysis"
	"github.com/sells-group/brand-scope/internal/cache"
	"github.com/sells-group/brand-scope/internal/config"
	"github.com/sells-group/brand-scope/internal/cost"
	"github.com/sells-group/brand-scope/internal/generate"
	"github.com/sells-group/brand-scope/internal/metrics"
	"github.com/sells-group/brand-scope/internal/resilience"
	"github.com/sells-group/brand-scope/internal/results"
	"github.com/sells-group/brand-scope/internal/search"
	"github.com/sells-group/brand-scope/internal/store"
	"github.com/sells-group/brand-scope/pkg/anthropic"
	"github.com/sells-group/brand-scope/pkg/jina"
	"github.com/sells-group/brand-scope/pkg/perplexity"
)

// appEnv holds everything the serve, analyze and daily commands need.
type appEnv struct {
	Store     store.Store
	Analyzer  *analysis.Analyzer
	Persister *results.Persister
	Reader    *results.Reader
	Metrics   *metrics.Metrics
	Cache     *cache.Redis // may be nil
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates config for mode, opens the store and builds the
// analyzer with every configured provider. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	roster := analysis.DefaultRoster()
	if cfg.Modes.RosterFile != "" {
		r, err := analysis.LoadRoster(cfg.Modes.RosterFile)
		if err != nil {
			return nil, err
		}
		roster = r
	}
	if err := cfg.ValidateProviders(roster.Providers()); err != nil {
		return nil, err
	}

	m := metrics.New(prometheus.NewRegistry())

	gen, err := buildGenerator(cfg, roster, m)
	if err != nil {
		return nil, err
	}

	st, err := openMigratedStore(ctx)
	if err != nil {
		return nil, err
	}

	env := &appEnv{Store: st, Metrics: m, Persister: results.NewPersister(st)}

	var readerOpts []results.ReaderOption
	if cfg.Redis.URL != "" {
		rc, err := cache.Open(ctx, cfg.Redis.URL, cfg.Redis.Prefix,
			time.Duration(cfg.Redis.TTLMinutes)*time.Minute, cache.WithMetrics(m))
		if err != nil {
			zap.L().Warn("redis unavailable, run cache disabled", zap.Error(err))
		} else {
			env.Cache = rc
			readerOpts = append(readerOpts, results.WithCache(rc))
		}
	}
	env.Reader = results.NewReader(st, readerOpts...)

	env.Analyzer = analysis.New(gen, buildSearcher(cfg, m), roster,
		analysis.WithSettings(analysis.SettingsFrom(cfg.Search)),
		analysis.WithStore(st),
		analysis.WithMetrics(m),
		analysis.WithCostCalculator(cost.NewCalculator(buildRates(cfg.Pricing))),
	)

	zap.L().Info("environment ready",
		zap.String("mode", mode),
		zap.String("store", cfg.Store.Driver),
		zap.Strings("providers", roster.Providers()),
		zap.Bool("cache", env.Cache != nil),
	)
	return env, nil
}

// initReader opens just enough to serve stored results.
func initReader(ctx context.Context) (*results.Reader, store.Store, error) {
	if err := cfg.Validate("read"); err != nil {
		return nil, nil, err
	}
	st, err := openMigratedStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return results.NewReader(st), st, nil
}

// buildGenerator registers a provider for every configured key and wires
// breakers whose transitions feed the breaker gauge.
func buildGenerator(c *config.Config, roster *analysis.Roster, m *metrics.Metrics) (*generate.Client, error) {
	bcfg := resilience.FromSettings(c.Breaker.FailureThreshold, c.Breaker.ResetTimeoutSecs)
	bcfg.OnStateChange = func(name string, from, to resilience.CircuitState) {
		if m != nil {
			m.BreakerState.WithLabelValues(name).Set(float64(to))
		}
		zap.L().Warn("circuit breaker transition",
			zap.String("backend", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}

	opts := []generate.Option{
		generate.WithBreakers(resilience.NewBreakers(bcfg)),
		generate.WithMetrics(m),
	}
	if c.Groq.Key != "" {
		opts = append(opts, generate.WithProvider(generate.ProviderGroq,
			generate.NewOpenAIProvider(c.Groq.Key, c.Groq.BaseURL), c.Groq.RequestsPerSecond))
	}
	if c.OpenAI.Key != "" {
		opts = append(opts, generate.WithProvider(generate.ProviderOpenAI,
			generate.NewOpenAIProvider(c.OpenAI.Key, c.OpenAI.BaseURL), c.OpenAI.RequestsPerSecond))
	}
	if c.Anthropic.Key != "" {
		opts = append(opts, generate.WithProvider(generate.ProviderAnthropic,
			generate.NewAnthropicProvider(anthropic.NewClient(c.Anthropic.Key), c.Anthropic.MaxTokens),
			c.Anthropic.RequestsPerSecond))
	}
	if c.Perplexity.Key != "" {
		var popts []perplexity.Option
		if c.Perplexity.BaseURL != "" {
			popts = append(popts, perplexity.WithBaseURL(c.Perplexity.BaseURL))
		}
		opts = append(opts, generate.WithProvider(generate.ProviderPerplexity,
			generate.NewPerplexityProvider(perplexity.NewClient(c.Perplexity.Key, popts...)),
			c.Perplexity.RequestsPerSecond))
	}

	gen, err := generate.NewClient(roster.Backends, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "init generator")
	}
	return gen, nil
}

func buildSearcher(c *config.Config, m *metrics.Metrics) *search.JinaSearcher {
	var jopts []jina.Option
	if c.Jina.SearchBaseURL != "" {
		jopts = append(jopts, jina.WithSearchBaseURL(c.Jina.SearchBaseURL))
	}
	sopts := []search.JinaOption{
		search.WithHTMLStripping(c.Search.StripHTML),
		search.WithMetrics(m),
	}
	if c.Search.TimeoutSecs > 0 {
		sopts = append(sopts, search.WithTimeout(time.Duration(c.Search.TimeoutSecs)*time.Second))
	}
	return search.NewJinaSearcher(jina.NewClient(c.Jina.Key, jopts...), sopts...)
}

// buildRates overlays configured pricing on the defaults.
func buildRates(p config.PricingConfig) cost.Rates {
	rates := cost.DefaultRates()
	for provider, models := range map[string]map[string]config.ModelPricing{
		generate.ProviderGroq:       p.Groq,
		generate.ProviderOpenAI:     p.OpenAI,
		generate.ProviderAnthropic:  p.Anthropic,
		generate.ProviderPerplexity: p.Perplexity,
	} {
		converted := make(map[string]cost.ModelRate, len(models))
		for id, mp := range models {
			converted[id] = cost.ModelRate{Input: mp.Input, Output: mp.Output}
		}
		rates = rates.Merge(provider, converted)
	}
	if p.Jina.PerQuery > 0 {
		rates.SearchPerQuery = p.Jina.PerQuery
	}
	return rates
}
