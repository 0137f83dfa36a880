package generate

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/brand-scope/internal/cost"
	"github.com/sells-group/brand-scope/internal/metrics"
	"github.com/sells-group/brand-scope/internal/resilience"
)

// Backend is one named model reachable through a provider. Name is the
// display label stored as llm_name on rankings.
type Backend struct {
	ID       string `yaml:"id"`
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Name     string `yaml:"name"`
}

// Client resolves backends to providers and runs completions through a
// per-provider rate limiter and a per-backend circuit breaker.
type Client struct {
	backends  map[string]Backend
	providers map[string]Provider
	limiters  map[string]*rate.Limiter
	breakers  *resilience.Breakers
	metrics   *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithProvider registers a provider. A positive perSecond paces calls to it.
func WithProvider(name string, p Provider, perSecond float64) Option {
	return func(c *Client) {
		c.providers[name] = p
		if perSecond > 0 {
			c.limiters[name] = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithBreakers replaces the default circuit breaker registry.
func WithBreakers(b *resilience.Breakers) Option {
	return func(c *Client) { c.breakers = b }
}

// WithMetrics records call outcomes, latency, tokens and spend.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a Client for the given backends. Every backend's
// provider must be registered.
func NewClient(backends []Backend, opts ...Option) (*Client, error) {
	c := &Client{
		backends:  make(map[string]Backend, len(backends)),
		providers: make(map[string]Provider),
		limiters:  make(map[string]*rate.Limiter),
		breakers:  resilience.NewBreakers(resilience.FromSettings(0, 0)),
	}
	for _, o := range opts {
		o(c)
	}
	for _, b := range backends {
		if b.ID == "" || b.Model == "" {
			return nil, eris.Errorf("generate: backend %q needs id and model", b.ID)
		}
		if _, ok := c.providers[b.Provider]; !ok {
			return nil, eris.Errorf("generate: backend %s uses unconfigured provider %q", b.ID, b.Provider)
		}
		if _, dup := c.backends[b.ID]; dup {
			return nil, eris.Errorf("generate: duplicate backend %s", b.ID)
		}
		c.backends[b.ID] = b
	}
	return c, nil
}

// Backend returns the backend registered under id.
func (c *Client) Backend(id string) (Backend, bool) {
	b, ok := c.backends[id]
	return b, ok
}

// Complete implements Generator.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	fail := func(err error) (string, error) {
		c.count(req, "error")
		return "", &GenerationError{Backend: req.Backend, Schema: req.Schema.Name, Err: err}
	}

	b, ok := c.backends[req.Backend]
	if !ok {
		return fail(eris.Errorf("unknown backend %q", req.Backend))
	}
	p := c.providers[b.Provider]

	if lim := c.limiters[b.Provider]; lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return fail(eris.Wrap(err, "rate limit wait"))
		}
	}

	log := zap.L().With(
		zap.String("backend", b.ID),
		zap.String("model", b.Model),
		zap.String("schema", req.Schema.Name),
	)

	start := time.Now()
	out, err := resilience.ExecuteVal(ctx, c.breakers.Get(b.ID), func(ctx context.Context) (*Output, error) {
		return p.Complete(ctx, Completion{
			Model:       b.Model,
			System:      systemPrompt(req.Schema),
			Prompt:      req.Prompt,
			Temperature: req.Temperature,
			Schema:      req.Schema.JSON,
		})
	})
	elapsed := time.Since(start)
	if c.metrics != nil {
		c.metrics.GenerationDuration.WithLabelValues(b.ID).Observe(elapsed.Seconds())
	}
	if err != nil {
		log.Warn("generate: completion failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return fail(err)
	}

	spend := cost.LedgerFrom(ctx).AddTokens(b.Provider, b.Model, out.InputTokens, out.OutputTokens)
	if c.metrics != nil {
		c.metrics.TokensUsed.WithLabelValues(b.ID, "input").Add(float64(out.InputTokens))
		c.metrics.TokensUsed.WithLabelValues(b.ID, "output").Add(float64(out.OutputTokens))
		c.metrics.CostUSD.WithLabelValues(b.ID).Add(spend)
	}
	c.count(req, "success")

	log.Debug("generate: completion done",
		zap.Duration("elapsed", elapsed),
		zap.Int64("input_tokens", out.InputTokens),
		zap.Int64("output_tokens", out.OutputTokens),
		zap.Float64("estimated_cost_usd", spend),
	)
	return out.Text, nil
}

func (c *Client) count(req Request, status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.GenerationsTotal.WithLabelValues(req.Backend, req.Schema.Name, status).Inc()
}
