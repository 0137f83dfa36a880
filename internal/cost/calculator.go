package cost

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates holds pricing keyed by provider, then model id.
type Rates struct {
	Models         map[string]map[string]ModelRate
	SearchPerQuery float64
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Tokens computes the cost of one generation call. Unknown models cost 0.
func (c *Calculator) Tokens(provider, model string, input, output int64) float64 {
	rate, ok := c.rates.Models[provider][model]
	if !ok {
		return 0
	}
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}

// SearchQuery returns the flat cost per search query.
func (c *Calculator) SearchQuery() float64 {
	return c.rates.SearchPerQuery
}

// DefaultRates returns the default pricing rates. Configured rates are
// merged over these.
func DefaultRates() Rates {
	return Rates{
		Models: map[string]map[string]ModelRate{
			"groq": {
				"gemma2-9b-it":                  {Input: 0.20, Output: 0.20},
				"llama-3.3-70b-versatile":       {Input: 0.59, Output: 0.79},
				"llama3-8b-8192":                {Input: 0.05, Output: 0.08},
				"llama3-70b-8192":               {Input: 0.59, Output: 0.79},
				"mistral-saba-24b":              {Input: 0.79, Output: 0.79},
				"deepseek-r1-distill-llama-70b": {Input: 0.75, Output: 0.99},
				"qwen-2.5-32b":                  {Input: 0.79, Output: 0.79},
			},
			"anthropic": {
				"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
				"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
			},
			"perplexity": {
				"sonar":     {Input: 1.00, Output: 1.00},
				"sonar-pro": {Input: 3.00, Output: 15.00},
			},
		},
		SearchPerQuery: 0.0002,
	}
}

// Merge overlays per-provider model rates onto r.
func (r Rates) Merge(provider string, models map[string]ModelRate) Rates {
	if len(models) == 0 {
		return r
	}
	if r.Models == nil {
		r.Models = make(map[string]map[string]ModelRate)
	}
	if r.Models[provider] == nil {
		r.Models[provider] = make(map[string]ModelRate)
	}
	for m, rate := range models {
		r.Models[provider][m] = rate
	}
	return r
}

// Ledger accumulates the spend of a single run. It is safe for concurrent use.
type Ledger struct {
	calc *Calculator

	mu       sync.Mutex
	total    float64
	calls    int
	searches int
}

// NewLedger starts an empty ledger priced by calc.
func NewLedger(calc *Calculator) *Ledger {
	return &Ledger{calc: calc}
}

type ledgerKey struct{}

// WithLedger attaches a run ledger to ctx.
func WithLedger(ctx context.Context, l *Ledger) context.Context {
	return context.WithValue(ctx, ledgerKey{}, l)
}

// LedgerFrom returns the ledger attached to ctx, or nil. A nil *Ledger
// accepts every call and records nothing.
func LedgerFrom(ctx context.Context) *Ledger {
	l, _ := ctx.Value(ledgerKey{}).(*Ledger)
	return l
}

// AddTokens records one generation call and returns its cost.
func (l *Ledger) AddTokens(provider, model string, input, output int64) float64 {
	if l == nil {
		return 0
	}
	c := l.calc.Tokens(provider, model, input, output)
	l.mu.Lock()
	l.total += c
	l.calls++
	l.mu.Unlock()
	return c
}

// AddSearch records one search query.
func (l *Ledger) AddSearch() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.total += l.calc.SearchQuery()
	l.searches++
	l.mu.Unlock()
}

// Total returns the accumulated cost in USD.
func (l *Ledger) Total() float64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Log writes a cost attribution line.
func (l *Ledger) Log(log *zap.Logger) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	log.Info("cost attribution",
		zap.Int("generation_calls", l.calls),
		zap.Int("search_queries", l.searches),
		zap.Float64("estimated_cost_usd", l.total),
	)
}
