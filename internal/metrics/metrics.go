// Package metrics exposes Prometheus collectors for analysis runs and the
// external calls they make.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector. Build one per process with New.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	RankingsProduced   *prometheus.CounterVec
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	TokensUsed         *prometheus.CounterVec
	CostUSD            *prometheus.CounterVec
	SearchesTotal      *prometheus.CounterVec
	DegradedInsights   *prometheus.CounterVec
	CacheLookups       *prometheus.CounterVec
	BreakerState       *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New registers all collectors on reg. Use prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brandscope_runs_total",
			Help: "Analysis runs by mode and outcome",
		}, []string{"mode", "status"}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brandscope_run_duration_seconds",
			Help:    "Analysis run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"mode"}),
		RankingsProduced: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brandscope_rankings_produced_total",
			Help: "AI ranking rows produced by successful runs",
		}, []string{"mode"}),
		GenerationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brandscope_generations_total",
			Help: "Structured generation calls by backend, schema and outcome",
		}, []string{"backend", "schema", "status"}),
		GenerationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brandscope_generation_duration_seconds",
			Help:    "Structured generation latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		TokensUsed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brandscope_llm_tokens_total",
			Help: "LLM tokens used by backend and direction",
		}, []string{"backend", "type"}),
		CostUSD: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brandscope_llm_cost_usd_total",
			Help: "Estimated LLM spend in USD",
		}, []string{"backend"}),
		SearchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brandscope_searches_total",
			Help: "Search calls by outcome",
		}, []string{"status"}),
		DegradedInsights: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brandscope_degraded_insights_total",
			Help: "Social insights replaced by the neutral default",
		}, []string{"reason"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "brandscope_cache_lookups_total",
			Help: "Run cache lookups by result",
		}, []string{"result"}),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brandscope_breaker_state",
			Help: "Circuit breaker state per backend (0 closed, 1 open, 2 half-open)",
		}, []string{"backend"}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
