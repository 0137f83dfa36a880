// Package analysis runs the DeepFocus, Voyager and Explorer brand-ranking
// modes and the per-brand perception analysis.
package analysis

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brand-scope/internal/config"
	"github.com/sells-group/brand-scope/internal/cost"
	"github.com/sells-group/brand-scope/internal/generate"
	"github.com/sells-group/brand-scope/internal/metrics"
	"github.com/sells-group/brand-scope/internal/model"
	"github.com/sells-group/brand-scope/internal/search"
	"github.com/sells-group/brand-scope/internal/store"
)

// Request starts one analysis run. ModeID is generated when empty and
// SearchID defaults to it. Every mode runs each of Queries (just Query when empty). Explorer
// ranks Brand (the query when empty) against Competitors.
type Request struct {
	Mode        model.AnalysisMode `json:"mode"`
	UserID      string             `json:"user_id"`
	Query       string             `json:"query"`
	Queries     []string           `json:"queries,omitempty"`
	Brand       string             `json:"brand,omitempty"`
	Competitors []string           `json:"competitors,omitempty"`
	ModeID      string             `json:"mode_id,omitempty"`
	SearchID    string             `json:"search_id,omitempty"`
}

// Validate reports every malformed field at once.
func (r Request) Validate() error {
	v := &model.ValidationError{}
	if !slices.Contains(model.Modes, r.Mode) {
		v.Add("mode", "must be one of DeepFocus, Voyager, Explorer")
	}
	if _, err := uuid.Parse(r.UserID); err != nil {
		v.Add("user_id", "must be a uuid")
	}
	if len(r.queries()) == 0 {
		v.Add("query", "is required")
	}
	if r.Mode == model.ModeExplorer && len(r.competitors()) == 0 {
		v.Add("competitors", "Explorer mode requires competitors")
	}
	return v.Err()
}

func (r Request) queries() []string {
	src := r.Queries
	if len(src) == 0 {
		src = []string{r.Query}
	}
	return nonBlank(src)
}

func (r Request) competitors() []string { return nonBlank(r.Competitors) }

func (r Request) brand() string {
	if b := strings.TrimSpace(r.Brand); b != "" {
		return b
	}
	return strings.TrimSpace(r.Query)
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Settings controls search sizes and truncation budgets.
type Settings struct {
	SocialDomain      string
	SocialPlatform    string
	SocialResults     int
	SentimentMaxChars int
	ContextResults    int
	ContextMaxChars   int
	CompetitorResults int
	TrendWindowDays   int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		SocialDomain:      "x.com",
		SocialPlatform:    "X",
		SocialResults:     5,
		SentimentMaxChars: 2000,
		ContextResults:    3,
		ContextMaxChars:   300,
		CompetitorResults: 5,
		TrendWindowDays:   7,
	}
}

// SettingsFrom maps the search config section onto Settings, keeping the
// default for every unset value.
func SettingsFrom(cfg config.SearchConfig) Settings {
	s := DefaultSettings()
	if cfg.SocialDomain != "" {
		s.SocialDomain = cfg.SocialDomain
	}
	if cfg.SocialPlatform != "" {
		s.SocialPlatform = cfg.SocialPlatform
	}
	positive(&s.SocialResults, cfg.SocialResults)
	positive(&s.SentimentMaxChars, cfg.SentimentMaxChars)
	positive(&s.ContextResults, cfg.ContextResults)
	positive(&s.ContextMaxChars, cfg.ContextMaxChars)
	positive(&s.CompetitorResults, cfg.CompetitorResults)
	positive(&s.TrendWindowDays, cfg.TrendWindowDays)
	return s
}

func positive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// Analyzer is the single entry point for analysis runs.
type Analyzer struct {
	gen      generate.Generator
	searcher search.Searcher
	roster   *Roster
	settings Settings
	store    store.Store
	metrics  *metrics.Metrics
	costCalc *cost.Calculator

	now   func() time.Time
	intn  func(n int) int
	newID func() string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSettings overrides DefaultSettings.
func WithSettings(s Settings) Option {
	return func(a *Analyzer) { a.settings = s }
}

// WithStore enables AnalyzeBrand and DailyAnalysis.
func WithStore(st store.Store) Option {
	return func(a *Analyzer) { a.store = st }
}

// WithMetrics records run outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithCostCalculator attaches a cost ledger to each run and logs its total.
func WithCostCalculator(c *cost.Calculator) Option {
	return func(a *Analyzer) { a.costCalc = c }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithRandom replaces the source of synthetic trend values. intn must
// return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(a *Analyzer) { a.intn = intn }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(f func() string) Option {
	return func(a *Analyzer) { a.newID = f }
}

// New builds an Analyzer. A nil roster means DefaultRoster.
func New(gen generate.Generator, searcher search.Searcher, roster *Roster, opts ...Option) *Analyzer {
	if roster == nil {
		roster = DefaultRoster()
	}
	a := &Analyzer{
		gen:      gen,
		searcher: searcher,
		roster:   roster,
		settings: DefaultSettings(),
		now:      time.Now,
		intn:     rand.IntN,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Roster returns the roster in use.
func (a *Analyzer) Roster() *Roster { return a.roster }

// Run validates req and executes its mode. Validation happens before any
// external call. A failed ranking call aborts the run and nothing is
// returned.
func (a *Analyzer) Run(ctx context.Context, req Request) (*model.SearchResults, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ModeID == "" {
		req.ModeID = a.newID()
	}
	// Stores key a run by mode_id only; reads report it as the search id too.
	if req.SearchID == "" {
		req.SearchID = req.ModeID
	}

	log := zap.L().With(
		zap.String("mode", string(req.Mode)),
		zap.String("mode_id", req.ModeID),
		zap.String("user_id", req.UserID),
	)
	ctx, ledger := a.withLedger(ctx)
	defer ledger.Log(log)

	log.Info("analysis: run started", zap.Strings("queries", req.queries()))
	start := time.Now()

	var (
		res *model.SearchResults
		err error
	)
	switch req.Mode {
	case model.ModeDeepFocus:
		res, err = a.deepFocus(ctx, req)
	case model.ModeVoyager:
		res, err = a.voyager(ctx, req, log)
	case model.ModeExplorer:
		res, err = a.explorer(ctx, req)
	}
	elapsed := time.Since(start)

	if err != nil {
		a.observe(req.Mode, "error", elapsed, 0)
		log.Error("analysis: run failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, eris.Wrapf(err, "analysis: %s run", req.Mode)
	}

	a.observe(req.Mode, "success", elapsed, len(res.AIRankings))
	log.Info("analysis: run complete",
		zap.Duration("elapsed", elapsed),
		zap.Int("rankings", len(res.AIRankings)),
		zap.Int("insights", len(res.SocialInsights)),
		zap.Int("comparisons", len(res.Comparisons)),
	)
	return res, nil
}

func (a *Analyzer) withLedger(ctx context.Context) (context.Context, *cost.Ledger) {
	if l := cost.LedgerFrom(ctx); l != nil || a.costCalc == nil {
		return ctx, nil
	}
	l := cost.NewLedger(a.costCalc)
	return cost.WithLedger(ctx, l), l
}

func (a *Analyzer) observe(mode model.AnalysisMode, status string, elapsed time.Duration, rankings int) {
	if a.metrics == nil {
		return
	}
	a.metrics.RunsTotal.WithLabelValues(string(mode), status).Inc()
	a.metrics.RunDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	if rankings > 0 {
		a.metrics.RankingsProduced.WithLabelValues(string(mode)).Add(float64(rankings))
	}
}

func (a *Analyzer) degraded(reason string) {
	if a.metrics != nil {
		a.metrics.DegradedInsights.WithLabelValues(reason).Inc()
	}
}

// backend resolves a roster id. Roster.Validate guarantees the id exists
// for loaded rosters; an unknown id falls through to the generator, which
// rejects it.
func (a *Analyzer) backend(id string) generate.Backend {
	if b, ok := a.roster.Backend(id); ok {
		return b
	}
	return generate.Backend{ID: id, Name: id}
}
