package analysis

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brand-scope/internal/generate"
	"github.com/sells-group/brand-scope/internal/model"
	"github.com/sells-group/brand-scope/internal/prompt"
	"github.com/sells-group/brand-scope/internal/results"
	"github.com/sells-group/brand-scope/internal/search"
)

const perceptionTemperature = 0.3

// ErrBrandNotFound is returned by AnalyzeBrand for an unknown brand id.
var ErrBrandNotFound = eris.New("analysis: brand not found")

// BrandReport is the outcome of a perception analysis, in the shape the
// models returned it.
type BrandReport struct {
	Brand       model.Brand                `json:"brand"`
	Perception  generate.Perception        `json:"brand_analysis"`
	Competitors []generate.LandscapeEntry  `json:"competitors"`
	Keywords    []generate.KeywordEstimate `json:"keywords"`
}

// BrandStatus is one brand's outcome in a daily run.
type BrandStatus struct {
	BrandID string `json:"brandId"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DailyReport summarizes a daily run.
type DailyReport struct {
	Succeeded int           `json:"succeeded"`
	Results   []BrandStatus `json:"results"`
}

// GenerateTopBrands suggests leading brands for an industry.
func (a *Analyzer) GenerateTopBrands(ctx context.Context, industry string) ([]model.TopBrand, error) {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return nil, model.NewValidationError("industry", "Industry is required")
	}
	ctx, ledger := a.withLedger(ctx)
	defer ledger.Log(zap.L().With(zap.String("industry", industry)))

	list, err := generate.Generate(ctx, a.gen, generate.Request{
		Backend: a.roster.TopBrands,
		Prompt:  prompt.TopBrands(industry),
	}, generate.TopBrandsSchema)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: top brands for %s", industry)
	}
	return list.Brands, nil
}

// FindCompetitors names likely competitors of brand from web search
// snippets. Search or generation failure yields an empty list.
func (a *Analyzer) FindCompetitors(ctx context.Context, brand, industry string) ([]string, error) {
	brand, industry = strings.TrimSpace(brand), strings.TrimSpace(industry)
	v := &model.ValidationError{}
	if brand == "" {
		v.Add("brand", "is required")
	}
	if industry == "" {
		v.Add("industry", "is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("brand", brand), zap.String("industry", industry))
	ctx, ledger := a.withLedger(ctx)
	defer ledger.Log(log)

	docs, err := a.searcher.Search(ctx, search.Query{
		Text:        "top competitors of " + brand + " in " + industry,
		NumResults:  a.settings.CompetitorResults,
		IncludeText: true,
	})
	if err != nil {
		log.Warn("analysis: competitor search failed", zap.Error(err))
		return []string{}, nil
	}

	snippets := make([]string, 0, len(docs))
	for _, d := range docs {
		snippets = append(snippets, d.Title+": "+d.Text)
	}
	names, err := generate.Generate(ctx, a.gen, generate.Request{
		Backend: a.roster.Competitors,
		Prompt:  prompt.CompetitorDiscovery(brand, industry, strings.Join(snippets, "\n\n")),
	}, generate.CompetitorNamesSchema)
	if err != nil {
		log.Warn("analysis: competitor extraction failed", zap.Error(err))
		return []string{}, nil
	}

	out := nonBlank(names.Competitors)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// AnalyzeBrand builds a perception snapshot, a competitor landscape and a
// keyword plan for a stored brand and saves all three.
func (a *Analyzer) AnalyzeBrand(ctx context.Context, brandID string) (*BrandReport, error) {
	if strings.TrimSpace(brandID) == "" {
		return nil, model.NewValidationError("brandId", "Brand ID is required")
	}
	if a.store == nil {
		return nil, eris.New("analysis: no store configured")
	}

	brand, err := a.store.GetBrand(ctx, brandID)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: load brand %s", brandID)
	}
	if brand == nil {
		return nil, eris.Wrapf(ErrBrandNotFound, "analysis: brand %s", brandID)
	}

	log := zap.L().With(zap.String("brand_id", brand.ID), zap.String("brand", brand.Name))
	ctx, ledger := a.withLedger(ctx)
	defer ledger.Log(log)
	log.Info("analysis: brand analysis started")

	docs, err := a.searcher.Search(ctx, search.Query{
		Text:        brand.Name + " " + brand.Industry + " brand analysis reviews reputation",
		NumResults:  a.settings.ContextResults,
		IncludeText: true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "analysis: brand context search")
	}
	sources := make([]string, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, prompt.Source(d.URL, search.Truncate(d.Text, a.settings.ContextMaxChars)))
	}

	backend := a.roster.Perception
	temp := perceptionTemperature
	perception, err := generate.Generate(ctx, a.gen, generate.Request{
		Backend:     backend,
		Prompt:      prompt.Perception(brand.Name, brand.Industry, brand.Website, strings.Join(sources, "\n\n")),
		Temperature: &temp,
	}, generate.PerceptionSchema)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: perception")
	}
	landscape, err := generate.Generate(ctx, a.gen, generate.Request{
		Backend: backend,
		Prompt:  prompt.Landscape(brand.Name, brand.Industry),
	}, generate.LandscapeSchema)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: competitor landscape")
	}
	plan, err := generate.Generate(ctx, a.gen, generate.Request{
		Backend: backend,
		Prompt:  prompt.Keywords(brand.Name, brand.Industry),
	}, generate.KeywordPlanSchema)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: keyword plan")
	}

	if err := a.saveBrandAnalysis(ctx, brand, perception, landscape, plan); err != nil {
		return nil, err
	}

	log.Info("analysis: brand analysis complete",
		zap.Int("competitors", len(landscape.Competitors)),
		zap.Int("keywords", len(plan.Keywords)),
	)
	return &BrandReport{
		Brand:       *brand,
		Perception:  perception,
		Competitors: landscape.Competitors,
		Keywords:    plan.Keywords,
	}, nil
}

func (a *Analyzer) saveBrandAnalysis(ctx context.Context, brand *model.Brand, p generate.Perception, l generate.Landscape, k generate.KeywordPlan) error {
	now := a.now().UTC()

	err := a.store.InsertBrandMetrics(ctx, model.BrandMetrics{
		ID:                 a.newID(),
		BrandID:            brand.ID,
		VisibilityScore:    p.VisibilityScore,
		PositiveSentiment:  p.SentimentAnalysis.Positive,
		NegativeSentiment:  p.SentimentAnalysis.Negative,
		NeutralSentiment:   p.SentimentAnalysis.Neutral,
		ConsumerPerception: p.ConsumerPerception,
		Strengths:          p.Strengths,
		Weaknesses:         p.Weaknesses,
		Opportunities:      p.Opportunities,
		AnalyzedAt:         now,
	})
	if err != nil {
		return &results.PersistenceError{Table: "brand_metrics", Err: err}
	}

	comps := make([]model.Competitor, 0, len(l.Competitors))
	for _, c := range l.Competitors {
		comps = append(comps, model.Competitor{
			ID:          a.newID(),
			UserID:      brand.UserID,
			BrandID:     brand.ID,
			Name:        results.NormalizeName(c.Name),
			Website:     strings.TrimSpace(c.Website),
			Industry:    brand.Industry,
			RankingDiff: int(math.Round(c.RankingDiff)),
			CreatedAt:   now,
		})
	}
	if err := a.store.InsertCompetitors(ctx, comps); err != nil {
		return &results.PersistenceError{Table: "competitors", Err: err}
	}

	kws := make([]model.Keyword, 0, len(k.Keywords))
	for _, kw := range k.Keywords {
		kws = append(kws, model.Keyword{
			ID:               a.newID(),
			EntityID:         brand.ID,
			EntityName:       brand.Name,
			EntityType:       model.EntityBrand,
			UserID:           brand.UserID,
			Keyword:          strings.TrimSpace(kw.Keyword),
			SearchVolume:     int(math.Round(kw.SearchVolume)),
			Difficulty:       kw.Difficulty,
			OpportunityScore: kw.OpportunityScore,
			CreatedAt:        now,
		})
	}
	if err := a.store.UpsertKeywords(ctx, kws); err != nil {
		return &results.PersistenceError{Table: "keywords", Err: err}
	}
	return nil
}

// DailyAnalysis runs AnalyzeBrand for every tracked brand. One brand's
// failure is recorded and the loop moves on.
func (a *Analyzer) DailyAnalysis(ctx context.Context) (*DailyReport, error) {
	if a.store == nil {
		return nil, eris.New("analysis: no store configured")
	}
	brands, err := a.store.ListTrackedBrands(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: list tracked brands")
	}

	log := zap.L().With(zap.Int("brands", len(brands)))
	log.Info("analysis: daily run started")
	start := time.Now()

	report := &DailyReport{Results: make([]BrandStatus, 0, len(brands))}
	for _, b := range brands {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "analysis: daily run")
		}
		if _, err := a.AnalyzeBrand(ctx, b.ID); err != nil {
			log.Warn("analysis: brand failed", zap.String("brand_id", b.ID), zap.Error(err))
			report.Results = append(report.Results, BrandStatus{BrandID: b.ID, Status: "error", Message: err.Error()})
			continue
		}
		report.Succeeded++
		report.Results = append(report.Results, BrandStatus{BrandID: b.ID, Status: "success"})
	}

	log.Info("analysis: daily run complete",
		zap.Int("succeeded", report.Succeeded),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}
