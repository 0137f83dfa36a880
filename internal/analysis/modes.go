package analysis

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/brand-scope/internal/generate"
	"github.com/sells-group/brand-scope/internal/model"
	"github.com/sells-group/brand-scope/internal/prompt"
	"github.com/sells-group/brand-scope/internal/search"
)

const (
	sentimentTemperature = 0.1
	reasoningPrefixChars = 100
	trendFloor           = 30
	trendSpread          = 70
)

func (a *Analyzer) deepFocus(ctx context.Context, req Request) (*model.SearchResults, error) {
	res := newResults(req)
	for _, q := range req.queries() {
		for _, id := range a.roster.DeepFocus {
			rankings, err := a.rankBrands(ctx, id, req, q)
			if err != nil {
				return nil, err
			}
			res.AIRankings = append(res.AIRankings, rankings...)
		}
	}
	return res, nil
}

func (a *Analyzer) voyager(ctx context.Context, req Request, log *zap.Logger) (*model.SearchResults, error) {
	res := newResults(req)
	res.SocialInsights = []model.SocialInsight{}
	res.Charts = []model.ChartData{}

	for _, q := range req.queries() {
		for _, id := range a.roster.Voyager {
			rankings, err := a.rankBrands(ctx, id, req, q)
			if err != nil {
				return nil, err
			}
			for _, r := range rankings {
				insight, chart, err := a.socialSignal(ctx, r, req, log)
				if err != nil {
					return nil, err
				}
				res.SocialInsights = append(res.SocialInsights, insight)
				res.Charts = append(res.Charts, chart)
			}
			res.AIRankings = append(res.AIRankings, rankings...)
		}
	}
	return res, nil
}

func (a *Analyzer) explorer(ctx context.Context, req Request) (*model.SearchResults, error) {
	res := newResults(req)
	res.Comparisons = []model.CompetitorComparison{}

	b := a.backend(a.roster.Explorer)
	brand := req.brand()

	for _, q := range req.queries() {
		verdict, err := generate.Generate(ctx, a.gen, generate.Request{
			Backend: b.ID,
			Prompt:  prompt.ExplorerBrand(brand, q),
		}, generate.BrandVerdictSchema)
		if err != nil {
			return nil, err
		}
		brandRow := a.ranking(req, b, q, model.AIRanking{
			EntityName: brand,
			EntityType: model.EntityBrand,
			Rank:       generate.IntRank(verdict.Rank),
			Score:      verdict.Score,
			Reasoning:  verdict.Reasoning,
		})
		res.AIRankings = append(res.AIRankings, brandRow)

		for _, competitor := range req.competitors() {
			cmp, err := generate.Generate(ctx, a.gen, generate.Request{
				Backend: b.ID,
				Prompt:  prompt.Comparison(brand, competitor, q),
			}, generate.ComparisonSchema)
			if err != nil {
				return nil, err
			}

			row := a.ranking(req, b, q, model.AIRanking{
				EntityName: competitor,
				EntityType: model.EntityCompetitor,
				Rank:       generate.IntRank(cmp.CompetitorRank),
				Score:      cmp.Score,
				Reasoning:  "Competitor analysis vs " + brand + ": " + firstRunes(cmp.Analysis, reasoningPrefixChars) + "...",
			})
			res.AIRankings = append(res.AIRankings, row)
			res.Comparisons = append(res.Comparisons, model.CompetitorComparison{
				Competitor:   competitor,
				CompetitorID: row.EntityID,
				RankingDiff:  brandRow.RankOrZero() - row.RankOrZero(),
				Analysis:     cmp.Analysis,
			})
		}
	}
	return res, nil
}

func newResults(req Request) *model.SearchResults {
	return &model.SearchResults{
		SearchID:   req.SearchID,
		Mode:       req.Mode,
		ModeID:     req.ModeID,
		AIRankings: []model.AIRanking{},
	}
}

// rankBrands asks one backend for a ranked brand list for query q and turns
// every returned brand into a ranking row.
func (a *Analyzer) rankBrands(ctx context.Context, backendID string, req Request, q string) ([]model.AIRanking, error) {
	b := a.backend(backendID)

	list, err := generate.Generate(ctx, a.gen, generate.Request{
		Backend: b.ID,
		Prompt:  prompt.BrandRanking(q),
	}, generate.BrandListSchema)
	if err != nil {
		return nil, err
	}

	out := make([]model.AIRanking, 0, len(list.Brands))
	for _, br := range list.Brands {
		out = append(out, a.ranking(req, b, q, model.AIRanking{
			EntityName: strings.TrimSpace(br.Name),
			EntityType: model.EntityBrand,
			Rank:       generate.IntRank(br.Rank),
			Score:      br.Score,
			Reasoning:  br.Reasoning,
		}))
	}
	return out, nil
}

// ranking fills the run-level fields of r.
func (a *Analyzer) ranking(req Request, b generate.Backend, query string, r model.AIRanking) model.AIRanking {
	r.ID = a.newID()
	r.EntityID = a.newID()
	r.UserID = req.UserID
	r.LLMName = b.Name
	r.Query = query
	r.Mode = req.Mode
	r.ModeID = req.ModeID
	r.AnalyzedAt = a.now().UTC()
	return r
}

// socialSignal searches the social platform for a ranked brand and
// classifies the sentiment of what it finds. Search and sentiment failures
// degrade to a neutral insight; only cancellation is returned.
func (a *Analyzer) socialSignal(ctx context.Context, r model.AIRanking, req Request, log *zap.Logger) (model.SocialInsight, model.ChartData, error) {
	s := a.settings
	insight := model.SocialInsight{
		ID:            a.newID(),
		EntityID:      r.EntityID,
		EntityName:    r.EntityName,
		EntityType:    r.EntityType,
		UserID:        req.UserID,
		SearchID:      req.ModeID,
		Platform:      s.SocialPlatform,
		Keyword:       r.Query,
		Sentiment:     model.SentimentNeutral,
		DataFetchedAt: a.now().UTC(),
	}

	docs, err := a.searcher.Search(ctx, search.Query{
		Text:        r.EntityName + " " + r.Query,
		NumResults:  s.SocialResults,
		Domains:     []string{s.SocialDomain},
		IncludeText: true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return insight, model.ChartData{}, ctx.Err()
		}
		log.Warn("analysis: social search failed, using neutral insight",
			zap.String("entity", r.EntityName), zap.Error(err))
		a.degraded("search")
		return insight, a.trend(r.EntityName, 0), nil
	}

	insight.MentionCount = len(docs)
	insight.Sentiment = a.classify(ctx, docs, r.EntityName, log)
	return insight, a.trend(r.EntityName, len(docs)), nil
}

func (a *Analyzer) classify(ctx context.Context, docs []search.Document, entity string, log *zap.Logger) model.Sentiment {
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		texts = append(texts, d.Text)
	}
	text := strings.Join(texts, "\n")
	if strings.TrimSpace(text) == "" {
		return model.SentimentNeutral
	}

	temp := sentimentTemperature
	v, err := generate.Generate(ctx, a.gen, generate.Request{
		Backend:     a.roster.Sentiment,
		Prompt:      prompt.Sentiment(search.Truncate(text, a.settings.SentimentMaxChars)),
		Temperature: &temp,
	}, generate.SentimentSchema)
	if err != nil {
		log.Warn("analysis: sentiment failed, defaulting to neutral",
			zap.String("entity", entity), zap.Error(err))
		a.degraded("sentiment")
		return model.SentimentNeutral
	}
	return v.Sentiment
}

// trend builds a placeholder series of min(mentions, window) points ending
// today, oldest first. Values are random, not measured.
func (a *Analyzer) trend(keyword string, mentions int) model.ChartData {
	n := min(mentions, a.settings.TrendWindowDays)
	points := make([]model.TrendPoint, n)
	today := a.now().UTC()
	for i := 0; i < n; i++ {
		points[n-1-i] = model.TrendPoint{
			Date:  today.Add(-time.Duration(i) * 24 * time.Hour).Format("2006-01-02"),
			Value: trendFloor + a.intn(trendSpread),
		}
	}
	return model.ChartData{Keyword: keyword, TrendPoints: points, Synthetic: true}
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
