package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-scope/internal/config"
	"github.com/sells-group/brand-scope/internal/cost"
	"github.com/sells-group/brand-scope/internal/generate"
	"github.com/sells-group/brand-scope/internal/metrics"
	"github.com/sells-group/brand-scope/internal/model"
	"github.com/sells-group/brand-scope/internal/search"
)

const threeBrands = `{"brands":[
	{"name":"Apple","rank":1,"score":95,"reasoning":"ecosystem"},
	{"name":"Samsung","rank":2.2,"score":88,"reasoning":"range"},
	{"name":"Nokia","rank":null,"score":20,"reasoning":"niche"}]}`

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		req    Request
		fields []string
	}{
		{"ok", Request{Mode: model.ModeDeepFocus, UserID: testUser, Query: "phones"}, nil},
		{"bad_mode", Request{Mode: "Wanderer", UserID: testUser, Query: "q"}, []string{"mode"}},
		{"bad_user", Request{Mode: model.ModeVoyager, UserID: "bob", Query: "q"}, []string{"user_id"}},
		{"blank_query", Request{Mode: model.ModeVoyager, UserID: testUser, Query: "  "}, []string{"query"}},
		{"explorer_no_competitors", Request{Mode: model.ModeExplorer, UserID: testUser, Query: "q"}, []string{"competitors"}},
		{"explorer_blank_competitors", Request{Mode: model.ModeExplorer, UserID: testUser, Query: "q", Competitors: []string{" "}}, []string{"competitors"}},
		{"everything", Request{}, []string{"mode", "user_id", "query"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Len(t, ve.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, ve.Fields, f)
			}
		})
	}
}

func TestRun_ExplorerWithoutCompetitorsMakesNoCalls(t *testing.T) {
	gen := &scriptedGen{respond: func(generate.Request) (string, error) { return "{}", nil }}
	s := &mockSearcher{}
	a := testAnalyzer(gen, s)

	res, err := a.Run(context.Background(), Request{Mode: model.ModeExplorer, UserID: testUser, Query: "Acme"})
	require.Error(t, err)
	assert.Nil(t, res)

	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Explorer mode requires competitors", ve.Fields["competitors"])
	assert.Empty(t, gen.calls)
	s.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestRun_DeepFocusTwoBackendsThreeBrands(t *testing.T) {
	gen := &scriptedGen{respond: func(generate.Request) (string, error) { return threeBrands, nil }}
	m := metrics.New(prometheus.NewRegistry())
	a := testAnalyzer(gen, &mockSearcher{}, WithMetrics(m))

	res, err := a.Run(context.Background(), Request{Mode: model.ModeDeepFocus, UserID: testUser, Query: "best phones"})
	require.NoError(t, err)
	require.Len(t, res.AIRankings, 6)
	assert.Equal(t, model.ModeDeepFocus, res.Mode)
	assert.NotEmpty(t, res.ModeID)
	assert.Equal(t, res.ModeID, res.SearchID, "search id aliases mode id")
	assert.Empty(t, res.SocialInsights)
	assert.Empty(t, res.Comparisons)

	calls := gen.schemaCalls("brand_list")
	require.Len(t, calls, 2)
	assert.Equal(t, "gemma2-9b", calls[0].Backend)
	assert.Equal(t, "llama-3.3-70b", calls[1].Backend)
	assert.Contains(t, calls[0].Prompt, `"best phones"`)

	seen := map[string]bool{}
	for i, r := range res.AIRankings {
		assert.Equal(t, res.ModeID, r.ModeID)
		assert.Equal(t, model.EntityBrand, r.EntityType)
		assert.Equal(t, testUser, r.UserID)
		assert.Equal(t, "best phones", r.Query)
		assert.Equal(t, fixedNow, r.AnalyzedAt)
		assert.False(t, seen[r.EntityID], "entity ids are fresh per ranking")
		seen[r.EntityID] = true
		if i < 3 {
			assert.Equal(t, "Gemma 2 9B", r.LLMName)
		} else {
			assert.Equal(t, "Llama 3.3 70B", r.LLMName)
		}
	}
	assert.Equal(t, 1, *res.AIRankings[0].Rank)
	assert.Equal(t, 2, *res.AIRankings[1].Rank)
	assert.Nil(t, res.AIRankings[2].Rank)
	assert.Equal(t, "Nokia", res.AIRankings[5].EntityName)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("DeepFocus", "success")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.RankingsProduced.WithLabelValues("DeepFocus")))
}

func TestRun_DeepFocusRanksEveryQuery(t *testing.T) {
	gen := &scriptedGen{respond: func(generate.Request) (string, error) { return threeBrands, nil }}
	a := testAnalyzer(gen, &mockSearcher{})

	res, err := a.Run(context.Background(), Request{
		Mode:    model.ModeDeepFocus,
		UserID:  testUser,
		Queries: []string{"best phones", " ", "budget phones"},
	})
	require.NoError(t, err)

	// 2 queries x 2 backends x 3 brands.
	require.Len(t, res.AIRankings, 12)
	calls := gen.schemaCalls("brand_list")
	require.Len(t, calls, 4)
	assert.Contains(t, calls[0].Prompt, `"best phones"`)
	assert.Contains(t, calls[1].Prompt, `"best phones"`)
	assert.Contains(t, calls[2].Prompt, `"budget phones"`)
	assert.Contains(t, calls[3].Prompt, `"budget phones"`)

	perQuery := map[string]int{}
	for _, r := range res.AIRankings {
		perQuery[r.Query]++
	}
	assert.Equal(t, map[string]int{"best phones": 6, "budget phones": 6}, perQuery)
}

func TestRun_DeepFocusAbortsOnBackendFailure(t *testing.T) {
	gen := &scriptedGen{respond: func(req generate.Request) (string, error) {
		if req.Backend == "llama-3.3-70b" {
			return "", errors.New("503 service unavailable")
		}
		return threeBrands, nil
	}}
	m := metrics.New(prometheus.NewRegistry())
	a := testAnalyzer(gen, &mockSearcher{}, WithMetrics(m))

	res, err := a.Run(context.Background(), Request{Mode: model.ModeDeepFocus, UserID: testUser, Query: "q"})
	require.Error(t, err)
	assert.Nil(t, res)

	var ge *generate.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "llama-3.3-70b", ge.Backend)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("DeepFocus", "error")))
}

func TestRun_KeepsCallerIDs(t *testing.T) {
	gen := &scriptedGen{respond: func(generate.Request) (string, error) { return threeBrands, nil }}
	a := testAnalyzer(gen, &mockSearcher{})

	res, err := a.Run(context.Background(), Request{
		Mode: model.ModeDeepFocus, UserID: testUser, Query: "q", ModeID: "mode-1", SearchID: "search-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "mode-1", res.ModeID)
	assert.Equal(t, "search-1", res.SearchID)
	for _, r := range res.AIRankings {
		assert.Equal(t, "mode-1", r.ModeID)
	}
}

func voyagerGen(sentimentErr error) *scriptedGen {
	return &scriptedGen{respond: func(req generate.Request) (string, error) {
		switch req.Schema.Name {
		case "brand_list":
			return `{"brands":[{"name":"Hoka","rank":1,"score":90,"reasoning":"r"},{"name":"Brooks","rank":null,"score":70,"reasoning":"r"}]}`, nil
		case "sentiment":
			if sentimentErr != nil {
				return "", sentimentErr
			}
			return `{"sentiment":"positive"}`, nil
		}
		return "", errors.New("unexpected schema " + req.Schema.Name)
	}}
}

func TestRun_Voyager(t *testing.T) {
	gen := voyagerGen(nil)
	s := &mockSearcher{}
	s.On("Search", mock.Anything, mock.MatchedBy(func(q search.Query) bool {
		return q.NumResults == 5 && q.IncludeText && len(q.Domains) == 1 && q.Domains[0] == "x.com"
	})).Return(docs("a", "b", "c"), nil)
	a := testAnalyzer(gen, s)

	res, err := a.Run(context.Background(), Request{Mode: model.ModeVoyager, UserID: testUser, Query: "trail shoes"})
	require.NoError(t, err)

	// 5 backends x 2 brands.
	require.Len(t, res.AIRankings, 10)
	require.Len(t, res.SocialInsights, 10)
	require.Len(t, res.Charts, 10)
	s.AssertNumberOfCalls(t, "Search", 10)
	s.AssertCalled(t, "Search", mock.Anything, mock.MatchedBy(func(q search.Query) bool { return q.Text == "Hoka trail shoes" }))

	names := map[string]bool{}
	for _, r := range res.AIRankings {
		names[r.LLMName] = true
	}
	assert.Len(t, names, 5)
	assert.True(t, names["DeepSeek R-1"])

	for i, in := range res.SocialInsights {
		r := res.AIRankings[i]
		assert.Equal(t, r.EntityID, in.EntityID)
		assert.Equal(t, r.EntityName, in.EntityName)
		assert.Equal(t, res.ModeID, in.SearchID)
		assert.Equal(t, "X", in.Platform)
		assert.Equal(t, "trail shoes", in.Keyword)
		assert.Equal(t, 3, in.MentionCount)
		assert.Equal(t, model.SentimentPositive, in.Sentiment)
	}

	chart := res.Charts[0]
	assert.Equal(t, "Hoka", chart.Keyword)
	assert.True(t, chart.Synthetic)
	require.Len(t, chart.TrendPoints, 3)
	assert.Equal(t, "2026-03-08", chart.TrendPoints[0].Date)
	assert.Equal(t, "2026-03-10", chart.TrendPoints[2].Date)
	for _, p := range chart.TrendPoints {
		assert.GreaterOrEqual(t, p.Value, 30)
		assert.Less(t, p.Value, 100)
	}

	sentiment := gen.schemaCalls("sentiment")
	require.Len(t, sentiment, 10)
	assert.Equal(t, "llama3-70b", sentiment[0].Backend)
	require.NotNil(t, sentiment[0].Temperature)
	assert.InDelta(t, 0.1, *sentiment[0].Temperature, 1e-9)
	assert.Contains(t, sentiment[0].Prompt, "a\nb\nc")
}

func TestRun_VoyagerRanksEveryQuery(t *testing.T) {
	gen := voyagerGen(nil)
	s := &mockSearcher{}
	s.On("Search", mock.Anything, mock.Anything).Return(docs("a"), nil)
	a := testAnalyzer(gen, s)

	res, err := a.Run(context.Background(), Request{
		Mode:    model.ModeVoyager,
		UserID:  testUser,
		Queries: []string{"trail shoes", "road shoes"},
	})
	require.NoError(t, err)

	// 2 queries x 5 backends x 2 brands.
	require.Len(t, res.AIRankings, 20)
	require.Len(t, res.SocialInsights, 20)
	require.Len(t, res.Charts, 20)
	require.Len(t, gen.schemaCalls("brand_list"), 10)
	s.AssertCalled(t, "Search", mock.Anything, mock.MatchedBy(func(q search.Query) bool { return q.Text == "Brooks road shoes" }))

	for i, in := range res.SocialInsights {
		assert.Equal(t, res.AIRankings[i].EntityID, in.EntityID)
		assert.Equal(t, res.AIRankings[i].Query, in.Keyword)
	}
	assert.Equal(t, "trail shoes", res.AIRankings[0].Query)
	assert.Equal(t, "road shoes", res.AIRankings[19].Query)
}

func TestRun_VoyagerSentimentFailureDegradesToNeutral(t *testing.T) {
	gen := voyagerGen(errors.New("model overloaded"))
	s := &mockSearcher{}
	s.On("Search", mock.Anything, mock.Anything).Return(docs("meh"), nil)
	m := metrics.New(prometheus.NewRegistry())
	a := testAnalyzer(gen, s, WithMetrics(m))

	res, err := a.Run(context.Background(), Request{Mode: model.ModeVoyager, UserID: testUser, Query: "q"})
	require.NoError(t, err)
	require.Len(t, res.SocialInsights, 10)
	for _, in := range res.SocialInsights {
		assert.Equal(t, model.SentimentNeutral, in.Sentiment)
		assert.Equal(t, 1, in.MentionCount)
	}
	assert.Equal(t, 10.0, testutil.ToFloat64(m.DegradedInsights.WithLabelValues("sentiment")))
}

func TestRun_VoyagerSearchFailureSkipsSentiment(t *testing.T) {
	gen := voyagerGen(nil)
	s := &mockSearcher{}
	s.On("Search", mock.Anything, mock.Anything).Return(nil, &search.SearchError{Query: "q", Err: errors.New("timeout")})
	m := metrics.New(prometheus.NewRegistry())
	a := testAnalyzer(gen, s, WithMetrics(m))

	res, err := a.Run(context.Background(), Request{Mode: model.ModeVoyager, UserID: testUser, Query: "q"})
	require.NoError(t, err)
	require.Len(t, res.SocialInsights, 10)
	for i, in := range res.SocialInsights {
		assert.Equal(t, model.SentimentNeutral, in.Sentiment)
		assert.Zero(t, in.MentionCount)
		assert.Empty(t, res.Charts[i].TrendPoints)
	}
	assert.Empty(t, gen.schemaCalls("sentiment"))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.DegradedInsights.WithLabelValues("search")))
}

func TestRun_VoyagerRankingFailureAborts(t *testing.T) {
	gen := &scriptedGen{respond: func(generate.Request) (string, error) { return "not json", nil }}
	s := &mockSearcher{}
	a := testAnalyzer(gen, s)

	res, err := a.Run(context.Background(), Request{Mode: model.ModeVoyager, UserID: testUser, Query: "q"})
	require.Error(t, err)
	assert.Nil(t, res)
	s.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func explorerGen(failOn string) *scriptedGen {
	long := strings.Repeat("Acme should lean on distribution. ", 10)
	return &scriptedGen{respond: func(req generate.Request) (string, error) {
		switch req.Schema.Name {
		case "brand_verdict":
			return `{"rank":2,"score":81,"reasoning":"solid regional brand"}`, nil
		case "comparison":
			if failOn != "" && strings.Contains(req.Prompt, failOn) {
				return "", errors.New("boom")
			}
			if strings.Contains(req.Prompt, `"Widgets Inc"`) {
				return `{"brand_rank":2,"competitor_rank":5,"score":70,"analysis":"` + long + `"}`, nil
			}
			return `{"brand_rank":3,"competitor_rank":null,"score":40,"analysis":"Gizmo is unknown here."}`, nil
		}
		return "", errors.New("unexpected schema")
	}}
}

func TestRun_ExplorerAcme(t *testing.T) {
	gen := explorerGen("")
	a := testAnalyzer(gen, &mockSearcher{})

	res, err := a.Run(context.Background(), Request{
		Mode: model.ModeExplorer, UserID: testUser, Query: "anvils", Brand: "Acme",
		Competitors: []string{"Widgets Inc", "Gizmo Co"},
	})
	require.NoError(t, err)
	require.Len(t, res.AIRankings, 3)
	require.Len(t, res.Comparisons, 2)

	brand := res.AIRankings[0]
	assert.Equal(t, "Acme", brand.EntityName)
	assert.Equal(t, model.EntityBrand, brand.EntityType)
	assert.Equal(t, 2, *brand.Rank)
	assert.Equal(t, "DeepSeek R-1", brand.LLMName)

	widgets := res.AIRankings[1]
	assert.Equal(t, model.EntityCompetitor, widgets.EntityType)
	assert.Equal(t, 5, *widgets.Rank)
	assert.True(t, strings.HasPrefix(widgets.Reasoning, "Competitor analysis vs Acme: Acme should"))
	assert.True(t, strings.HasSuffix(widgets.Reasoning, "..."))
	assert.Len(t, widgets.Reasoning, len("Competitor analysis vs Acme: ")+100+3)

	gizmo := res.AIRankings[2]
	assert.Nil(t, gizmo.Rank)
	assert.Equal(t, "Competitor analysis vs Acme: Gizmo is unknown here....", gizmo.Reasoning)

	assert.Equal(t, -3, res.Comparisons[0].RankingDiff)
	assert.Equal(t, 2, res.Comparisons[1].RankingDiff)
	assert.Equal(t, widgets.EntityID, res.Comparisons[0].CompetitorID)
	assert.Equal(t, "Gizmo Co", res.Comparisons[1].Competitor)

	verdicts := gen.schemaCalls("brand_verdict")
	require.Len(t, verdicts, 1)
	assert.Equal(t, "deepseek-r1", verdicts[0].Backend)
	assert.Contains(t, verdicts[0].Prompt, `"Acme"`)
}

func TestRun_ExplorerQueriesAndBrandDefault(t *testing.T) {
	gen := explorerGen("")
	a := testAnalyzer(gen, &mockSearcher{})

	res, err := a.Run(context.Background(), Request{
		Mode: model.ModeExplorer, UserID: testUser, Query: "Acme",
		Queries:     []string{"anvils", "rockets"},
		Competitors: []string{"Widgets Inc", "Gizmo Co", "Bolt"},
	})
	require.NoError(t, err)
	// Q * (1 + C) rankings and Q * C comparisons.
	assert.Len(t, res.AIRankings, 2*(1+3))
	assert.Len(t, res.Comparisons, 2*3)
	assert.Equal(t, "Acme", res.AIRankings[0].EntityName)
	assert.Equal(t, "rockets", res.AIRankings[4].Query)
}

func TestRun_ExplorerComparisonFailureAborts(t *testing.T) {
	a := testAnalyzer(explorerGen("Gizmo Co"), &mockSearcher{})

	res, err := a.Run(context.Background(), Request{
		Mode: model.ModeExplorer, UserID: testUser, Query: "q", Brand: "Acme",
		Competitors: []string{"Widgets Inc", "Gizmo Co"},
	})
	require.Error(t, err)
	assert.Nil(t, res)
	var ge *generate.GenerationError
	assert.ErrorAs(t, err, &ge)
}

func TestRun_AttachesLedger(t *testing.T) {
	var sawLedger bool
	gen := &scriptedGen{}
	gen.respond = func(generate.Request) (string, error) { return threeBrands, nil }
	a := testAnalyzer(&ledgerSpy{scriptedGen: gen, saw: &sawLedger}, &mockSearcher{},
		WithCostCalculator(cost.NewCalculator(cost.DefaultRates())))

	_, err := a.Run(context.Background(), Request{Mode: model.ModeDeepFocus, UserID: testUser, Query: "q"})
	require.NoError(t, err)
	assert.True(t, sawLedger)
}

type ledgerSpy struct {
	*scriptedGen
	saw *bool
}

func (p *ledgerSpy) Complete(ctx context.Context, req generate.Request) (string, error) {
	if cost.LedgerFrom(ctx) != nil {
		*p.saw = true
	}
	return p.scriptedGen.Complete(ctx, req)
}

func TestTrend(t *testing.T) {
	a := testAnalyzer(nil, nil, WithRandom(func(int) int { return 0 }))

	c := a.trend("Hoka", 12)
	require.Len(t, c.TrendPoints, 7)
	assert.Equal(t, "2026-03-04", c.TrendPoints[0].Date)
	assert.Equal(t, "2026-03-10", c.TrendPoints[6].Date)
	assert.Equal(t, 30, c.TrendPoints[0].Value)

	assert.Empty(t, a.trend("Hoka", 0).TrendPoints)
	assert.NotNil(t, a.trend("Hoka", 0).TrendPoints)
}

func TestSettingsFrom(t *testing.T) {
	s := SettingsFrom(config.SearchConfig{SocialDomain: "reddit.com", SocialResults: 8})
	assert.Equal(t, "reddit.com", s.SocialDomain)
	assert.Equal(t, "X", s.SocialPlatform)
	assert.Equal(t, 8, s.SocialResults)
	assert.Equal(t, 2000, s.SentimentMaxChars)
	assert.Equal(t, 7, s.TrendWindowDays)
}

func TestFirstRunes(t *testing.T) {
	assert.Equal(t, "héllo", firstRunes("héllo wörld", 5))
	assert.Equal(t, "short", firstRunes("short", 100))
}
