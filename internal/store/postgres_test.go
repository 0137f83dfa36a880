package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-scope/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS brands`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateBrands_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"brands"}, brandColumns).WillReturnResult(2)

	brands := []model.Brand{{Name: "Apple", UserID: "u1"}, {Name: "Dell", UserID: "u1"}}
	require.NoError(t, s.CreateBrands(context.Background(), brands))
	assert.NotEmpty(t, brands[0].ID)
	assert.NotEmpty(t, brands[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertRankings_CopyError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"ai_rankings"}, rankingColumns).WillReturnError(errors.New("connection reset"))

	err := s.InsertRankings(context.Background(), []model.AIRanking{{EntityID: "e1", ModeID: "m1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert rankings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertRunRecords(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ctx := context.Background()
	run := RunRef{ModeID: "m1", UserID: "u1"}

	mock.ExpectCopyFrom(pgx.Identifier{"social_insights"}, insightColumns).WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"competitor_comparisons"}, comparisonColumns).WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"trend_charts"}, chartColumns).WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"competitors"}, competitorColumns).WillReturnResult(1)

	require.NoError(t, s.InsertInsights(ctx, []model.SocialInsight{{EntityID: "e1", SearchID: "m1"}}))
	require.NoError(t, s.InsertComparisons(ctx, run, []model.CompetitorComparison{{Competitor: "Globex", RankingDiff: -3}}))
	require.NoError(t, s.InsertCharts(ctx, run, []model.ChartData{{Keyword: "Apple", Synthetic: true}}))
	require.NoError(t, s.InsertCompetitors(ctx, []model.Competitor{{Name: "Puma", BrandID: "b1"}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetBrand_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, industry, website, logo_url, user_id, created_at FROM brands WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	b, err := s.GetBrand(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPrimaryBrand(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	website, logo := "https://acme.com", "https://acme.com/logo.png"
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`FROM brands WHERE user_id = \$1 AND website IS NOT NULL AND logo_url IS NOT NULL ORDER BY created_at DESC LIMIT 1`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "industry", "website", "logo_url", "user_id", "created_at"}).
			AddRow("b1", "Acme", "Widgets", &website, &logo, "u1", created))

	b, err := s.GetPrimaryBrand(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "Acme", b.Name)
	assert.Equal(t, website, b.Website)
	assert.Equal(t, created, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListTrackedBrands(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	website, logo, blank := "https://acme.com", "https://acme.com/logo.png", ""
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`FROM brands WHERE website IS NOT NULL AND logo_url IS NOT NULL ORDER BY created_at`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "industry", "website", "logo_url", "user_id", "created_at"}).
			AddRow("b1", "Acme", "Widgets", &website, &logo, "u1", created).
			AddRow("b2", "Blank", "Widgets", &blank, &logo, "u1", created))

	brands, err := s.ListTrackedBrands(context.Background())
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "b1", brands[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRankings_ByMode(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rank := 2
	mock.ExpectQuery(`FROM ai_rankings WHERE mode_id = \$1 ORDER BY analyzed_at, position`).
		WithArgs("m1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "entity_id", "entity_name", "entity_type", "user_id", "llm_name", "query",
			"rank", "score", "reasoning", "mode", "mode_id", "analyzed_at",
		}).AddRow("r1", "e1", "Apple", "brand", "u1", "Gemma 2 9B", "best laptops",
			&rank, 88.0, "solid", "DeepFocus", "m1", at))

	got, err := s.ListRankings(context.Background(), RankingFilter{ModeID: "m1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, *got[0].Rank)
	assert.Equal(t, model.ModeDeepFocus, got[0].Mode)
	assert.Equal(t, model.EntityBrand, got[0].EntityType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRankings_NoFilter(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	_, err := s.ListRankings(context.Background(), RankingFilter{})
	assert.Error(t, err)
}

func TestPostgresStore_ListCharts(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT keyword, trend_points, synthetic FROM trend_charts WHERE mode_id = \$1`).
		WithArgs("m1").
		WillReturnRows(pgxmock.NewRows([]string{"keyword", "trend_points", "synthetic"}).
			AddRow("Apple", []byte(`[{"date":"2026-02-28","value":42}]`), true))

	got, err := s.ListCharts(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []model.TrendPoint{{Date: "2026-02-28", Value: 42}}, got[0].TrendPoints)
	assert.True(t, got[0].Synthetic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertBrandMetrics(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO brand_metrics`).
		WithArgs(pgxmock.AnyArg(), "b1", 72.0, 60.0, 10.0, 30.0, "Trusted",
			[]byte(`["design"]`), []byte(`[]`), []byte(`[]`), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.InsertBrandMetrics(context.Background(), model.BrandMetrics{
		BrandID: "b1", VisibilityScore: 72, PositiveSentiment: 60, NegativeSentiment: 10, NeutralSentiment: 30,
		ConsumerPerception: "Trusted", Strengths: []string{"design"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestBrandMetrics_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM brand_metrics WHERE brand_id = \$1 ORDER BY analyzed_at DESC LIMIT 1`).
		WithArgs("b9").
		WillReturnError(pgx.ErrNoRows)

	m, err := s.LatestBrandMetrics(context.Background(), "b9")
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertKeywords(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_keywords"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_keywords"}, keywordUpsert.Columns).WillReturnResult(1)
	mock.ExpectExec(`ON CONFLICT \("entity_id", "user_id", "keyword"\) DO UPDATE`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.UpsertKeywords(context.Background(), []model.Keyword{
		{EntityID: "b1", UserID: "u1", Keyword: "running shoes", Difficulty: 10},
		{EntityID: "b1", UserID: "u1", Keyword: "running shoes", Difficulty: 20},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
