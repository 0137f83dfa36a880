package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/brand-scope/internal/db"
	"github.com/sells-group/brand-scope/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	if minConns > maxConns {
		minConns = maxConns
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS brands (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	industry   TEXT NOT NULL DEFAULT '',
	website    TEXT,
	logo_url   TEXT,
	user_id    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ai_rankings (
	id          TEXT PRIMARY KEY,
	entity_id   TEXT NOT NULL,
	entity_name TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	llm_name    TEXT NOT NULL,
	query       TEXT NOT NULL,
	rank        INTEGER,
	score       DOUBLE PRECISION NOT NULL DEFAULT 0,
	reasoning   TEXT NOT NULL DEFAULT '',
	mode        TEXT NOT NULL,
	mode_id     TEXT NOT NULL,
	position    INTEGER NOT NULL DEFAULT 0,
	analyzed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS social_insights (
	id              TEXT PRIMARY KEY,
	entity_id       TEXT NOT NULL,
	entity_name     TEXT NOT NULL,
	entity_type     TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	search_id       TEXT NOT NULL,
	platform        TEXT NOT NULL,
	keyword         TEXT NOT NULL,
	mention_count   INTEGER NOT NULL DEFAULT 0,
	sentiment       TEXT NOT NULL,
	position        INTEGER NOT NULL DEFAULT 0,
	data_fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS competitor_comparisons (
	id            TEXT PRIMARY KEY,
	mode_id       TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	competitor    TEXT NOT NULL,
	competitor_id TEXT NOT NULL,
	ranking_diff  INTEGER NOT NULL,
	analysis      TEXT NOT NULL DEFAULT '',
	position      INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS trend_charts (
	id           TEXT PRIMARY KEY,
	mode_id      TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	keyword      TEXT NOT NULL,
	trend_points JSONB NOT NULL,
	synthetic    BOOLEAN NOT NULL DEFAULT false,
	position     INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS brand_metrics (
	id                  TEXT PRIMARY KEY,
	brand_id            TEXT NOT NULL,
	visibility_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
	positive_sentiment  DOUBLE PRECISION NOT NULL DEFAULT 0,
	negative_sentiment  DOUBLE PRECISION NOT NULL DEFAULT 0,
	neutral_sentiment   DOUBLE PRECISION NOT NULL DEFAULT 0,
	consumer_perception TEXT NOT NULL DEFAULT '',
	strengths           JSONB NOT NULL DEFAULT '[]',
	weaknesses          JSONB NOT NULL DEFAULT '[]',
	opportunities       JSONB NOT NULL DEFAULT '[]',
	analyzed_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS competitors (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	brand_id     TEXT NOT NULL,
	name         TEXT NOT NULL,
	website      TEXT,
	industry     TEXT NOT NULL DEFAULT '',
	ranking_diff INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS keywords (
	id                TEXT PRIMARY KEY,
	entity_id         TEXT NOT NULL,
	entity_name       TEXT NOT NULL,
	entity_type       TEXT NOT NULL,
	user_id           TEXT NOT NULL,
	keyword           TEXT NOT NULL,
	search_volume     INTEGER NOT NULL DEFAULT 0,
	difficulty        DOUBLE PRECISION NOT NULL DEFAULT 0,
	opportunity_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (entity_id, user_id, keyword)
);

CREATE INDEX IF NOT EXISTS idx_brands_user_id ON brands(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_ai_rankings_mode_id ON ai_rankings(mode_id);
CREATE INDEX IF NOT EXISTS idx_ai_rankings_user_id ON ai_rankings(user_id, analyzed_at);
CREATE INDEX IF NOT EXISTS idx_social_insights_search_id ON social_insights(search_id);
CREATE INDEX IF NOT EXISTS idx_competitor_comparisons_mode_id ON competitor_comparisons(mode_id);
CREATE INDEX IF NOT EXISTS idx_trend_charts_mode_id ON trend_charts(mode_id);
CREATE INDEX IF NOT EXISTS idx_brand_metrics_brand_id ON brand_metrics(brand_id, analyzed_at DESC);
CREATE INDEX IF NOT EXISTS idx_competitors_brand_id ON competitors(brand_id, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

var brandColumns = []string{"id", "name", "industry", "website", "logo_url", "user_id", "created_at"}

func (s *PostgresStore) CreateBrands(ctx context.Context, brands []model.Brand) error {
	now := time.Now().UTC()
	rows := make([][]any, len(brands))
	for i := range brands {
		fillBrand(&brands[i], now)
		b := brands[i]
		rows[i] = []any{b.ID, b.Name, b.Industry, nullIfEmpty(b.Website), nullIfEmpty(b.LogoURL), b.UserID, b.CreatedAt}
	}
	_, err := db.CopyFrom(ctx, s.pool, "brands", brandColumns, rows)
	return eris.Wrap(err, "postgres: insert brands")
}

const selectBrand = `SELECT id, name, industry, website, logo_url, user_id, created_at FROM brands`

func (s *PostgresStore) GetBrand(ctx context.Context, id string) (*model.Brand, error) {
	b, err := scanPgBrand(s.pool.QueryRow(ctx, selectBrand+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get brand %s", id)
	}
	return b, nil
}

func (s *PostgresStore) GetPrimaryBrand(ctx context.Context, userID string) (*model.Brand, error) {
	b, err := scanPgBrand(s.pool.QueryRow(ctx,
		selectBrand+` WHERE user_id = $1 AND website IS NOT NULL AND logo_url IS NOT NULL ORDER BY created_at DESC LIMIT 1`,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get primary brand for %s", userID)
	}
	return b, nil
}

func (s *PostgresStore) ListTrackedBrands(ctx context.Context) ([]model.Brand, error) {
	rows, err := s.pool.Query(ctx,
		selectBrand+` WHERE website IS NOT NULL AND logo_url IS NOT NULL ORDER BY created_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tracked brands")
	}
	defer rows.Close()

	out := []model.Brand{}
	for rows.Next() {
		b, err := scanPgBrand(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan brand")
		}
		// Rows written outside the app may carry empty strings.
		if !b.Tracked() {
			continue
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate brands")
}

func scanPgBrand(row pgx.Row) (*model.Brand, error) {
	var b model.Brand
	var website, logo *string
	if err := row.Scan(&b.ID, &b.Name, &b.Industry, &website, &logo, &b.UserID, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Website = deref(website)
	b.LogoURL = deref(logo)
	return &b, nil
}

var rankingColumns = []string{
	"id", "entity_id", "entity_name", "entity_type", "user_id", "llm_name", "query",
	"rank", "score", "reasoning", "mode", "mode_id", "position", "analyzed_at",
}

func (s *PostgresStore) InsertRankings(ctx context.Context, rankings []model.AIRanking) error {
	rows := make([][]any, len(rankings))
	for i, r := range rankings {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		rows[i] = []any{
			r.ID, r.EntityID, r.EntityName, string(r.EntityType), r.UserID, r.LLMName, r.Query,
			r.Rank, r.Score, r.Reasoning, string(r.Mode), r.ModeID, i, r.AnalyzedAt,
		}
	}
	_, err := db.CopyFrom(ctx, s.pool, "ai_rankings", rankingColumns, rows)
	return eris.Wrap(err, "postgres: insert rankings")
}

var insightColumns = []string{
	"id", "entity_id", "entity_name", "entity_type", "user_id", "search_id", "platform",
	"keyword", "mention_count", "sentiment", "position", "data_fetched_at",
}

func (s *PostgresStore) InsertInsights(ctx context.Context, insights []model.SocialInsight) error {
	rows := make([][]any, len(insights))
	for i, in := range insights {
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		rows[i] = []any{
			in.ID, in.EntityID, in.EntityName, string(in.EntityType), in.UserID, in.SearchID, in.Platform,
			in.Keyword, in.MentionCount, string(in.Sentiment), i, in.DataFetchedAt,
		}
	}
	_, err := db.CopyFrom(ctx, s.pool, "social_insights", insightColumns, rows)
	return eris.Wrap(err, "postgres: insert social insights")
}

var comparisonColumns = []string{
	"id", "mode_id", "user_id", "competitor", "competitor_id", "ranking_diff", "analysis", "position", "created_at",
}

func (s *PostgresStore) InsertComparisons(ctx context.Context, run RunRef, comps []model.CompetitorComparison) error {
	now := time.Now().UTC()
	rows := make([][]any, len(comps))
	for i, c := range comps {
		rows[i] = []any{uuid.NewString(), run.ModeID, run.UserID, c.Competitor, c.CompetitorID, c.RankingDiff, c.Analysis, i, now}
	}
	_, err := db.CopyFrom(ctx, s.pool, "competitor_comparisons", comparisonColumns, rows)
	return eris.Wrap(err, "postgres: insert comparisons")
}

var chartColumns = []string{"id", "mode_id", "user_id", "keyword", "trend_points", "synthetic", "position", "created_at"}

func (s *PostgresStore) InsertCharts(ctx context.Context, run RunRef, charts []model.ChartData) error {
	now := time.Now().UTC()
	rows := make([][]any, len(charts))
	for i, c := range charts {
		points, err := json.Marshal(nonNilPoints(c.TrendPoints))
		if err != nil {
			return eris.Wrap(err, "postgres: marshal trend points")
		}
		rows[i] = []any{uuid.NewString(), run.ModeID, run.UserID, c.Keyword, points, c.Synthetic, i, now}
	}
	_, err := db.CopyFrom(ctx, s.pool, "trend_charts", chartColumns, rows)
	return eris.Wrap(err, "postgres: insert charts")
}

const selectRanking = `SELECT id, entity_id, entity_name, entity_type, user_id, llm_name, query, rank, score, reasoning, mode, mode_id, analyzed_at FROM ai_rankings`

func (s *PostgresStore) ListRankings(ctx context.Context, f RankingFilter) ([]model.AIRanking, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case f.ModeID != "":
		rows, err = s.pool.Query(ctx, selectRanking+` WHERE mode_id = $1 ORDER BY analyzed_at, position`, f.ModeID)
	case f.UserID != "":
		rows, err = s.pool.Query(ctx, selectRanking+` WHERE user_id = $1 ORDER BY analyzed_at, position`, f.UserID)
	default:
		return nil, eris.New("postgres: list rankings: mode_id or user_id is required")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list rankings")
	}
	defer rows.Close()

	out := []model.AIRanking{}
	for rows.Next() {
		var r model.AIRanking
		var entityType, mode string
		if err := rows.Scan(
			&r.ID, &r.EntityID, &r.EntityName, &entityType, &r.UserID, &r.LLMName, &r.Query,
			&r.Rank, &r.Score, &r.Reasoning, &mode, &r.ModeID, &r.AnalyzedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan ranking")
		}
		r.EntityType = model.EntityType(entityType)
		r.Mode = model.AnalysisMode(mode)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate rankings")
}

func (s *PostgresStore) ListInsights(ctx context.Context, searchID string) ([]model.SocialInsight, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, entity_id, entity_name, entity_type, user_id, search_id, platform, keyword, mention_count, sentiment, data_fetched_at
		 FROM social_insights WHERE search_id = $1 ORDER BY data_fetched_at, position`,
		searchID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list social insights")
	}
	defer rows.Close()

	out := []model.SocialInsight{}
	for rows.Next() {
		var in model.SocialInsight
		var entityType, sentiment string
		if err := rows.Scan(
			&in.ID, &in.EntityID, &in.EntityName, &entityType, &in.UserID, &in.SearchID, &in.Platform,
			&in.Keyword, &in.MentionCount, &sentiment, &in.DataFetchedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan social insight")
		}
		in.EntityType = model.EntityType(entityType)
		in.Sentiment = model.Sentiment(sentiment)
		out = append(out, in)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate social insights")
}

func (s *PostgresStore) ListComparisons(ctx context.Context, modeID string) ([]model.CompetitorComparison, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT competitor, competitor_id, ranking_diff, analysis FROM competitor_comparisons WHERE mode_id = $1 ORDER BY position`,
		modeID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list comparisons")
	}
	defer rows.Close()

	out := []model.CompetitorComparison{}
	for rows.Next() {
		var c model.CompetitorComparison
		if err := rows.Scan(&c.Competitor, &c.CompetitorID, &c.RankingDiff, &c.Analysis); err != nil {
			return nil, eris.Wrap(err, "postgres: scan comparison")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate comparisons")
}

func (s *PostgresStore) ListCharts(ctx context.Context, modeID string) ([]model.ChartData, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT keyword, trend_points, synthetic FROM trend_charts WHERE mode_id = $1 ORDER BY position`,
		modeID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list charts")
	}
	defer rows.Close()

	out := []model.ChartData{}
	for rows.Next() {
		var c model.ChartData
		var points []byte
		if err := rows.Scan(&c.Keyword, &points, &c.Synthetic); err != nil {
			return nil, eris.Wrap(err, "postgres: scan chart")
		}
		if err := json.Unmarshal(points, &c.TrendPoints); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal trend points")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate charts")
}

func (s *PostgresStore) InsertBrandMetrics(ctx context.Context, m model.BrandMetrics) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.AnalyzedAt.IsZero() {
		m.AnalyzedAt = time.Now().UTC()
	}
	lists, err := marshalLists(m.Strengths, m.Weaknesses, m.Opportunities)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal metrics lists")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO brand_metrics (id, brand_id, visibility_score, positive_sentiment, negative_sentiment, neutral_sentiment,
		 consumer_perception, strengths, weaknesses, opportunities, analyzed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.BrandID, m.VisibilityScore, m.PositiveSentiment, m.NegativeSentiment, m.NeutralSentiment,
		m.ConsumerPerception, lists[0], lists[1], lists[2], m.AnalyzedAt,
	)
	return eris.Wrapf(err, "postgres: insert brand metrics for %s", m.BrandID)
}

func (s *PostgresStore) LatestBrandMetrics(ctx context.Context, brandID string) (*model.BrandMetrics, error) {
	var m model.BrandMetrics
	var strengths, weaknesses, opportunities []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, brand_id, visibility_score, positive_sentiment, negative_sentiment, neutral_sentiment,
		 consumer_perception, strengths, weaknesses, opportunities, analyzed_at
		 FROM brand_metrics WHERE brand_id = $1 ORDER BY analyzed_at DESC LIMIT 1`,
		brandID,
	).Scan(
		&m.ID, &m.BrandID, &m.VisibilityScore, &m.PositiveSentiment, &m.NegativeSentiment, &m.NeutralSentiment,
		&m.ConsumerPerception, &strengths, &weaknesses, &opportunities, &m.AnalyzedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest brand metrics for %s", brandID)
	}
	if err := unmarshalLists([][]byte{strengths, weaknesses, opportunities}, &m.Strengths, &m.Weaknesses, &m.Opportunities); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal metrics lists")
	}
	return &m, nil
}

var competitorColumns = []string{"id", "user_id", "brand_id", "name", "website", "industry", "ranking_diff", "created_at"}

func (s *PostgresStore) InsertCompetitors(ctx context.Context, comps []model.Competitor) error {
	now := time.Now().UTC()
	rows := make([][]any, len(comps))
	for i, c := range comps {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		rows[i] = []any{c.ID, c.UserID, c.BrandID, c.Name, nullIfEmpty(c.Website), c.Industry, c.RankingDiff, c.CreatedAt}
	}
	_, err := db.CopyFrom(ctx, s.pool, "competitors", competitorColumns, rows)
	return eris.Wrap(err, "postgres: insert competitors")
}

func (s *PostgresStore) ListCompetitors(ctx context.Context, brandID string) ([]model.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, brand_id, name, website, industry, ranking_diff, created_at
		 FROM competitors WHERE brand_id = $1 ORDER BY created_at DESC`,
		brandID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list competitors")
	}
	defer rows.Close()

	out := []model.Competitor{}
	for rows.Next() {
		var c model.Competitor
		var website *string
		if err := rows.Scan(&c.ID, &c.UserID, &c.BrandID, &c.Name, &website, &c.Industry, &c.RankingDiff, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan competitor")
		}
		c.Website = deref(website)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate competitors")
}

var keywordUpsert = db.UpsertConfig{
	Table: "keywords",
	Columns: []string{
		"id", "entity_id", "entity_name", "entity_type", "user_id", "keyword",
		"search_volume", "difficulty", "opportunity_score", "created_at",
	},
	ConflictKeys: []string{"entity_id", "user_id", "keyword"},
	UpdateCols:   []string{"entity_name", "search_volume", "difficulty", "opportunity_score", "created_at"},
}

func (s *PostgresStore) UpsertKeywords(ctx context.Context, keywords []model.Keyword) error {
	now := time.Now().UTC()
	keywords = dedupeKeywords(keywords)
	rows := make([][]any, len(keywords))
	for i, k := range keywords {
		if k.ID == "" {
			k.ID = uuid.NewString()
		}
		if k.CreatedAt.IsZero() {
			k.CreatedAt = now
		}
		rows[i] = []any{
			k.ID, k.EntityID, k.EntityName, string(k.EntityType), k.UserID, k.Keyword,
			k.SearchVolume, k.Difficulty, k.OpportunityScore, k.CreatedAt,
		}
	}
	_, err := db.BulkUpsert(ctx, s.pool, keywordUpsert, rows)
	return eris.Wrap(err, "postgres: upsert keywords")
}

func (s *PostgresStore) ListKeywords(ctx context.Context, entityID, userID string) ([]model.Keyword, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, entity_id, entity_name, entity_type, user_id, keyword, search_volume, difficulty, opportunity_score, created_at
		 FROM keywords WHERE entity_id = $1 AND user_id = $2 AND entity_type = $3 ORDER BY created_at DESC, keyword`,
		entityID, userID, string(model.EntityBrand),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list keywords")
	}
	defer rows.Close()

	out := []model.Keyword{}
	for rows.Next() {
		var k model.Keyword
		var entityType string
		if err := rows.Scan(
			&k.ID, &k.EntityID, &k.EntityName, &entityType, &k.UserID, &k.Keyword,
			&k.SearchVolume, &k.Difficulty, &k.OpportunityScore, &k.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan keyword")
		}
		k.EntityType = model.EntityType(entityType)
		out = append(out, k)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate keywords")
}

var _ Store = (*PostgresStore)(nil)
