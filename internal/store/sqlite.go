package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/brand-scope/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS brands (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	industry   TEXT NOT NULL DEFAULT '',
	website    TEXT,
	logo_url   TEXT,
	user_id    TEXT NOT NULL,
	created_at DATETIME NOT NULL
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
	score       REAL NOT NULL DEFAULT 0,
	reasoning   TEXT NOT NULL DEFAULT '',
	mode        TEXT NOT NULL,
	mode_id     TEXT NOT NULL,
	position    INTEGER NOT NULL DEFAULT 0,
	analyzed_at DATETIME NOT NULL
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
	data_fetched_at DATETIME NOT NULL
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
	created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trend_charts (
	id           TEXT PRIMARY KEY,
	mode_id      TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	keyword      TEXT NOT NULL,
	trend_points TEXT NOT NULL,
	synthetic    INTEGER NOT NULL DEFAULT 0,
	position     INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS brand_metrics (
	id                  TEXT PRIMARY KEY,
	brand_id            TEXT NOT NULL,
	visibility_score    REAL NOT NULL DEFAULT 0,
	positive_sentiment  REAL NOT NULL DEFAULT 0,
	negative_sentiment  REAL NOT NULL DEFAULT 0,
	neutral_sentiment   REAL NOT NULL DEFAULT 0,
	consumer_perception TEXT NOT NULL DEFAULT '',
	strengths           TEXT NOT NULL DEFAULT '[]',
	weaknesses          TEXT NOT NULL DEFAULT '[]',
	opportunities       TEXT NOT NULL DEFAULT '[]',
	analyzed_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS competitors (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	brand_id     TEXT NOT NULL,
	name         TEXT NOT NULL,
	website      TEXT,
	industry     TEXT NOT NULL DEFAULT '',
	ranking_diff INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS keywords (
	id                TEXT PRIMARY KEY,
	entity_id         TEXT NOT NULL,
	entity_name       TEXT NOT NULL,
	entity_type       TEXT NOT NULL,
	user_id           TEXT NOT NULL,
	keyword           TEXT NOT NULL,
	search_volume     INTEGER NOT NULL DEFAULT 0,
	difficulty        REAL NOT NULL DEFAULT 0,
	opportunity_score REAL NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL,
	UNIQUE (entity_id, user_id, keyword)
);

CREATE INDEX IF NOT EXISTS idx_brands_user_id ON brands(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_ai_rankings_mode_id ON ai_rankings(mode_id);
CREATE INDEX IF NOT EXISTS idx_ai_rankings_user_id ON ai_rankings(user_id, analyzed_at);
CREATE INDEX IF NOT EXISTS idx_social_insights_search_id ON social_insights(search_id);
CREATE INDEX IF NOT EXISTS idx_competitor_comparisons_mode_id ON competitor_comparisons(mode_id);
CREATE INDEX IF NOT EXISTS idx_trend_charts_mode_id ON trend_charts(mode_id);
CREATE INDEX IF NOT EXISTS idx_brand_metrics_brand_id ON brand_metrics(brand_id, analyzed_at);
CREATE INDEX IF NOT EXISTS idx_competitors_brand_id ON competitors(brand_id, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// insertBatch runs one prepared INSERT per row inside a transaction.
func (s *SQLiteStore) insertBatch(ctx context.Context, table, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrapf(err, "sqlite: begin %s batch", table)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return eris.Wrapf(err, "sqlite: prepare %s insert", table)
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r...); err != nil {
			return eris.Wrapf(err, "sqlite: insert into %s", table)
		}
	}
	return eris.Wrapf(tx.Commit(), "sqlite: commit %s batch", table)
}

func (s *SQLiteStore) CreateBrands(ctx context.Context, brands []model.Brand) error {
	now := time.Now().UTC()
	rows := make([][]any, len(brands))
	for i := range brands {
		fillBrand(&brands[i], now)
		b := brands[i]
		rows[i] = []any{b.ID, b.Name, b.Industry, nullIfEmpty(b.Website), nullIfEmpty(b.LogoURL), b.UserID, b.CreatedAt.UTC()}
	}
	return s.insertBatch(ctx, "brands",
		`INSERT INTO brands (id, name, industry, website, logo_url, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rows,
	)
}

const sqliteSelectBrand = `SELECT id, name, industry, website, logo_url, user_id, created_at FROM brands`

func (s *SQLiteStore) GetBrand(ctx context.Context, id string) (*model.Brand, error) {
	b, err := scanBrand(s.db.QueryRowContext(ctx, sqliteSelectBrand+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get brand %s", id)
	}
	return b, nil
}

func (s *SQLiteStore) GetPrimaryBrand(ctx context.Context, userID string) (*model.Brand, error) {
	b, err := scanBrand(s.db.QueryRowContext(ctx,
		sqliteSelectBrand+` WHERE user_id = ? AND website IS NOT NULL AND logo_url IS NOT NULL ORDER BY created_at DESC LIMIT 1`,
		userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get primary brand for %s", userID)
	}
	return b, nil
}

func (s *SQLiteStore) ListTrackedBrands(ctx context.Context) ([]model.Brand, error) {
	rows, err := s.db.QueryContext(ctx,
		sqliteSelectBrand+` WHERE website IS NOT NULL AND logo_url IS NOT NULL ORDER BY created_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tracked brands")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.Brand{}
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan brand")
		}
		// Rows written outside the app may carry empty strings.
		if !b.Tracked() {
			continue
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate brands")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBrand(row scannable) (*model.Brand, error) {
	var b model.Brand
	var website, logo sql.NullString
	if err := row.Scan(&b.ID, &b.Name, &b.Industry, &website, &logo, &b.UserID, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Website = website.String
	b.LogoURL = logo.String
	return &b, nil
}

func (s *SQLiteStore) InsertRankings(ctx context.Context, rankings []model.AIRanking) error {
	rows := make([][]any, len(rankings))
	for i, r := range rankings {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		var rank any
		if r.Rank != nil {
			rank = *r.Rank
		}
		rows[i] = []any{
			r.ID, r.EntityID, r.EntityName, string(r.EntityType), r.UserID, r.LLMName, r.Query,
			rank, r.Score, r.Reasoning, string(r.Mode), r.ModeID, i, r.AnalyzedAt.UTC(),
		}
	}
	return s.insertBatch(ctx, "ai_rankings",
		`INSERT INTO ai_rankings (id, entity_id, entity_name, entity_type, user_id, llm_name, query, rank, score, reasoning, mode, mode_id, position, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rows,
	)
}

func (s *SQLiteStore) InsertInsights(ctx context.Context, insights []model.SocialInsight) error {
	rows := make([][]any, len(insights))
	for i, in := range insights {
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		rows[i] = []any{
			in.ID, in.EntityID, in.EntityName, string(in.EntityType), in.UserID, in.SearchID, in.Platform,
			in.Keyword, in.MentionCount, string(in.Sentiment), i, in.DataFetchedAt.UTC(),
		}
	}
	return s.insertBatch(ctx, "social_insights",
		`INSERT INTO social_insights (id, entity_id, entity_name, entity_type, user_id, search_id, platform, keyword, mention_count, sentiment, position, data_fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rows,
	)
}

func (s *SQLiteStore) InsertComparisons(ctx context.Context, run RunRef, comps []model.CompetitorComparison) error {
	now := time.Now().UTC()
	rows := make([][]any, len(comps))
	for i, c := range comps {
		rows[i] = []any{uuid.NewString(), run.ModeID, run.UserID, c.Competitor, c.CompetitorID, c.RankingDiff, c.Analysis, i, now}
	}
	return s.insertBatch(ctx, "competitor_comparisons",
		`INSERT INTO competitor_comparisons (id, mode_id, user_id, competitor, competitor_id, ranking_diff, analysis, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rows,
	)
}

func (s *SQLiteStore) InsertCharts(ctx context.Context, run RunRef, charts []model.ChartData) error {
	now := time.Now().UTC()
	rows := make([][]any, len(charts))
	for i, c := range charts {
		points, err := json.Marshal(nonNilPoints(c.TrendPoints))
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal trend points")
		}
		rows[i] = []any{uuid.NewString(), run.ModeID, run.UserID, c.Keyword, string(points), c.Synthetic, i, now}
	}
	return s.insertBatch(ctx, "trend_charts",
		`INSERT INTO trend_charts (id, mode_id, user_id, keyword, trend_points, synthetic, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rows,
	)
}

func (s *SQLiteStore) ListRankings(ctx context.Context, f RankingFilter) ([]model.AIRanking, error) {
	const base = `SELECT id, entity_id, entity_name, entity_type, user_id, llm_name, query, rank, score, reasoning, mode, mode_id, analyzed_at FROM ai_rankings`
	var (
		rows *sql.Rows
		err  error
	)
	switch {
	case f.ModeID != "":
		rows, err = s.db.QueryContext(ctx, base+` WHERE mode_id = ? ORDER BY analyzed_at, position`, f.ModeID)
	case f.UserID != "":
		rows, err = s.db.QueryContext(ctx, base+` WHERE user_id = ? ORDER BY analyzed_at, position`, f.UserID)
	default:
		return nil, eris.New("sqlite: list rankings: mode_id or user_id is required")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list rankings")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.AIRanking{}
	for rows.Next() {
		var r model.AIRanking
		var entityType, mode string
		var rank sql.NullInt64
		if err := rows.Scan(
			&r.ID, &r.EntityID, &r.EntityName, &entityType, &r.UserID, &r.LLMName, &r.Query,
			&rank, &r.Score, &r.Reasoning, &mode, &r.ModeID, &r.AnalyzedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ranking")
		}
		if rank.Valid {
			v := int(rank.Int64)
			r.Rank = &v
		}
		r.EntityType = model.EntityType(entityType)
		r.Mode = model.AnalysisMode(mode)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate rankings")
}

func (s *SQLiteStore) ListInsights(ctx context.Context, searchID string) ([]model.SocialInsight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_id, entity_name, entity_type, user_id, search_id, platform, keyword, mention_count, sentiment, data_fetched_at
		 FROM social_insights WHERE search_id = ? ORDER BY data_fetched_at, position`,
		searchID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list social insights")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.SocialInsight{}
	for rows.Next() {
		var in model.SocialInsight
		var entityType, sentiment string
		if err := rows.Scan(
			&in.ID, &in.EntityID, &in.EntityName, &entityType, &in.UserID, &in.SearchID, &in.Platform,
			&in.Keyword, &in.MentionCount, &sentiment, &in.DataFetchedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan social insight")
		}
		in.EntityType = model.EntityType(entityType)
		in.Sentiment = model.Sentiment(sentiment)
		out = append(out, in)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate social insights")
}

func (s *SQLiteStore) ListComparisons(ctx context.Context, modeID string) ([]model.CompetitorComparison, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT competitor, competitor_id, ranking_diff, analysis FROM competitor_comparisons WHERE mode_id = ? ORDER BY position`,
		modeID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list comparisons")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.CompetitorComparison{}
	for rows.Next() {
		var c model.CompetitorComparison
		if err := rows.Scan(&c.Competitor, &c.CompetitorID, &c.RankingDiff, &c.Analysis); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan comparison")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate comparisons")
}

func (s *SQLiteStore) ListCharts(ctx context.Context, modeID string) ([]model.ChartData, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword, trend_points, synthetic FROM trend_charts WHERE mode_id = ? ORDER BY position`,
		modeID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list charts")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.ChartData{}
	for rows.Next() {
		var c model.ChartData
		var points string
		if err := rows.Scan(&c.Keyword, &points, &c.Synthetic); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan chart")
		}
		if err := json.Unmarshal([]byte(points), &c.TrendPoints); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal trend points")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate charts")
}

func (s *SQLiteStore) InsertBrandMetrics(ctx context.Context, m model.BrandMetrics) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.AnalyzedAt.IsZero() {
		m.AnalyzedAt = time.Now()
	}
	lists, err := marshalLists(m.Strengths, m.Weaknesses, m.Opportunities)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal metrics lists")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO brand_metrics (id, brand_id, visibility_score, positive_sentiment, negative_sentiment, neutral_sentiment,
		 consumer_perception, strengths, weaknesses, opportunities, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.BrandID, m.VisibilityScore, m.PositiveSentiment, m.NegativeSentiment, m.NeutralSentiment,
		m.ConsumerPerception, string(lists[0]), string(lists[1]), string(lists[2]), m.AnalyzedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert brand metrics for %s", m.BrandID)
}

func (s *SQLiteStore) LatestBrandMetrics(ctx context.Context, brandID string) (*model.BrandMetrics, error) {
	var m model.BrandMetrics
	var strengths, weaknesses, opportunities string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, brand_id, visibility_score, positive_sentiment, negative_sentiment, neutral_sentiment,
		 consumer_perception, strengths, weaknesses, opportunities, analyzed_at
		 FROM brand_metrics WHERE brand_id = ? ORDER BY analyzed_at DESC LIMIT 1`,
		brandID,
	).Scan(
		&m.ID, &m.BrandID, &m.VisibilityScore, &m.PositiveSentiment, &m.NegativeSentiment, &m.NeutralSentiment,
		&m.ConsumerPerception, &strengths, &weaknesses, &opportunities, &m.AnalyzedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest brand metrics for %s", brandID)
	}
	raw := [][]byte{[]byte(strengths), []byte(weaknesses), []byte(opportunities)}
	if err := unmarshalLists(raw, &m.Strengths, &m.Weaknesses, &m.Opportunities); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal metrics lists")
	}
	return &m, nil
}

func (s *SQLiteStore) InsertCompetitors(ctx context.Context, comps []model.Competitor) error {
	now := time.Now().UTC()
	rows := make([][]any, len(comps))
	for i, c := range comps {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		rows[i] = []any{c.ID, c.UserID, c.BrandID, c.Name, nullIfEmpty(c.Website), c.Industry, c.RankingDiff, c.CreatedAt.UTC()}
	}
	return s.insertBatch(ctx, "competitors",
		`INSERT INTO competitors (id, user_id, brand_id, name, website, industry, ranking_diff, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rows,
	)
}

func (s *SQLiteStore) ListCompetitors(ctx context.Context, brandID string) ([]model.Competitor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, brand_id, name, website, industry, ranking_diff, created_at
		 FROM competitors WHERE brand_id = ? ORDER BY created_at DESC`,
		brandID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list competitors")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.Competitor{}
	for rows.Next() {
		var c model.Competitor
		var website sql.NullString
		if err := rows.Scan(&c.ID, &c.UserID, &c.BrandID, &c.Name, &website, &c.Industry, &c.RankingDiff, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan competitor")
		}
		c.Website = website.String
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate competitors")
}

func (s *SQLiteStore) UpsertKeywords(ctx context.Context, keywords []model.Keyword) error {
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
			k.SearchVolume, k.Difficulty, k.OpportunityScore, k.CreatedAt.UTC(),
		}
	}
	return s.insertBatch(ctx, "keywords",
		`INSERT INTO keywords (id, entity_id, entity_name, entity_type, user_id, keyword, search_volume, difficulty, opportunity_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (entity_id, user_id, keyword) DO UPDATE SET
		   entity_name = excluded.entity_name,
		   search_volume = excluded.search_volume,
		   difficulty = excluded.difficulty,
		   opportunity_score = excluded.opportunity_score,
		   created_at = excluded.created_at`,
		rows,
	)
}

func (s *SQLiteStore) ListKeywords(ctx context.Context, entityID, userID string) ([]model.Keyword, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_id, entity_name, entity_type, user_id, keyword, search_volume, difficulty, opportunity_score, created_at
		 FROM keywords WHERE entity_id = ? AND user_id = ? AND entity_type = ? ORDER BY created_at DESC, keyword`,
		entityID, userID, string(model.EntityBrand),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list keywords")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.Keyword{}
	for rows.Next() {
		var k model.Keyword
		var entityType string
		if err := rows.Scan(
			&k.ID, &k.EntityID, &k.EntityName, &entityType, &k.UserID, &k.Keyword,
			&k.SearchVolume, &k.Difficulty, &k.OpportunityScore, &k.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan keyword")
		}
		k.EntityType = model.EntityType(entityType)
		out = append(out, k)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate keywords")
}

var _ Store = (*SQLiteStore)(nil)
