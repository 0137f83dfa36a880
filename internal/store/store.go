// Package store persists brands, analysis runs and brand-perception data.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/brand-scope/internal/model"
)

// RunRef ties run-scoped rows that carry no ids of their own to a run.
type RunRef struct {
	ModeID string
	UserID string
}

// RankingFilter selects ranking rows. Exactly one field should be set.
type RankingFilter struct {
	ModeID string
	UserID string
}

// Store defines the persistence interface. Reads that find nothing return a
// nil pointer or an empty slice, not an error.
type Store interface {
	// Brands. CreateBrands fills missing ids and timestamps in place.
	CreateBrands(ctx context.Context, brands []model.Brand) error
	GetBrand(ctx context.Context, id string) (*model.Brand, error)
	GetPrimaryBrand(ctx context.Context, userID string) (*model.Brand, error)
	ListTrackedBrands(ctx context.Context) ([]model.Brand, error)

	// Run records
	InsertRankings(ctx context.Context, rows []model.AIRanking) error
	InsertInsights(ctx context.Context, rows []model.SocialInsight) error
	InsertComparisons(ctx context.Context, run RunRef, rows []model.CompetitorComparison) error
	InsertCharts(ctx context.Context, run RunRef, charts []model.ChartData) error
	ListRankings(ctx context.Context, filter RankingFilter) ([]model.AIRanking, error)
	ListInsights(ctx context.Context, searchID string) ([]model.SocialInsight, error)
	ListComparisons(ctx context.Context, modeID string) ([]model.CompetitorComparison, error)
	ListCharts(ctx context.Context, modeID string) ([]model.ChartData, error)

	// Brand perception
	InsertBrandMetrics(ctx context.Context, m model.BrandMetrics) error
	LatestBrandMetrics(ctx context.Context, brandID string) (*model.BrandMetrics, error)
	InsertCompetitors(ctx context.Context, rows []model.Competitor) error
	ListCompetitors(ctx context.Context, brandID string) ([]model.Competitor, error)
	UpsertKeywords(ctx context.Context, rows []model.Keyword) error
	ListKeywords(ctx context.Context, entityID, userID string) ([]model.Keyword, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// dedupeKeywords keeps the last row per (entity, user, keyword) so a batch
// never hits the same unique key twice.
func dedupeKeywords(rows []model.Keyword) []model.Keyword {
	type key struct{ entity, user, kw string }
	idx := make(map[key]int, len(rows))
	out := make([]model.Keyword, 0, len(rows))
	for _, r := range rows {
		k := key{r.EntityID, r.UserID, r.Keyword}
		if i, ok := idx[k]; ok {
			out[i] = r
			continue
		}
		idx[k] = len(out)
		out = append(out, r)
	}
	return out
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fillBrand(b *model.Brand, now time.Time) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
}

func nonNilPoints(p []model.TrendPoint) []model.TrendPoint {
	if p == nil {
		return []model.TrendPoint{}
	}
	return p
}

func marshalLists(lists ...[]string) ([][]byte, error) {
	out := make([][]byte, len(lists))
	for i, l := range lists {
		if l == nil {
			l = []string{}
		}
		b, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func unmarshalLists(raw [][]byte, dst ...*[]string) error {
	for i, r := range raw {
		*dst[i] = []string{}
		if len(r) == 0 {
			continue
		}
		if err := json.Unmarshal(r, dst[i]); err != nil {
			return err
		}
	}
	return nil
}
