// Package results writes analysis runs to the store and reads them back.
package results

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/brand-scope/internal/model"
	"github.com/sells-group/brand-scope/internal/store"
)

// DefaultIndustry is recorded on brand rows created from rankings.
const DefaultIndustry = "Technology"

// PersistenceError reports a failed write. Rows written before the failure
// are not rolled back.
type PersistenceError struct {
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("results: persist %s: %v", e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persister writes runs.
type Persister struct {
	store store.Store
}

// NewPersister returns a Persister writing to st.
func NewPersister(st store.Store) *Persister {
	return &Persister{store: st}
}

// Save creates one brand row per ranking, points every ranking at its new
// brand and writes rankings, insights, comparisons and charts in that order.
// It returns the run as stored.
func (p *Persister) Save(ctx context.Context, res *model.SearchResults, userID string) (*model.SearchResults, error) {
	log := zap.L().With(zap.String("mode", string(res.Mode)), zap.String("mode_id", res.ModeID))

	out := *res
	out.AIRankings = make([]model.AIRanking, len(res.AIRankings))
	copy(out.AIRankings, res.AIRankings)

	brands := make([]model.Brand, len(out.AIRankings))
	for i, r := range out.AIRankings {
		brands[i] = model.Brand{
			Name:     NormalizeName(r.EntityName),
			Industry: DefaultIndustry,
			UserID:   userID,
		}
	}
	if err := p.store.CreateBrands(ctx, brands); err != nil {
		return nil, &PersistenceError{Table: "brands", Err: err}
	}

	rekey := make(map[string]string, len(brands))
	for i := range out.AIRankings {
		r := &out.AIRankings[i]
		rekey[r.EntityID] = brands[i].ID
		r.EntityID = brands[i].ID
		r.EntityName = brands[i].Name
		if r.UserID == "" {
			r.UserID = userID
		}
	}
	if err := p.store.InsertRankings(ctx, out.AIRankings); err != nil {
		return nil, &PersistenceError{Table: "ai_rankings", Err: err}
	}

	if len(res.SocialInsights) > 0 {
		out.SocialInsights = make([]model.SocialInsight, len(res.SocialInsights))
		for i, in := range res.SocialInsights {
			if id, ok := rekey[in.EntityID]; ok {
				in.EntityID = id
			} else {
				log.Warn("results: insight has no matching ranking", zap.String("entity_id", in.EntityID))
			}
			in.EntityName = NormalizeName(in.EntityName)
			if in.UserID == "" {
				in.UserID = userID
			}
			out.SocialInsights[i] = in
		}
		if err := p.store.InsertInsights(ctx, out.SocialInsights); err != nil {
			return nil, &PersistenceError{Table: "social_insights", Err: err}
		}
	}

	run := store.RunRef{ModeID: res.ModeID, UserID: userID}

	if len(res.Comparisons) > 0 {
		out.Comparisons = make([]model.CompetitorComparison, len(res.Comparisons))
		for i, c := range res.Comparisons {
			if id, ok := rekey[c.CompetitorID]; ok {
				c.CompetitorID = id
			}
			c.Competitor = NormalizeName(c.Competitor)
			out.Comparisons[i] = c
		}
		if err := p.store.InsertComparisons(ctx, run, out.Comparisons); err != nil {
			return nil, &PersistenceError{Table: "competitor_comparisons", Err: err}
		}
	}

	if len(res.Charts) > 0 {
		if err := p.store.InsertCharts(ctx, run, res.Charts); err != nil {
			return nil, &PersistenceError{Table: "trend_charts", Err: err}
		}
	}

	log.Info("results: run saved",
		zap.Int("brands", len(brands)),
		zap.Int("rankings", len(out.AIRankings)),
		zap.Int("insights", len(out.SocialInsights)),
		zap.Int("comparisons", len(out.Comparisons)),
		zap.Int("charts", len(out.Charts)),
	)
	return &out, nil
}

// NormalizeName trims whitespace and applies Unicode NFC so visually equal
// names compare equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
