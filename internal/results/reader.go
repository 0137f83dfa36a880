package results

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/brand-scope/internal/cache"
	"github.com/sells-group/brand-scope/internal/model"
	"github.com/sells-group/brand-scope/internal/store"
)

// Reader reconstructs runs and brand dashboards from the store.
type Reader struct {
	store store.Store
	cache cache.RunCache
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithCache serves ByModeID from c when possible.
func WithCache(c cache.RunCache) ReaderOption {
	return func(r *Reader) { r.cache = c }
}

// NewReader returns a Reader over st.
func NewReader(st store.Store, opts ...ReaderOption) *Reader {
	r := &Reader{store: st}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ByModeID returns one run, or nil when no rankings carry modeID.
func (r *Reader) ByModeID(ctx context.Context, modeID string) (*model.SearchResults, error) {
	log := zap.L().With(zap.String("mode_id", modeID))

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, modeID)
		if err != nil {
			log.Warn("results: cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	rankings, err := r.store.ListRankings(ctx, store.RankingFilter{ModeID: modeID})
	if err != nil {
		return nil, eris.Wrapf(err, "results: read run %s", modeID)
	}
	if len(rankings) == 0 {
		return nil, nil
	}

	res := &model.SearchResults{
		SearchID:   modeID,
		Mode:       rankings[0].Mode,
		ModeID:     modeID,
		AIRankings: rankings,
	}

	insights, err := r.store.ListInsights(ctx, modeID)
	if err != nil {
		return nil, eris.Wrapf(err, "results: read insights for %s", modeID)
	}
	comparisons, err := r.store.ListComparisons(ctx, modeID)
	if err != nil {
		return nil, eris.Wrapf(err, "results: read comparisons for %s", modeID)
	}
	charts, err := r.store.ListCharts(ctx, modeID)
	if err != nil {
		return nil, eris.Wrapf(err, "results: read charts for %s", modeID)
	}
	if len(insights) > 0 {
		res.SocialInsights = insights
	}
	if len(comparisons) > 0 {
		res.Comparisons = comparisons
	}
	if len(charts) > 0 {
		res.Charts = charts
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, res); err != nil {
			log.Warn("results: cache write failed", zap.Error(err))
		}
	}
	return res, nil
}

// ByUserID returns the user's runs, newest first. Each run carries its
// rankings only.
func (r *Reader) ByUserID(ctx context.Context, userID string) ([]model.SearchResults, error) {
	rankings, err := r.store.ListRankings(ctx, store.RankingFilter{UserID: userID})
	if err != nil {
		return nil, eris.Wrapf(err, "results: read runs for user %s", userID)
	}
	return GroupByModeID(rankings), nil
}

// GroupByModeID folds rankings into one SearchResults per mode id, ordered
// by each run's latest analyzed_at, newest first.
func GroupByModeID(rankings []model.AIRanking) []model.SearchResults {
	idx := make(map[string]int)
	out := []model.SearchResults{}
	for _, rk := range rankings {
		i, ok := idx[rk.ModeID]
		if !ok {
			i = len(out)
			idx[rk.ModeID] = i
			out = append(out, model.SearchResults{SearchID: rk.ModeID, Mode: rk.Mode, ModeID: rk.ModeID})
		}
		out[i].AIRankings = append(out[i].AIRankings, rk)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].LatestAnalyzedAt().After(out[b].LatestAnalyzedAt())
	})
	return out
}

// BrandData returns the user's primary brand with its latest metrics,
// competitors and keywords, or nil when the user has no tracked brand.
func (r *Reader) BrandData(ctx context.Context, userID string) (*model.BrandData, error) {
	brand, err := r.store.GetPrimaryBrand(ctx, userID)
	if err != nil {
		return nil, eris.Wrapf(err, "results: read brand for %s", userID)
	}
	if brand == nil {
		return nil, nil
	}

	data := &model.BrandData{Brand: *brand}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := r.store.LatestBrandMetrics(gctx, brand.ID)
		data.Metrics = m
		return err
	})
	g.Go(func() error {
		c, err := r.store.ListCompetitors(gctx, brand.ID)
		data.Competitors = c
		return err
	})
	g.Go(func() error {
		k, err := r.store.ListKeywords(gctx, brand.ID, userID)
		data.Keywords = k
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrapf(err, "results: read brand data for %s", userID)
	}
	if data.Competitors == nil {
		data.Competitors = []model.Competitor{}
	}
	if data.Keywords == nil {
		data.Keywords = []model.Keyword{}
	}
	return data, nil
}
