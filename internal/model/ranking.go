package model

import "time"

// AIRanking is one backend's opinion about one entity for one query.
// Rank is nil when the backend declined to rank; that is not the same as 0.
// Score is on whatever scale the producing backend used (see LLMName).
type AIRanking struct {
	ID         string       `json:"id"`
	EntityID   string       `json:"entity_id"`
	EntityName string       `json:"entity_name"`
	EntityType EntityType   `json:"entity_type"`
	UserID     string       `json:"user_id"`
	LLMName    string       `json:"llm_name"`
	Query      string       `json:"query"`
	Rank       *int         `json:"rank"`
	Score      float64      `json:"score"`
	Reasoning  string       `json:"reasoning,omitempty"`
	Mode       AnalysisMode `json:"mode"`
	ModeID     string       `json:"mode_id"`
	AnalyzedAt time.Time    `json:"analyzed_at"`
}

// RankOrZero returns the rank, treating unranked as 0.
func (r AIRanking) RankOrZero() int {
	if r.Rank == nil {
		return 0
	}
	return *r.Rank
}

// CompetitorComparison is the head-to-head result of an Explorer run.
// RankingDiff is brand rank minus competitor rank, unranked counting as 0.
type CompetitorComparison struct {
	Competitor   string `json:"competitor"`
	CompetitorID string `json:"competitor_id"`
	RankingDiff  int    `json:"ranking_diff"`
	Analysis     string `json:"analysis,omitempty"`
}

// SocialInsight summarizes social mentions of one ranked entity.
// EntityID is the id of the AIRanking entity it describes.
type SocialInsight struct {
	ID            string     `json:"id"`
	EntityID      string     `json:"entity_id"`
	EntityName    string     `json:"entity_name"`
	EntityType    EntityType `json:"entity_type"`
	UserID        string     `json:"user_id"`
	SearchID      string     `json:"search_id"`
	Platform      string     `json:"platform"`
	Keyword       string     `json:"keyword"`
	MentionCount  int        `json:"mention_count"`
	Sentiment     Sentiment  `json:"sentiment"`
	DataFetchedAt time.Time  `json:"data_fetched_at"`
}

// TrendPoint is a single dated value in a chart series.
type TrendPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// ChartData is a display-only series. Synthetic marks placeholder values
// that were generated rather than measured.
type ChartData struct {
	Keyword     string       `json:"keyword"`
	TrendPoints []TrendPoint `json:"trend_points"`
	Synthetic   bool         `json:"synthetic"`
}

// SearchResults is the aggregate produced by one orchestrator run and the
// unit reconstructed by the reader.
type SearchResults struct {
	SearchID       string                 `json:"search_id"`
	Mode           AnalysisMode           `json:"mode"`
	ModeID         string                 `json:"mode_id"`
	AIRankings     []AIRanking            `json:"ai_rankings"`
	SocialInsights []SocialInsight        `json:"social_insights,omitempty"`
	Charts         []ChartData            `json:"charts,omitempty"`
	Comparisons    []CompetitorComparison `json:"comparisons,omitempty"`
}

// LatestAnalyzedAt returns the most recent ranking timestamp in the run.
func (s *SearchResults) LatestAnalyzedAt() time.Time {
	var latest time.Time
	for _, r := range s.AIRankings {
		if r.AnalyzedAt.After(latest) {
			latest = r.AnalyzedAt
		}
	}
	return latest
}
