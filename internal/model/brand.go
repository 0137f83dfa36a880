package model

import "time"

// Brand is a named entity tracked for a user. Runs create one per ranked
// entity name; onboarding creates the user's primary brand with a website.
type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	Website   string    `json:"website,omitempty"`
	LogoURL   string    `json:"logo_url,omitempty"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Tracked reports whether the brand qualifies for scheduled analysis.
func (b Brand) Tracked() bool {
	return b.Website != "" && b.LogoURL != ""
}

// BrandMetrics is one perception snapshot for a brand.
type BrandMetrics struct {
	ID                 string    `json:"id"`
	BrandID            string    `json:"brand_id"`
	VisibilityScore    float64   `json:"visibility_score"`
	PositiveSentiment  float64   `json:"positive_sentiment"`
	NegativeSentiment  float64   `json:"negative_sentiment"`
	NeutralSentiment   float64   `json:"neutral_sentiment"`
	ConsumerPerception string    `json:"consumer_perception"`
	Strengths          []string  `json:"strengths"`
	Weaknesses         []string  `json:"weaknesses"`
	Opportunities      []string  `json:"opportunities"`
	AnalyzedAt         time.Time `json:"analyzed_at"`
}

// Competitor is a rival brand discovered by a perception analysis.
type Competitor struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	BrandID     string    `json:"brand_id"`
	Name        string    `json:"name"`
	Website     string    `json:"website,omitempty"`
	Industry    string    `json:"industry"`
	RankingDiff int       `json:"ranking_diff"`
	CreatedAt   time.Time `json:"created_at"`
}

// Keyword is an SEO keyword estimate attached to an entity.
type Keyword struct {
	ID               string     `json:"id"`
	EntityID         string     `json:"entity_id"`
	EntityName       string     `json:"entity_name"`
	EntityType       EntityType `json:"entity_type"`
	UserID           string     `json:"user_id"`
	Keyword          string     `json:"keyword"`
	SearchVolume     int        `json:"search_volume"`
	Difficulty       float64    `json:"difficulty"`
	OpportunityScore float64    `json:"opportunity_score"`
	CreatedAt        time.Time  `json:"created_at"`
}

// BrandData is the dashboard bundle for a user's primary brand.
type BrandData struct {
	Brand       Brand         `json:"brand"`
	Metrics     *BrandMetrics `json:"metrics,omitempty"`
	Competitors []Competitor  `json:"competitors"`
	Keywords    []Keyword     `json:"keywords"`
}

// TopBrand is a suggested brand for an industry.
type TopBrand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
