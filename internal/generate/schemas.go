package generate

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brand-scope/internal/model"
)

// IntRank converts a decoded rank to an integer rank. nil stays nil.
func IntRank(r *float64) *int {
	if r == nil {
		return nil
	}
	v := int(math.Round(*r))
	return &v
}

// RankedBrand is one entry of a brand list.
type RankedBrand struct {
	Name      string   `json:"name"`
	Rank      *float64 `json:"rank"`
	Score     float64  `json:"score"`
	Reasoning string   `json:"reasoning"`
}

// BrandList is the ranking shape shared by DeepFocus and Voyager.
type BrandList struct {
	Brands []RankedBrand `json:"brands"`
}

// BrandVerdict is Explorer's single-brand ranking.
type BrandVerdict struct {
	Rank      *float64 `json:"rank"`
	Score     float64  `json:"score"`
	Reasoning string   `json:"reasoning"`
}

// Comparison is Explorer's head-to-head result.
type Comparison struct {
	BrandRank      *float64 `json:"brand_rank"`
	CompetitorRank *float64 `json:"competitor_rank"`
	Score          float64  `json:"score"`
	Analysis       string   `json:"analysis"`
}

// SentimentVerdict is the 3-way sentiment classification.
type SentimentVerdict struct {
	Sentiment model.Sentiment `json:"sentiment"`
}

// TopBrandList holds suggested brands for an industry.
type TopBrandList struct {
	Brands []model.TopBrand `json:"brands"`
}

// CompetitorNames holds competitor names pulled from search snippets.
type CompetitorNames struct {
	Competitors []string `json:"competitors"`
}

// SentimentSplit is a percentage split of consumer sentiment.
type SentimentSplit struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Perception is a consumer-perception snapshot.
type Perception struct {
	VisibilityScore    float64        `json:"visibility_score"`
	SentimentAnalysis  SentimentSplit `json:"sentiment_analysis"`
	ConsumerPerception string         `json:"consumer_perception"`
	Strengths          []string       `json:"strengths"`
	Weaknesses         []string       `json:"weaknesses"`
	Opportunities      []string       `json:"opportunities"`
}

// LandscapeEntry is one competitor in a landscape analysis.
type LandscapeEntry struct {
	Name        string   `json:"name"`
	Website     string   `json:"website,omitempty"`
	RankingDiff float64  `json:"ranking_diff"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

// Landscape is the competitor landscape of a brand.
type Landscape struct {
	Competitors []LandscapeEntry `json:"competitors"`
}

// KeywordEstimate is one SEO keyword estimate.
type KeywordEstimate struct {
	Keyword          string  `json:"keyword"`
	SearchVolume     float64 `json:"search_volume"`
	Difficulty       float64 `json:"difficulty"`
	OpportunityScore float64 `json:"opportunity_score"`
	Relevance        float64 `json:"relevance"`
}

// KeywordPlan is a list of keyword estimates.
type KeywordPlan struct {
	Keywords []KeywordEstimate `json:"keywords"`
}

const nullableNumber = `{"type": ["number", "null"]}`

// BrandListSchema describes BrandList.
var BrandListSchema = Schema[BrandList]{
	Name: "brand_list",
	JSON: json.RawMessage(`{
  "type": "object",
  "required": ["brands"],
  "properties": {
    "brands": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "rank", "score", "reasoning"],
        "properties": {
          "name": {"type": "string"},
          "rank": ` + nullableNumber + `,
          "score": {"type": "number"},
          "reasoning": {"type": "string"}
        }
      }
    }
  }
}`),
	Validate: func(v *BrandList) error {
		if v.Brands == nil {
			return eris.New("missing brands")
		}
		for i, b := range v.Brands {
			if strings.TrimSpace(b.Name) == "" {
				return eris.Errorf("brands[%d]: empty name", i)
			}
		}
		return nil
	},
}

// BrandVerdictSchema describes BrandVerdict.
var BrandVerdictSchema = Schema[BrandVerdict]{
	Name: "brand_verdict",
	JSON: json.RawMessage(`{
  "type": "object",
  "required": ["rank", "score", "reasoning"],
  "properties": {
    "rank": ` + nullableNumber + `,
    "score": {"type": "number"},
    "reasoning": {"type": "string"}
  }
}`),
}

// ComparisonSchema describes Comparison.
var ComparisonSchema = Schema[Comparison]{
	Name: "comparison",
	JSON: json.RawMessage(`{
  "type": "object",
  "required": ["brand_rank", "competitor_rank", "score", "analysis"],
  "properties": {
    "brand_rank": ` + nullableNumber + `,
    "competitor_rank": ` + nullableNumber + `,
    "score": {"type": "number"},
    "analysis": {"type": "string"}
  }
}`),
	Validate: func(v *Comparison) error {
		if strings.TrimSpace(v.Analysis) == "" {
			return eris.New("empty analysis")
		}
		return nil
	},
}

// SentimentSchema describes SentimentVerdict.
var SentimentSchema = Schema[SentimentVerdict]{
	Name: "sentiment",
	JSON: json.RawMessage(`{
  "type": "object",
  "required": ["sentiment"],
  "properties": {
    "sentiment": {"type": "string", "enum": ["positive", "negative", "neutral"]}
  }
}`),
	Validate: func(v *SentimentVerdict) error {
		if !v.Sentiment.Valid() {
			return eris.Errorf("sentiment %q is not one of positive, negative, neutral", v.Sentiment)
		}
		return nil
	},
}

// TopBrandsSchema describes TopBrandList.
var TopBrandsSchema = Schema[TopBrandList]{
	Name: "top_brands",
	JSON: json.RawMessage(`{
  "type": "object",
  "required": ["brands"],
  "properties": {
    "brands": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "description"],
        "properties": {"name": {"type": "string"}, "description": {"type": "string"}}
      }
    }
  }
}`),
	Validate: func(v *TopBrandList) error {
		if v.Brands == nil {
			return eris.New("missing brands")
		}
		for i, b := range v.Brands {
			if strings.TrimSpace(b.Name) == "" {
				return eris.Errorf("brands[%d]: empty name", i)
			}
		}
		return nil
	},
}

// CompetitorNamesSchema describes CompetitorNames.
var CompetitorNamesSchema = Schema[CompetitorNames]{
	Name: "competitor_names",
	JSON: json.RawMessage(`{
  "type": "object",
  "required": ["competitors"],
  "properties": {"competitors": {"type": "array", "items": {"type": "string"}}}
}`),
	Validate: func(v *CompetitorNames) error {
		if v.Competitors == nil {
			return eris.New("missing competitors")
		}
		return nil
	},
}

// PerceptionSchema describes Perception.
var PerceptionSchema = Schema[Perception]{
	Name: "perception",
	JSON: json.RawMessage(`{
  "type": "object",
  "required": ["visibility_score", "sentiment_analysis", "consumer_perception", "strengths", "weaknesses", "opportunities"],
  "properties": {
    "visibility_score": {"type": "number"},
    "sentiment_analysis": {
      "type": "object",
      "required": ["positive", "negative", "neutral"],
      "properties": {"positive": {"type": "number"}, "negative": {"type": "number"}, "neutral": {"type": "number"}}
    },
    "consumer_perception": {"type": "string"},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "weaknesses": {"type": "array", "items": {"type": "string"}},
    "opportunities": {"type": "array", "items": {"type": "string"}}
  }
}`),
}

// LandscapeSchema describes Landscape.
var LandscapeSchema = Schema[Landscape]{
	Name: "landscape",
	JSON: json.RawMessage(`{
  "type": "object",
  "required": ["competitors"],
  "properties": {
    "competitors": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "ranking_diff", "strengths", "weaknesses"],
        "properties": {
          "name": {"type": "string"},
          "website": {"type": "string"},
          "ranking_diff": {"type": "number"},
          "strengths": {"type": "array", "items": {"type": "string"}},
          "weaknesses": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`),
	Validate: func(v *Landscape) error {
		if v.Competitors == nil {
			return eris.New("missing competitors")
		}
		for i, c := range v.Competitors {
			if strings.TrimSpace(c.Name) == "" {
				return eris.Errorf("competitors[%d]: empty name", i)
			}
		}
		return nil
	},
}

// KeywordPlanSchema describes KeywordPlan.
var KeywordPlanSchema = Schema[KeywordPlan]{
	Name: "keyword_plan",
	JSON: json.RawMessage(`{
  "type": "object",
  "required": ["keywords"],
  "properties": {
    "keywords": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["keyword", "search_volume", "difficulty", "opportunity_score", "relevance"],
        "properties": {
          "keyword": {"type": "string"},
          "search_volume": {"type": "number"},
          "difficulty": {"type": "number"},
          "opportunity_score": {"type": "number"},
          "relevance": {"type": "number"}
        }
      }
    }
  }
}`),
	Validate: func(v *KeywordPlan) error {
		if v.Keywords == nil {
			return eris.New("missing keywords")
		}
		for i, k := range v.Keywords {
			if strings.TrimSpace(k.Keyword) == "" {
				return eris.Errorf("keywords[%d]: empty keyword", i)
			}
		}
		return nil
	},
}
