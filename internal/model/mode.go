package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// AnalysisMode selects which orchestrator handles a run.
type AnalysisMode string

const (
	ModeDeepFocus AnalysisMode = "DeepFocus"
	ModeVoyager   AnalysisMode = "Voyager"
	ModeExplorer  AnalysisMode = "Explorer"
)

// Modes lists every supported analysis mode in display order.
var Modes = []AnalysisMode{ModeDeepFocus, ModeVoyager, ModeExplorer}

// ParseMode resolves a mode name. Matching is case-insensitive so CLI input
// like "voyager" works; the canonical spelling is returned.
func ParseMode(s string) (AnalysisMode, error) {
	for _, m := range Modes {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", eris.Errorf("model: unknown analysis mode %q", s)
}

// EntityType distinguishes the caller's brand from its competitors.
type EntityType string

const (
	EntityBrand      EntityType = "brand"
	EntityCompetitor EntityType = "competitor"
)

// Sentiment is the 3-way social sentiment label.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three known labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}
