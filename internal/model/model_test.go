package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    AnalysisMode
		wantErr bool
	}{
		{"DeepFocus", ModeDeepFocus, false},
		{"voyager", ModeVoyager, false},
		{" EXPLORER ", ModeExplorer, false},
		{"Wanderer", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentimentValid(t *testing.T) {
	t.Parallel()
	assert.True(t, SentimentPositive.Valid())
	assert.True(t, SentimentNegative.Valid())
	assert.True(t, SentimentNeutral.Valid())
	assert.False(t, Sentiment("mixed").Valid())
}

func TestRankOrZero(t *testing.T) {
	t.Parallel()
	three := 3
	assert.Equal(t, 3, AIRanking{Rank: &three}.RankOrZero())
	assert.Equal(t, 0, AIRanking{}.RankOrZero())
}

func TestLatestAnalyzedAt(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	res := &SearchResults{AIRankings: []AIRanking{
		{AnalyzedAt: base},
		{AnalyzedAt: base.Add(2 * time.Minute)},
		{AnalyzedAt: base.Add(time.Minute)},
	}}
	assert.Equal(t, base.Add(2*time.Minute), res.LatestAnalyzedAt())
	assert.True(t, (&SearchResults{}).LatestAnalyzedAt().IsZero())
}

func TestBrandTracked(t *testing.T) {
	t.Parallel()
	assert.True(t, Brand{Website: "https://acme.test", LogoURL: "https://acme.test/logo.png"}.Tracked())
	assert.False(t, Brand{Website: "https://acme.test"}.Tracked())
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	v := &ValidationError{}
	assert.True(t, v.Empty())
	assert.NoError(t, v.Err())

	v.Add("user_id", "must be a uuid")
	v.Add("mode", "is required")
	err := v.Err()
	require.Error(t, err)
	assert.Equal(t, "validation: mode: is required; user_id: must be a uuid", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 2)

	single := NewValidationError("competitors", "Explorer mode requires competitors")
	assert.Equal(t, "Explorer mode requires competitors", single.Fields["competitors"])
}
