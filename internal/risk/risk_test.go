package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tsunami-risk-service/internal/features"
)

func TestAssess(t *testing.T) {
	tests := []struct {
		p         float64
		wantTier  Tier
		wantAlert bool
	}{
		{0.6, TierHigh, true},
		{0.3, TierModerate, true},
		{0.05, TierLow, false},
		{0.5, TierModerate, true},
		{0.2, TierLow, true},
		{0.1, TierLow, false},
		{0, TierLow, false},
		{1, TierHigh, true},
	}
	for _, tt := range tests {
		got := Assess(tt.p, DefaultThreshold)
		assert.Equal(t, tt.wantTier, got.Tier, "tier for p=%v", tt.p)
		assert.Equal(t, tt.wantAlert, got.Alert, "alert for p=%v", tt.p)
		assert.InDelta(t, tt.p, got.Probability, 0)
	}
}

func TestAssess_CustomThreshold(t *testing.T) {
	got := Assess(0.3, 0.5)
	assert.False(t, got.Alert)
	assert.Equal(t, TierModerate, got.Tier)
	assert.Equal(t, InterpretationNone, got.Interpretation)

	got = Assess(0.3, 0)
	assert.True(t, got.Alert)
	assert.Equal(t, InterpretationDetected, got.Interpretation)
}

func TestSummarize(t *testing.T) {
	results := AssessAll([]float64{0.9, 0.05, 0.3, 0.01, 0.0}, DefaultThreshold)
	stats, err := Summarize(results)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.AlertCount)
	assert.Equal(t, "40.00%", stats.AlertRate)

	stats, err = Summarize(AssessAll([]float64{0.9, 0.9, 0.01}, DefaultThreshold))
	require.NoError(t, err)
	assert.Equal(t, "66.67%", stats.AlertRate)
}

func TestSummarize_EmptyBatchRejected(t *testing.T) {
	_, err := Summarize(nil)
	require.ErrorIs(t, err, features.ErrEmptyBatch)
}
