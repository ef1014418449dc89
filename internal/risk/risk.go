// Package risk turns classifier probabilities into tiers and alerts.
package risk

import (
	"fmt"

	"github.com/couchcryptid/tsunami-risk-service/internal/features"
)

// Tier is a coarse risk classification.
type Tier string

const (
	TierLow      Tier = "LOW"
	TierModerate Tier = "MODERATE"
	TierHigh     Tier = "HIGH"
)

// DefaultThreshold is the alert threshold used when the caller gives none.
const DefaultThreshold = 0.1

const (
	highCutoff     = 0.5
	moderateCutoff = 0.2
)

const (
	InterpretationDetected = "Tsunami detected"
	InterpretationNone     = "No tsunami"
)

// PredictionResult is the assessment of one scored sample.
type PredictionResult struct {
	Probability    float64 `json:"probability"`
	Tier           Tier    `json:"risk_tier"`
	Alert          bool    `json:"alert"`
	Interpretation string  `json:"interpretation"`
}

// BatchStatistics summarizes the alerts of a batch.
type BatchStatistics struct {
	AlertCount int    `json:"alert_count"`
	AlertRate  string `json:"alert_rate"`
}

// TierFor maps a probability to its tier. Both cutoffs are exclusive.
func TierFor(p float64) Tier {
	switch {
	case p > highCutoff:
		return TierHigh
	case p > moderateCutoff:
		return TierModerate
	default:
		return TierLow
	}
}

// Assess classifies p against an alert threshold.
func Assess(p, threshold float64) PredictionResult {
	alert := p > threshold
	interp := InterpretationNone
	if alert {
		interp = InterpretationDetected
	}
	return PredictionResult{
		Probability:    p,
		Tier:           TierFor(p),
		Alert:          alert,
		Interpretation: interp,
	}
}

// AssessAll classifies every probability of a batch.
func AssessAll(probabilities []float64, threshold float64) []PredictionResult {
	out := make([]PredictionResult, len(probabilities))
	for i, p := range probabilities {
		out[i] = Assess(p, threshold)
	}
	return out
}

// Summarize counts the alerts of a batch. An empty batch is rejected.
func Summarize(results []PredictionResult) (BatchStatistics, error) {
	if len(results) == 0 {
		return BatchStatistics{}, features.ErrEmptyBatch
	}
	count := 0
	for _, r := range results {
		if r.Alert {
			count++
		}
	}
	return BatchStatistics{
		AlertCount: count,
		AlertRate:  fmt.Sprintf("%.2f%%", 100*float64(count)/float64(len(results))),
	}, nil
}
