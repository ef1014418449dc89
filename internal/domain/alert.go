package domain

import "time"

// AlertEvent is published to the alert sink whenever a prediction crosses
// the alert threshold.
type AlertEvent struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"` // "predict", "batch-predict" or "earthquake"
	Probability float64          `json:"probability"`
	Tier        string           `json:"risk_tier"`
	Threshold   float64          `json:"threshold"`
	Region      string           `json:"region,omitempty"`
	Earthquake  *EarthquakeEvent `json:"earthquake,omitempty"`
	IssuedAt    time.Time        `json:"issued_at"`
}
