// Package pipeline composes feature validation, scoring and risk assessment
// into the results served to callers, and publishes alerts.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
	"github.com/couchcryptid/tsunami-risk-service/internal/features"
	"github.com/couchcryptid/tsunami-risk-service/internal/observability"
	"github.com/couchcryptid/tsunami-risk-service/internal/risk"
)

// Scorer returns one probability in [0, 1] per tensor. Implementations must
// be safe for concurrent use.
type Scorer interface {
	Score(ctx context.Context, batch []features.Tensor) ([]float64, error)
}

// AlertSink receives alert events. A nil sink disables publishing.
type AlertSink interface {
	PublishAlerts(ctx context.Context, alerts []domain.AlertEvent) error
}

// PredictRequest is the body of a single or small-batch prediction.
type PredictRequest struct {
	Data      json.RawMessage `json:"data" validate:"required"`
	Threshold *float64        `json:"threshold" validate:"omitempty,gte=0,lte=1"`
}

// BatchRequest is the body of a batch prediction.
type BatchRequest struct {
	Samples   json.RawMessage `json:"samples" validate:"required"`
	Threshold *float64        `json:"threshold" validate:"omitempty,gte=0,lte=1"`
}

// PredictResponse mirrors the request order of samples.
type PredictResponse struct {
	Success        bool                    `json:"success"`
	Probabilities  []float64               `json:"probabilities"`
	Alerts         []bool                  `json:"alerts"`
	Results        []risk.PredictionResult `json:"results"`
	Threshold      float64                 `json:"threshold"`
	Interpretation []string                `json:"interpretation"`
}

// BatchResponse adds batch statistics to the per-sample results.
type BatchResponse struct {
	Success       bool                    `json:"success"`
	BatchSize     int                     `json:"batch_size"`
	Probabilities []float64               `json:"probabilities"`
	Alerts        []bool                  `json:"alerts"`
	Results       []risk.PredictionResult `json:"results"`
	AlertCount    int                     `json:"alert_count"`
	AlertRate     string                  `json:"alert_rate"`
	Threshold     float64                 `json:"threshold"`
}

// Predictor scores caller-supplied tensors.
type Predictor struct {
	scorer    Scorer
	sink      AlertSink
	threshold float64
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewPredictor creates a Predictor. A nil scorer means the classifier failed
// to load: the predictor still serves, but every prediction fails with
// domain.ErrClassifierUnavailable.
func NewPredictor(scorer Scorer, sink AlertSink, threshold float64, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Predictor {
	loaded := 0.0
	if scorer != nil {
		loaded = 1
	}
	metrics.ClassifierLoaded.Set(loaded)
	return &Predictor{
		scorer:    scorer,
		sink:      sink,
		threshold: threshold,
		clock:     domain.ClockOrReal(clock),
		logger:    logger,
		metrics:   metrics,
	}
}

// Loaded reports whether a classifier is available.
func (p *Predictor) Loaded() bool { return p.scorer != nil }

// CheckReadiness returns nil once the classifier is loaded.
func (p *Predictor) CheckReadiness(_ context.Context) error {
	if p.scorer == nil {
		return domain.ErrClassifierUnavailable
	}
	return nil
}

// Predict scores a (24, 32) sample or a (batch, 24, 32) tensor.
func (p *Predictor) Predict(ctx context.Context, req PredictRequest) (PredictResponse, error) {
	if p.scorer == nil {
		return PredictResponse{}, domain.ErrClassifierUnavailable
	}
	if err := validateRequest(req); err != nil {
		return PredictResponse{}, err
	}
	batch, err := features.ParseInput(req.Data)
	if err != nil {
		return PredictResponse{}, err
	}

	threshold := p.thresholdOr(req.Threshold)
	results, err := p.assess(ctx, batch, threshold)
	if err != nil {
		return PredictResponse{}, err
	}
	p.publish(ctx, alertsFor("predict", "", results, nil, threshold, p.clock))

	resp := PredictResponse{
		Success:        true,
		Results:        results,
		Threshold:      threshold,
		Probabilities:  make([]float64, len(results)),
		Alerts:         make([]bool, len(results)),
		Interpretation: make([]string, len(results)),
	}
	for i, r := range results {
		resp.Probabilities[i] = r.Probability
		resp.Alerts[i] = r.Alert
		resp.Interpretation[i] = r.Interpretation
	}
	return resp, nil
}

// BatchPredict scores a (batch, 24, 32) tensor and summarizes the alerts.
func (p *Predictor) BatchPredict(ctx context.Context, req BatchRequest) (BatchResponse, error) {
	if p.scorer == nil {
		return BatchResponse{}, domain.ErrClassifierUnavailable
	}
	if err := validateRequest(req); err != nil {
		return BatchResponse{}, err
	}
	batch, err := features.ParseBatch(req.Samples)
	if err != nil {
		return BatchResponse{}, err
	}

	threshold := p.thresholdOr(req.Threshold)
	results, err := p.assess(ctx, batch, threshold)
	if err != nil {
		return BatchResponse{}, err
	}
	stats, err := risk.Summarize(results)
	if err != nil {
		return BatchResponse{}, err
	}
	p.publish(ctx, alertsFor("batch-predict", "", results, nil, threshold, p.clock))

	resp := BatchResponse{
		Success:       true,
		BatchSize:     len(batch),
		Results:       results,
		AlertCount:    stats.AlertCount,
		AlertRate:     stats.AlertRate,
		Threshold:     threshold,
		Probabilities: make([]float64, len(results)),
		Alerts:        make([]bool, len(results)),
	}
	for i, r := range results {
		resp.Probabilities[i] = r.Probability
		resp.Alerts[i] = r.Alert
	}
	return resp, nil
}

func (p *Predictor) thresholdOr(t *float64) float64 {
	if t != nil {
		return *t
	}
	return p.threshold
}

// assess scores a validated batch and classifies every probability.
func (p *Predictor) assess(ctx context.Context, batch []features.Tensor, threshold float64) ([]risk.PredictionResult, error) {
	probs, err := p.scorer.Score(ctx, batch)
	if err != nil {
		p.logger.Error("classifier scoring failed", "error", err, "batch_size", len(batch))
		return nil, err
	}
	results := risk.AssessAll(probs, threshold)
	for _, r := range results {
		p.metrics.Predictions.WithLabelValues(string(r.Tier)).Inc()
		if r.Alert {
			p.metrics.Alerts.Inc()
		}
	}
	return results, nil
}

// publish hands alerts to the sink. Failures are logged, never returned, and
// the caller's cancellation does not abort a publish in flight.
func (p *Predictor) publish(ctx context.Context, alerts []domain.AlertEvent) {
	if p.sink == nil || len(alerts) == 0 {
		return
	}
	if err := p.sink.PublishAlerts(context.WithoutCancel(ctx), alerts); err != nil {
		p.metrics.AlertsPublished.WithLabelValues("error").Add(float64(len(alerts)))
		p.logger.Error("publish alerts failed", "error", err, "count", len(alerts))
		return
	}
	p.metrics.AlertsPublished.WithLabelValues("success").Add(float64(len(alerts)))
}

// alertsFor builds one event per alerting result. events, when non-nil, is
// index-aligned with results.
func alertsFor(source, region string, results []risk.PredictionResult, events []domain.EarthquakeEvent, threshold float64, clock clockwork.Clock) []domain.AlertEvent {
	var out []domain.AlertEvent
	now := clock.Now().UTC()
	for i, r := range results {
		if !r.Alert {
			continue
		}
		a := domain.AlertEvent{
			ID:          uuid.NewString(),
			Source:      source,
			Probability: r.Probability,
			Tier:        string(r.Tier),
			Threshold:   threshold,
			Region:      region,
			IssuedAt:    now,
		}
		if events != nil {
			ev := events[i]
			a.Earthquake = &ev
		}
		out = append(out, a)
	}
	return out
}
