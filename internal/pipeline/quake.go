package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/creasty/defaults"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
	"github.com/couchcryptid/tsunami-risk-service/internal/features"
	"github.com/couchcryptid/tsunami-risk-service/internal/registry"
	"github.com/couchcryptid/tsunami-risk-service/internal/risk"
)

// Catalog queries an earthquake catalog.
type Catalog interface {
	Earthquakes(ctx context.Context, q domain.CatalogQuery) ([]domain.EarthquakeEvent, error)
}

// RegionLookup resolves a region key.
type RegionLookup interface {
	Region(key string) (registry.Region, error)
}

// EarthquakeQuery selects the catalog window of a regional assessment.
type EarthquakeQuery struct {
	Hours        int      `query:"hours" default:"24" validate:"gte=1,lte=720"`
	MinMagnitude float64  `query:"min_magnitude" default:"5.0" validate:"gte=0,lte=10"`
	Limit        int      `query:"limit" default:"20" validate:"gte=1,lte=200"`
	Threshold    *float64 `query:"threshold" validate:"omitempty,gte=0,lte=1"`
}

// NewEarthquakeQuery returns a query holding the default window.
func NewEarthquakeQuery() EarthquakeQuery {
	var q EarthquakeQuery
	if err := defaults.Set(&q); err != nil {
		panic(fmt.Sprintf("earthquake query defaults: %v", err))
	}
	return q
}

// QuakeAssessment is the risk assessment of one catalog event.
type QuakeAssessment struct {
	Earthquake domain.EarthquakeEvent `json:"earthquake"`
	risk.PredictionResult
}

// QuakeReport is the regional earthquake risk summary.
type QuakeReport struct {
	Region      string                `json:"region"`
	Start       time.Time             `json:"start"`
	End         time.Time             `json:"end"`
	Threshold   float64               `json:"threshold"`
	Assessments []QuakeAssessment     `json:"assessments"`
	Statistics  *risk.BatchStatistics `json:"statistics,omitempty"`
}

// QuakeAssessor scores recent catalog earthquakes of a region using
// synthesized features.
type QuakeAssessor struct {
	regions   RegionLookup
	catalog   Catalog
	encoder   *features.Encoder
	predictor *Predictor
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewQuakeAssessor creates a QuakeAssessor sharing the predictor's
// classifier, threshold and alert sink.
func NewQuakeAssessor(regions RegionLookup, catalog Catalog, encoder *features.Encoder, predictor *Predictor, clock clockwork.Clock, logger *slog.Logger) *QuakeAssessor {
	return &QuakeAssessor{
		regions:   regions,
		catalog:   catalog,
		encoder:   encoder,
		predictor: predictor,
		clock:     domain.ClockOrReal(clock),
		logger:    logger,
	}
}

// Assess queries the catalog for region over the window of q, encodes each
// event and scores it. Statistics are omitted when no event matched.
func (a *QuakeAssessor) Assess(ctx context.Context, region string, q EarthquakeQuery) (QuakeReport, error) {
	if !a.predictor.Loaded() {
		return QuakeReport{}, domain.ErrClassifierUnavailable
	}
	if err := validateRequest(q); err != nil {
		return QuakeReport{}, err
	}
	reg, err := a.regions.Region(region)
	if err != nil {
		return QuakeReport{}, err
	}

	end := a.clock.Now().UTC()
	start := end.Add(-time.Duration(q.Hours) * time.Hour)
	events, err := a.catalog.Earthquakes(ctx, domain.CatalogQuery{
		Box:          reg.BBox,
		Start:        start,
		End:          end,
		MinMagnitude: q.MinMagnitude,
		Limit:        q.Limit,
	})
	if err != nil {
		return QuakeReport{}, fmt.Errorf("query earthquake catalog: %w", err)
	}

	threshold := a.predictor.thresholdOr(q.Threshold)
	report := QuakeReport{
		Region:      region,
		Start:       start,
		End:         end,
		Threshold:   threshold,
		Assessments: []QuakeAssessment{},
	}
	if len(events) == 0 {
		return report, nil
	}

	batch := make([]features.Tensor, len(events))
	for i, ev := range events {
		batch[i] = a.encoder.EncodeEvent(ev)
	}
	results, err := a.predictor.assess(ctx, batch, threshold)
	if err != nil {
		return QuakeReport{}, err
	}
	stats, err := risk.Summarize(results)
	if err != nil {
		return QuakeReport{}, err
	}

	report.Statistics = &stats
	report.Assessments = make([]QuakeAssessment, len(events))
	for i, ev := range events {
		report.Assessments[i] = QuakeAssessment{Earthquake: ev, PredictionResult: results[i]}
	}
	a.logger.Info("assessed regional earthquakes", "region", region, "events", len(events), "alerts", stats.AlertCount)
	a.predictor.publish(ctx, alertsFor("earthquake", region, results, events, threshold, a.clock))
	return report, nil
}
