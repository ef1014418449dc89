package telemetry

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
	"github.com/couchcryptid/tsunami-risk-service/internal/observability"
)

// StationLookup lists the stations of a region.
type StationLookup interface {
	Stations(region string) ([]domain.Station, error)
}

// Aggregator produces one SourceResult per station of a region by walking
// the provider chain in order and falling back to synthetic readings.
type Aggregator struct {
	stations StationLookup
	chain    []Provider
	fallback *Generator
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewAggregator creates an aggregator over an ordered provider chain. A nil
// clock selects the real clock.
func NewAggregator(stations StationLookup, chain []Provider, fallback *Generator, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		stations: stations,
		chain:    chain,
		fallback: fallback,
		clock:    domain.ClockOrReal(clock),
		logger:   logger,
		metrics:  metrics,
	}
}

// Aggregate returns the telemetry of every station in region, in registry
// order. Provider failures never surface; the only error is an unknown region.
// Stations are processed sequentially and the caller's cancellation does not
// interrupt a started station.
func (a *Aggregator) Aggregate(ctx context.Context, region string) ([]domain.SourceResult, error) {
	stations, err := a.stations.Stations(region)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	results := make([]domain.SourceResult, 0, len(stations))
	for _, st := range stations {
		results = append(results, a.resolve(ctx, st))
	}
	return results, nil
}

func (a *Aggregator) resolve(ctx context.Context, station domain.Station) domain.SourceResult {
	for _, p := range a.chain {
		start := a.clock.Now()
		out := p.Fetch(ctx, station)
		if out.Status == StatusSkipped {
			continue
		}
		a.metrics.ProviderDuration.WithLabelValues(p.Name()).Observe(a.clock.Since(start).Seconds())
		a.metrics.ProviderRequests.WithLabelValues(p.Name(), out.Status.String()).Inc()

		if out.Status == StatusOK {
			return out.Result
		}
		a.logger.Warn("telemetry provider failed",
			"station", station.ID,
			"region", station.Region,
			"provider", p.Name(),
			"outcome", out.Status.String(),
			"error", out.Err,
		)
	}

	a.metrics.ProviderRequests.WithLabelValues("fallback", StatusOK.String()).Inc()
	a.metrics.Fallbacks.WithLabelValues(station.Region).Inc()
	return a.fallback.Generate(station)
}
