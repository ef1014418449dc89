package telemetry

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

const (
	// FallbackSource is the provenance name of synthetic readings.
	FallbackSource = "Synthetic Estimate"

	fallbackSamples  = domain.MaxReadings
	fallbackInterval = 6 * time.Minute
	noiseSigma       = 0.1
)

// TideLookup resolves the fallback constants of a region.
type TideLookup interface {
	TideFor(region string) domain.TideProfile
}

// Generator synthesizes a plausible sea-level series when no real provider
// delivered enough data. It never fails.
type Generator struct {
	tides TideLookup
	clock clockwork.Clock
	rand  domain.RandSource
}

// NewGenerator creates a fallback generator. A nil clock or random source
// selects the production implementation.
func NewGenerator(tides TideLookup, clock clockwork.Clock, rnd domain.RandSource) *Generator {
	return &Generator{
		tides: tides,
		clock: domain.ClockOrReal(clock),
		rand:  domain.RandOrSystem(rnd),
	}
}

// Generate returns exactly ten estimated readings, six minutes apart, the
// last one at the current time.
func (g *Generator) Generate(station domain.Station) domain.SourceResult {
	profile := g.tides.TideFor(station.Region)
	now := g.clock.Now().UTC()

	readings := make([]domain.Reading, fallbackSamples)
	for i := range readings {
		ts := now.Add(-time.Duration(fallbackSamples-1-i) * fallbackInterval)
		hour := float64(ts.Hour()) + float64(ts.Minute())/60 + float64(ts.Second())/3600
		jitter := 0.8 + 0.2*g.rand.Float64()

		value := profile.Baseline +
			profile.TideAmplitude*math.Sin(2*math.Pi*hour/12) +
			profile.WaveAmplitude*math.Sin(2*math.Pi*float64(i)/3)*jitter +
			noiseSigma*g.rand.NormFloat64()

		readings[i] = domain.Reading{Timestamp: ts, Value: value, Quality: domain.QualityEstimated}
	}

	return domain.NewSourceResult(station, readings, FallbackSource, "sea_level", "m")
}
