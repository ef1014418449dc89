package telemetry

import (
	"context"
	"errors"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

// Status is the tri-state result of one provider attempt.
type Status int

const (
	StatusOK Status = iota
	StatusInsufficient
	StatusUnavailable
	// StatusSkipped means the provider does not apply to the station and
	// made no request.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInsufficient:
		return "insufficient"
	case StatusSkipped:
		return "skipped"
	default:
		return "unavailable"
	}
}

// Outcome is what a provider reports for one station. Result is only set
// when Status is StatusOK; Err explains the failure states.
type Outcome struct {
	Status Status
	Result domain.SourceResult
	Err    error
}

func failed(err error) Outcome {
	if errors.Is(err, domain.ErrInsufficientData) {
		return Outcome{Status: StatusInsufficient, Err: err}
	}
	return Outcome{Status: StatusUnavailable, Err: err}
}

// Provider is one step of the telemetry fallback chain.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, station domain.Station) Outcome
}

// TextFetcher downloads the raw feed for a provider-specific code.
type TextFetcher interface {
	FetchText(ctx context.Context, code string) (string, error)
}

// BuoyLookup maps a region to its secondary buoy, if it has one.
type BuoyLookup interface {
	SecondaryFor(region string) (string, bool)
}

// SeaLevelProvider reads the IOC feed of the station itself.
type SeaLevelProvider struct {
	client TextFetcher
}

// NewSeaLevelProvider creates the primary provider.
func NewSeaLevelProvider(client TextFetcher) *SeaLevelProvider {
	return &SeaLevelProvider{client: client}
}

func (p *SeaLevelProvider) Name() string { return "ioc" }

func (p *SeaLevelProvider) Fetch(ctx context.Context, station domain.Station) Outcome {
	text, err := p.client.FetchText(ctx, station.ProviderCode)
	if err != nil {
		return failed(err)
	}
	readings, err := ParseSeaLevel(text)
	if err != nil {
		return failed(err)
	}
	return Outcome{
		Status: StatusOK,
		Result: domain.NewSourceResult(station, readings, SeaLevelSource, "sea_level", "m"),
	}
}

// BuoyProvider reads the NDBC buoy mapped to the station's region.
type BuoyProvider struct {
	client TextFetcher
	buoys  BuoyLookup
}

// NewBuoyProvider creates the secondary provider.
func NewBuoyProvider(client TextFetcher, buoys BuoyLookup) *BuoyProvider {
	return &BuoyProvider{client: client, buoys: buoys}
}

func (p *BuoyProvider) Name() string { return "ndbc" }

func (p *BuoyProvider) Fetch(ctx context.Context, station domain.Station) Outcome {
	buoy, ok := p.buoys.SecondaryFor(station.Region)
	if !ok {
		return Outcome{Status: StatusSkipped}
	}
	text, err := p.client.FetchText(ctx, buoy)
	if err != nil {
		return failed(err)
	}
	readings, err := ParseBuoy(text)
	if err != nil {
		return failed(err)
	}
	return Outcome{
		Status: StatusOK,
		Result: domain.NewSourceResult(station, readings, BuoySource, "wave_height", "m"),
	}
}
