package domain

// Station is a fixed sea-level monitoring site. Stations are created once
// when the registry loads and are never mutated.
type Station struct {
	ID           string  `json:"id" yaml:"id"`
	DisplayName  string  `json:"name" yaml:"name"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	Region       string  `json:"region" yaml:"-"`
	ProviderCode string  `json:"provider_code" yaml:"provider_code"`
}

// BoundingBox is a WGS-84 rectangle used to scope earthquake catalog queries.
type BoundingBox struct {
	MinLatitude  float64 `json:"min_latitude" yaml:"min_latitude"`
	MaxLatitude  float64 `json:"max_latitude" yaml:"max_latitude"`
	MinLongitude float64 `json:"min_longitude" yaml:"min_longitude"`
	MaxLongitude float64 `json:"max_longitude" yaml:"max_longitude"`
}

// TideProfile holds the static constants the fallback generator uses to
// synthesize a plausible water-level series for a region.
type TideProfile struct {
	Baseline      float64 `json:"baseline" yaml:"baseline"`
	TideAmplitude float64 `json:"tide_amplitude" yaml:"tide_amplitude"`
	WaveAmplitude float64 `json:"wave_amplitude" yaml:"wave_amplitude"`
}

// DefaultTideProfile is used for regions without configured constants.
var DefaultTideProfile = TideProfile{Baseline: 5.0, TideAmplitude: 0.5, WaveAmplitude: 0.2}
