package domain

import "time"

// Quality tags the provenance of a reading.
type Quality string

const (
	QualityVerified  Quality = "verified"  // quality-controlled sea-level feed
	QualityMeasured  Quality = "measured"  // raw buoy observation
	QualityEstimated Quality = "estimated" // synthesized by the fallback generator
)

// IsReal reports whether the quality tag denotes observed data.
func (q Quality) IsReal() bool {
	return q == QualityVerified || q == QualityMeasured
}

const (
	// MinReadings is the fewest decoded rows a feed must yield to be used.
	MinReadings = 5
	// MaxReadings caps every reading list; the most recent entries are kept.
	MaxReadings = 10
)

// Reading is one timestamped telemetry value.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Quality   Quality   `json:"quality"`
}

// SourceResult is the telemetry produced for one station by whichever
// provider in the fallback chain succeeded. Readings are chronological and
// hold between MinReadings and MaxReadings entries.
type SourceResult struct {
	Station    Station   `json:"station"`
	Readings   []Reading `json:"readings"`
	SourceName string    `json:"source_name"`
	DataType   string    `json:"data_type"`
	Unit       string    `json:"unit"`
	RealData   bool      `json:"real_data"`
}

// NewSourceResult builds a SourceResult, deriving RealData from the quality
// of the readings.
func NewSourceResult(station Station, readings []Reading, sourceName, dataType, unit string) SourceResult {
	observed := len(readings) > 0
	for _, r := range readings {
		if !r.Quality.IsReal() {
			observed = false
			break
		}
	}
	return SourceResult{
		Station:    station,
		Readings:   readings,
		SourceName: sourceName,
		DataType:   dataType,
		Unit:       unit,
		RealData:   observed,
	}
}

// MostRecent returns the last n readings of a chronological slice.
func MostRecent(readings []Reading, n int) []Reading {
	if len(readings) <= n {
		return readings
	}
	return readings[len(readings)-n:]
}
