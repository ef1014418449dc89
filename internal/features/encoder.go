package features

import (
	"math"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

const (
	noiseSigma    = 0.05
	maxDepthKm    = 700.0
	minDepthScale = 0.1
)

// Encoder synthesizes a feature tensor from earthquake parameters for events
// that have no recorded waveform features.
type Encoder struct {
	rand domain.RandSource
}

// NewEncoder creates an encoder. A nil source selects the system source.
func NewEncoder(rnd domain.RandSource) *Encoder {
	return &Encoder{rand: domain.RandOrSystem(rnd)}
}

// Encode returns the tensor for an event. Magnitude scales the signal and
// deeper events attenuate it. The location does not affect the signal.
func (e *Encoder) Encode(magnitude, depthKm, _, _ float64) Tensor {
	base := (magnitude / 10) * math.Max(minDepthScale, 1-depthKm/maxDepthKm)

	var t Tensor
	for step := range TimeSteps {
		ts := float64(step)
		evolution := math.Sin(ts*math.Pi/TimeSteps) * (ts / TimeSteps)
		for f := range Features {
			freq := math.Cos(2 * math.Pi * float64(f) / Features)
			v := base*(0.3+0.5*evolution+0.2*freq) + noiseSigma*e.rand.NormFloat64()
			t[step][f] = clip(v)
		}
	}
	return t
}

// EncodeEvent encodes a catalog event.
func (e *Encoder) EncodeEvent(ev domain.EarthquakeEvent) Tensor {
	return e.Encode(ev.Magnitude, ev.DepthKm, ev.Latitude, ev.Longitude)
}

func clip(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
