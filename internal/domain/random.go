package domain

import "math/rand/v2"

// RandSource supplies the random draws used by feature synthesis and the
// fallback generator. *rand.Rand satisfies it, so tests can pass a seeded
// generator and assert exact output.
type RandSource interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// NormFloat64 returns a standard normal value (mean 0, stddev 1).
	NormFloat64() float64
}

// systemRand draws from the goroutine-safe top-level math/rand/v2 functions.
type systemRand struct{}

func (systemRand) Float64() float64     { return rand.Float64() }
func (systemRand) NormFloat64() float64 { return rand.NormFloat64() }

// SystemRand returns the production entropy-backed source. It is safe for
// concurrent use.
func SystemRand() RandSource { return systemRand{} }

// RandOrSystem returns r, or SystemRand when r is nil.
func RandOrSystem(r RandSource) RandSource {
	if r == nil {
		return SystemRand()
	}
	return r
}
