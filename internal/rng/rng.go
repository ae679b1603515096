// Package rng provides the deterministic entropy source every stimulus
// generator builds on. It is a fixed 32-bit linear congruential recurrence
// plus a Box-Muller transform: pure integer/float arithmetic with no platform
// RNG, so an identical seed yields an identical stream on every platform.
// That guarantee is what makes provenance replay reproduce pixel-identical
// stimuli.
package rng

import "math"

// Numerical Recipes LCG constants; the modulus is 2^32 via uint32 wraparound.
const (
	multiplier uint32 = 1664525
	increment  uint32 = 1013904223
)

// NextUniform advances the LCG state once and returns a uniform draw in
// [0, 1) together with the new state.
func NextUniform(state uint32) (float64, uint32) {
	state = state*multiplier + increment
	return float64(state) / 4294967296.0, state
}

// NextGaussianPair draws two independent standard normal deviates via the
// Box-Muller transform, returning them with the advanced state. The first
// uniform is resampled if it lands on exactly 0 before the logarithm.
func NextGaussianPair(state uint32) (z1, z2 float64, newState uint32) {
	var u1, u2 float64
	u1, state = NextUniform(state)
	for u1 == 0 {
		u1, state = NextUniform(state)
	}
	u2, state = NextUniform(state)

	radius := math.Sqrt(-2 * math.Log(u1))
	angle := 2 * math.Pi * u2
	return radius * math.Cos(angle), radius * math.Sin(angle), state
}

// Source is a stateful convenience wrapper around the pure step functions.
// It is not safe for concurrent use; each generation owns its own Source.
type Source struct {
	state uint32
	// Box-Muller produces deviates in pairs; the second is held for the
	// next Gaussian call so single draws stay deterministic.
	spare    float64
	hasSpare bool
}

// NewSource creates a Source from a seed. The seed is masked to unsigned
// 32 bits before first use, so seed 0 and negative seeds behave.
func NewSource(seed int64) *Source {
	return &Source{state: uint32(uint64(seed) & 0xFFFFFFFF)}
}

// Uniform returns the next uniform draw in [0, 1).
func (s *Source) Uniform() float64 {
	u, state := NextUniform(s.state)
	s.state = state
	return u
}

// Gaussian returns the next standard normal deviate.
func (s *Source) Gaussian() float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare
	}
	z1, z2, state := NextGaussianPair(s.state)
	s.state = state
	s.spare = z2
	s.hasSpare = true
	return z1
}

// GaussianPair returns the next two standard normal deviates, discarding any
// held spare so pair boundaries stay aligned with the uniform stream.
func (s *Source) GaussianPair() (float64, float64) {
	s.hasSpare = false
	z1, z2, state := NextGaussianPair(s.state)
	s.state = state
	return z1, z2
}

// State exposes the current LCG state for diagnostics and tests.
func (s *Source) State() uint32 {
	return s.state
}
