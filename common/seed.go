package common

import "sync"

// SeededRNG implements a Mulberry32 seeded pseudo-random number generator.
// Produces deterministic sequences so renders and jitter are reproducible.
// It is safe for concurrent use.
type SeededRNG struct {
	mu    sync.Mutex
	state uint32
}

// NewSeededRNG creates a new seeded random number generator.
func NewSeededRNG(seed uint32) *SeededRNG {
	return &SeededRNG{state: seed}
}

// Random generates the next random number using Mulberry32 algorithm.
// Returns a float64 between 0 (inclusive) and 1 (exclusive).
func (r *SeededRNG) Random() float64 {
	r.mu.Lock()
	r.state += 0x6D2B79F5
	t := r.state
	r.mu.Unlock()
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// RandomFloat generates a random float in the specified range [min, max).
func (r *SeededRNG) RandomFloat(min, max float64) float64 {
	return r.Random()*(max-min) + min
}

// Chance reports true with probability p.
func (r *SeededRNG) Chance(p float64) bool {
	return r.Random() < p
}

// Derive mixes a stream index into a base seed so that each consumer of
// one seed gets an independent sequence.
func Derive(baseSeed uint32, stream int) uint32 {
	seed := baseSeed ^ (uint32(stream) * 2654435761)
	seed = (seed ^ (seed >> 16)) * 0x85ebca6b
	seed = (seed ^ (seed >> 13)) * 0xc2b2ae35
	return seed ^ (seed >> 16)
}
