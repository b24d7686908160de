// Package random provides the randomness source shared by every sampling step
// of the text compositor.
//
// Exactly one Source is chosen when a pipeline is constructed: NewStochastic for
// normal generation, or NewFixed for the debug policy where every draw collapses
// to a fixed index-0 / zero-variance choice. Components never branch on a debug
// flag themselves.
package random

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Source is the sampling interface used by the compositor and its
// collaborators. Implementations are not safe for concurrent use.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64

	// NormFloat64 returns a standard normal value.
	NormFloat64() float64

	// Beta returns a Beta(alpha, beta) distributed value in [0, 1].
	Beta(alpha, beta float64) float64

	// Perm returns a permutation of [0, n).
	Perm(n int) []int

	// Intn returns a uniform integer in [0, n). n must be positive.
	Intn(n int) int

	// Bernoulli reports whether an event of probability p happens.
	Bernoulli(p float64) bool
}

// Stochastic draws from a single seeded PCG generator.
type Stochastic struct {
	src rand.Source
	rng *rand.Rand
}

// NewStochastic returns a Source seeded with seed. Two sources built from the
// same seed produce identical sequences.
func NewStochastic(seed uint64) *Stochastic {
	src := rand.NewSource(seed)
	return &Stochastic{src: src, rng: rand.New(src)}
}

func (s *Stochastic) Float64() float64     { return s.rng.Float64() }
func (s *Stochastic) NormFloat64() float64 { return s.rng.NormFloat64() }
func (s *Stochastic) Perm(n int) []int     { return s.rng.Perm(n) }
func (s *Stochastic) Intn(n int) int       { return s.rng.Intn(n) }

func (s *Stochastic) Bernoulli(p float64) bool { return s.rng.Float64() < p }

// Beta samples through gonum's distribution on the shared generator, so Beta
// draws advance the same stream as every other call.
func (s *Stochastic) Beta(alpha, beta float64) float64 {
	return distuv.Beta{Alpha: alpha, Beta: beta, Src: s.src}.Rand()
}

// Fixed is the deterministic debug policy.
//
// Uniform draws return 0.5, normal draws return 0, Beta returns its mean,
// permutations are the identity and integer draws return 0. Bernoulli events
// never happen, whatever their probability, so optional effects such as
// curved baselines stay off.
type Fixed struct{}

// NewFixed returns the deterministic Source.
func NewFixed() Fixed { return Fixed{} }

func (Fixed) Float64() float64     { return 0.5 }
func (Fixed) NormFloat64() float64 { return 0 }
func (Fixed) Intn(int) int         { return 0 }

func (Fixed) Bernoulli(float64) bool { return false }

func (Fixed) Beta(alpha, beta float64) float64 {
	return alpha / (alpha + beta)
}

func (Fixed) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// New returns NewFixed when debug is set and NewStochastic(seed) otherwise.
func New(debug bool, seed uint64) Source {
	if debug {
		return NewFixed()
	}
	return NewStochastic(seed)
}
