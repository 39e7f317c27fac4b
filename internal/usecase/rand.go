package usecase

import "math/rand"

// Rand is the injectable randomness port. Exercise-type and item selection go
// through it so tests can script deterministic sequences.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// NewRand returns the production source backed by math/rand.
func NewRand() Rand {
	return stdRand{}
}

type stdRand struct{}

func (stdRand) Intn(n int) int   { return rand.Intn(n) }
func (stdRand) Float64() float64 { return rand.Float64() }
