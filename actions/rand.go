package actions

import "math/rand"

// RandSource supplies the probability draws for branching actions.
// *rand.Rand satisfies it; tests inject fixed sequences.
type RandSource interface {
	Float64() float64
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) Intn(n int) int   { return rand.Intn(n) }

// DefaultRand draws from the auto-seeded, goroutine-safe math/rand top-level source.
func DefaultRand() RandSource {
	return globalRand{}
}

// SequenceRand replays fixed draws in order, wrapping around when exhausted.
type SequenceRand struct {
	Floats []float64
	Ints   []int
	fi, ii int
}

func (s *SequenceRand) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.fi%len(s.Floats)]
	s.fi++
	return v
}

func (s *SequenceRand) Intn(n int) int {
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	v := ((s.Ints[s.ii%len(s.Ints)] % n) + n) % n
	s.ii++
	return v
}
