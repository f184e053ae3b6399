// Package gametest provides deterministic random sources for engine tests.
package gametest

import "fmt"

// Scripted replays fixed values. IntN returns the next queued int (which
// must be below n) and Float64 the next queued float. It panics when a
// queue runs dry so a test notices an unexpected draw.
type Scripted struct {
	Ints   []int
	Floats []float64
}

// IntN implements game.Rand.
func (s *Scripted) IntN(n int) int {
	if len(s.Ints) == 0 {
		panic("gametest: no scripted int left")
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("gametest: scripted int %d out of [0,%d)", v, n))
	}
	return v
}

// Float64 implements game.Rand.
func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		panic("gametest: no scripted float left")
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}
