// Package scale tracks the size progression of a packing run: the current
// scale level, its multiplicative factor and how many shapes remain before the
// level changes.
package scale

import "fmt"

// Sequence is the stateful scale generator for a single run.
type Sequence struct {
	start      int
	multiplier float64
	growth     GrowthFunc
	maxLevel   int

	level     int
	factor    float64
	remaining int
}

// State is a snapshot of a Sequence.
type State struct {
	Level     int     `json:"level"`
	Factor    float64 `json:"factor"`
	Remaining int     `json:"remaining"`
}

// New creates a Sequence and initialises it.
func New(start int, multiplier float64, growth GrowthFunc, maxLevel int) *Sequence {
	s := &Sequence{}
	s.Init(start, multiplier, growth, maxLevel)
	return s
}

// Init resets the sequence to level 0 with a factor of 1.
func (s *Sequence) Init(start int, multiplier float64, growth GrowthFunc, maxLevel int) {
	if growth == nil {
		growth = Double
	}
	if maxLevel < 0 {
		maxLevel = 0
	}
	s.start = start
	s.multiplier = multiplier
	s.growth = growth
	s.maxLevel = maxLevel

	s.level = 0
	s.factor = 1
	s.remaining = s.countAt(0)
}

// ConsumeOne records one placed shape and advances the level once the
// current level's allowance is used up.
func (s *Sequence) ConsumeOne() {
	s.remaining--
	if s.remaining <= 0 {
		s.advance()
	}
}

// ForceAdvance moves to the next level regardless of the remaining count.
func (s *Sequence) ForceAdvance() {
	s.advance()
}

// advance steps the level and multiplies the factor once. At the last level
// the factor is left alone and the allowance is refilled.
func (s *Sequence) advance() {
	if s.level < s.maxLevel {
		s.level++
		s.factor *= s.multiplier
	}
	s.remaining = s.countAt(s.level)
}

// countAt never returns less than one so a level can always be consumed.
func (s *Sequence) countAt(level int) int {
	n := s.growth(s.start, level)
	if n < 1 {
		return 1
	}
	return n
}

func (s *Sequence) Level() int { return s.level }
func (s *Sequence) Factor() float64 { return s.factor }
func (s *Sequence) Remaining() int { return s.remaining }
func (s *Sequence) Multiplier() float64 { return s.multiplier }
func (s *Sequence) MaxLevel() int { return s.maxLevel }

// State returns the current level, factor and remaining count.
func (s *Sequence) State() State {
	return State{Level: s.level, Factor: s.factor, Remaining: s.remaining}
}

func (s *Sequence) String() string {
	return fmt.Sprintf("level %d/%d factor %.4f remaining %d", s.level, s.maxLevel, s.factor, s.remaining)
}
