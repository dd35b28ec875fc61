package scale

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ratio is a named interval between two consecutive scale levels.
type Ratio struct {
	Name  string
	Value float64
}

// Ratios lists the named intervals. A ratio r shrinks each level by 1/r.
var Ratios = []Ratio{
	{"octave", 2},
	{"majorSeventh", 15.0 / 8},
	{"minorSeventh", 16.0 / 9},
	{"majorSixth", 5.0 / 3},
	{"minorSixth", 8.0 / 5},
	{"fifth", 3.0 / 2},
	{"augmentedFourth", 45.0 / 32},
	{"fourth", 4.0 / 3},
	{"majorThird", 5.0 / 4},
	{"minorThird", 6.0 / 5},
	{"majorSecond", 9.0 / 8},
	{"minorSecond", 16.0 / 15},
	{"cinema", 2.39},
	{"golden", 1.618},
}

// RatioByName looks up a named ratio.
func RatioByName(name string) (float64, bool) {
	for _, r := range Ratios {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}

// RatioNames returns the names of all ratios in declaration order.
func RatioNames() []string {
	names := make([]string, 0, len(Ratios))
	for _, r := range Ratios {
		names = append(names, r.Name)
	}
	return names
}

// ParseMultiplier resolves a configured ratio into the per-level multiplier.
// Named ratios give 1/r. Anything else must be a positive number and is used
// as the multiplier directly, so "0.8" shrinks and "1.25" grows.
func ParseMultiplier(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if r, ok := RatioByName(s); ok {
		return 1 / r, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown scale ratio %q", s)
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("scale ratio must be positive, got %q", s)
	}
	return v, nil
}

// GrowthFunc returns how many shapes are placed at a level given the
// configured start count.
type GrowthFunc func(start, level int) int

// maxCount caps growth functions that would otherwise overflow.
const maxCount = math.MaxInt32

func Double(start, level int) int    { return multiply(start, 2, level) }
func Triple(start, level int) int    { return multiply(start, 3, level) }
func Quadruple(start, level int) int { return multiply(start, 4, level) }
func Quintuple(start, level int) int { return multiply(start, 5, level) }

// Exponential returns start^(level+1).
func Exponential(start, level int) int {
	return clampCount(math.Pow(float64(start), float64(level+1)))
}

// Fibonacci weights the start count by the (level+1)th Fibonacci number:
// 1, 1, 2, 3, 5, ...
func Fibonacci(start, level int) int {
	a, b := 1.0, 0.0
	for i := level; i >= 0; i-- {
		a, b = a+b, a
	}
	return clampCount(float64(start) * b)
}

func multiply(start int, base float64, level int) int {
	return clampCount(float64(start) * math.Pow(base, float64(level)))
}

func clampCount(v float64) int {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > maxCount:
		return maxCount
	}
	return int(v)
}

type namedGrowth struct {
	name string
	fn   GrowthFunc
}

var growthFunctions = []namedGrowth{
	{"double", Double},
	{"triple", Triple},
	{"quadruple", Quadruple},
	{"quintuple", Quintuple},
	{"exponential", Exponential},
	{"fibonacci", Fibonacci},
}

// GrowthByName looks up a growth function.
func GrowthByName(name string) (GrowthFunc, error) {
	for _, g := range growthFunctions {
		if g.name == name {
			return g.fn, nil
		}
	}
	return nil, fmt.Errorf("unknown scale frequency %q", name)
}

// GrowthNames returns the names of all growth functions.
func GrowthNames() []string {
	names := make([]string, 0, len(growthFunctions))
	for _, g := range growthFunctions {
		names = append(names, g.name)
	}
	return names
}
