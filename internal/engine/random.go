package engine

import (
	"math"
	"math/rand"
)

// IntegerBetween returns a uniformly distributed integer in
// [ceil(start), floor(end)]. An empty range returns ceil(start).
func IntegerBetween(rng *rand.Rand, start, end float64) int {
	lo := int(math.Ceil(start))
	hi := int(math.Floor(end))
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// RotationStep returns a random multiple of increment degrees between 0 and
// 360 inclusive. An increment of 0 disables rotation.
func RotationStep(rng *rand.Rand, increment float64) float64 {
	if increment <= 0 {
		return 0
	}
	steps := math.Floor(360 / increment)
	return float64(IntegerBetween(rng, 0, steps)) * increment
}

// Wiggle jitters value uniformly within +/- percentage percent.
func Wiggle(rng *rand.Rand, value, percentage float64) float64 {
	scale := percentage / 100
	lo := value * (1 - scale)
	hi := value * (1 + scale)
	return lo + rng.Float64()*(hi-lo)
}

// Pick returns a uniformly chosen element of items, which must not be empty.
func Pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}
