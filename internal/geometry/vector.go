// Package geometry provides the vector, polygon and transform primitives used
// by the packing engine. Vectors and rectangles are the github.com/jbeda/geom
// types so they interoperate with the rest of the geom ecosystem.
package geometry

import (
	"math"

	"github.com/jbeda/geom"
	"gonum.org/v1/gonum/floats/scalar"
)

// Vector is a 2D point or direction.
type Vector = geom.Coord

// Epsilon is the tolerance used for approximate comparisons.
const Epsilon = 1e-9

// Vec creates a new Vector.
func Vec(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// Cross returns the z component of the cross product of a and b.
func Cross(a, b Vector) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Dot returns the dot product of a and b.
func Dot(a, b Vector) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Rotate rotates v about the origin by the given angle in radians.
func Rotate(v Vector, radians float64) Vector {
	sin, cos := math.Sincos(radians)
	return Vector{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vector) float64 {
	return a.Minus(b).Magnitude()
}

// Finite reports whether both coordinates are finite numbers.
func Finite(v Vector) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// AlmostEqual reports whether a and b are within tol of each other on both axes.
func AlmostEqual(a, b Vector, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) && scalar.EqualWithinAbs(a.Y, b.Y, tol)
}

// unitOr returns the unit vector of v, or fallback when v has no length.
func unitOr(v, fallback Vector) Vector {
	if v.Magnitude() < Epsilon {
		return fallback
	}
	return v.Unit()
}
