package geometry

import "math"

// Quad is a convex quadrilateral, typically an oriented bounding box.
type Quad [4]Vector

// QuadsOverlap tests two convex quads for overlap with the separating axis
// theorem. Touching quads are reported as overlapping, so the test never
// produces a false negative.
func QuadsOverlap(a, b Quad) bool {
	return !separatedOnAxes(a, b) && !separatedOnAxes(b, a)
}

// separatedOnAxes reports whether any edge normal of q separates q from other.
func separatedOnAxes(q, other Quad) bool {
	for i := range q {
		edge := q[(i+1)%4].Minus(q[i])
		axis := Vector{X: -edge.Y, Y: edge.X}
		if axis.Magnitude() < Epsilon {
			continue
		}
		minA, maxA := project(q, axis)
		minB, maxB := project(other, axis)
		if maxA < minB || maxB < minA {
			return true
		}
	}
	return false
}

func project(q Quad, axis Vector) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range q {
		d := Dot(v, axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// Expand grows a rectangular quad (corners in order, adjacent edges
// perpendicular) outward by d on every side.
func (q Quad) Expand(d float64) Quad {
	if d == 0 {
		return q
	}
	u := unitOr(q[1].Minus(q[0]), Vector{X: 1})
	v := unitOr(q[3].Minus(q[0]), Vector{X: -u.Y, Y: u.X})
	du := u.Times(d)
	dv := v.Times(d)
	return Quad{
		q[0].Minus(du).Minus(dv),
		q[1].Plus(du).Minus(dv),
		q[2].Plus(du).Plus(dv),
		q[3].Minus(du).Plus(dv),
	}
}

// Points returns the quad corners as a slice.
func (q Quad) Points() []Vector {
	return q[:]
}
