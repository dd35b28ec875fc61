package geometry

import "math"

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a uniform scale matrix.
func Scale(s float64) Matrix2D {
	return Matrix2D{s, 0, 0, s, 0, 0}
}

// RotateMatrix returns a rotation matrix (angle in radians).
func RotateMatrix(radians float64) Matrix2D {
	sin, cos := math.Sincos(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(p Vector) Vector {
	return Vector{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformPolygon applies the matrix to every vertex of p.
func (m Matrix2D) TransformPolygon(p Polygon) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = m.TransformPoint(v)
	}
	return out
}

// FromTransform composes Translate(t) * Rotate(r) * Scale(s) * Translate(-anchor).
// The anchor is scaled and rotated about, then moved to t.
func FromTransform(t Vector, s, radians float64, anchor Vector) Matrix2D {
	sin, cos := math.Sincos(radians)
	a := cos * s
	b := sin * s
	c := -sin * s
	d := cos * s
	return Matrix2D{
		a, b, c, d,
		t.X - (a*anchor.X + c*anchor.Y),
		t.Y - (b*anchor.X + d*anchor.Y),
	}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m[0]-1) < eps &&
		math.Abs(m[1]) < eps &&
		math.Abs(m[2]) < eps &&
		math.Abs(m[3]-1) < eps &&
		math.Abs(m[4]) < eps &&
		math.Abs(m[5]) < eps
}
