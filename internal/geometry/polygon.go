package geometry

import (
	"math"

	"github.com/jbeda/geom"
)

// Polygon is a closed polygon as a sequence of vertices.
// The polygon is implicitly closed: the last vertex connects back to the first.
type Polygon []Vector

// Valid reports whether the polygon has at least three finite vertices.
func (p Polygon) Valid() bool {
	if len(p) < 3 {
		return false
	}
	for _, v := range p {
		if !Finite(v) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the polygon.
func (p Polygon) Clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Translate shifts all vertices by d.
func (p Polygon) Translate(d Vector) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Plus(d)
	}
	return out
}

// Bounds computes the axis-aligned bounding rectangle of a set of points.
func Bounds(points []Vector) geom.Rect {
	if len(points) == 0 {
		return geom.Rect{}
	}
	r := geom.Rect{Min: points[0], Max: points[0]}
	for _, v := range points[1:] {
		r.ExpandToContainCoord(v)
	}
	return r
}

// BoundingBox returns the four corners of the axis-aligned bounding box of the
// points, ordered top-left, top-right, bottom-right, bottom-left (y down).
func BoundingBox(points []Vector) [4]Vector {
	r := Bounds(points)
	return RectCorners(r)
}

// RectCorners returns the corners of r ordered top-left, top-right,
// bottom-right, bottom-left.
func RectCorners(r geom.Rect) [4]Vector {
	return [4]Vector{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// RectsOverlap reports whether two rectangles overlap. Touching edges do not count.
func RectsOverlap(a, b geom.Rect) bool {
	return a.Min.X < b.Max.X && a.Max.X > b.Min.X &&
		a.Min.Y < b.Max.Y && a.Max.Y > b.Min.Y
}

// PadOffset displaces every vertex outward by padding along the bisector of
// the angle formed with its two neighbours. The signed angle between the
// vectors to the neighbours is measured with atan2(cross, dot) so convex and
// concave vertices are handled consistently. The input is not modified.
func PadOffset(polygon Polygon, padding float64) Polygon {
	n := len(polygon)
	out := make(Polygon, n)
	if padding == 0 {
		copy(out, polygon)
		return out
	}

	// Counter-wound outlines swap neighbours so the offset still points outward.
	reversed := SignedArea(polygon) < 0

	for i, point := range polygon {
		prev := polygon[(i-1+n)%n]
		next := polygon[(i+1)%n]
		if reversed {
			prev, next = next, prev
		}

		v1 := prev.Minus(point)
		v2 := next.Minus(point)

		between := math.Atan2(Cross(v1, v2), Dot(v1, v2))
		if between < 0 {
			between += 2 * math.Pi
		}

		// Heading of the next vertex with the y axis pointing down.
		nextAngle := math.Atan2(-v2.Y, v2.X)
		if nextAngle < 0 {
			nextAngle += 2 * math.Pi
		}

		bisector := nextAngle + between/2
		out[i] = Vector{
			X: point.X + padding*math.Cos(bisector),
			Y: point.Y - padding*math.Sin(bisector),
		}
	}
	return out
}

// PointInPolygon tests whether point lies inside polygon using the even-odd
// rule, after a cheap bounding-box rejection.
func PointInPolygon(point Vector, polygon Polygon) bool {
	if len(polygon) < 3 {
		return false
	}

	r := Bounds(polygon)
	if point.X < r.Min.X || point.X > r.Max.X || point.Y < r.Min.Y || point.Y > r.Max.Y {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > point.Y) != (pj.Y > point.Y) &&
			point.X < (pj.X-pi.X)*(point.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PolygonsIntersect reports whether any vertex of a lies inside b or any
// vertex of b lies inside a. Edge crossings without a contained vertex are
// not detected; outlines are densely sampled so this does not matter here.
func PolygonsIntersect(a, b Polygon) bool {
	for _, v := range a {
		if PointInPolygon(v, b) {
			return true
		}
	}
	for _, v := range b {
		if PointInPolygon(v, a) {
			return true
		}
	}
	return false
}

// SignedArea returns the shoelace area of the polygon. It is positive for
// outlines wound clockwise on a y-down canvas.
func SignedArea(p Polygon) float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return area / 2
}

// Area returns the absolute area of the polygon.
func Area(p Polygon) float64 {
	return math.Abs(SignedArea(p))
}

// Centroid returns the average position of the points.
func Centroid(points []Vector) Vector {
	if len(points) == 0 {
		return Vector{}
	}
	var sum Vector
	for _, v := range points {
		sum = sum.Plus(v)
	}
	return sum.Times(1 / float64(len(points)))
}

// PathLength returns the perimeter of the closed polygon.
func PathLength(p Polygon) float64 {
	n := len(p)
	var length float64
	for i := 0; i < n; i++ {
		length += Distance(p[i], p[(i+1)%n])
	}
	return length
}

// Resample walks the closed polygon and returns points spaced evenly along
// its perimeter. At least minPoints points are returned; when the perimeter is
// too short for the requested spacing the spacing shrinks instead.
func Resample(p Polygon, spacing float64, minPoints int) Polygon {
	length := PathLength(p)
	if len(p) < 2 || length < Epsilon {
		return p.Clone()
	}

	count := 0
	if spacing > 0 {
		count = int(math.Floor(length / spacing))
	}
	if count < minPoints {
		count = minPoints
	}
	step := length / float64(count)

	out := make(Polygon, 0, count)
	n := len(p)
	edge := 0
	edgeStart := 0.0
	for i := 0; i < count; i++ {
		target := step * float64(i)
		for {
			a, b := p[edge], p[(edge+1)%n]
			edgeLen := Distance(a, b)
			if target <= edgeStart+edgeLen || edge == n-1 {
				t := 0.0
				if edgeLen > Epsilon {
					t = (target - edgeStart) / edgeLen
				}
				out = append(out, a.Plus(b.Minus(a).Times(t)))
				break
			}
			edgeStart += edgeLen
			edge++
		}
	}
	return out
}
