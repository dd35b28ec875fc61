package geometry

import (
	"math"
	"testing"

	"github.com/jbeda/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float64) Polygon {
	return Polygon{
		{X: x, Y: y},
		{X: x + size, Y: y},
		{X: x + size, Y: y + size},
		{X: x, Y: y + size},
	}
}

func reversed(p Polygon) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

func TestBoundingBox_Corners(t *testing.T) {
	poly := Polygon{{X: 3, Y: 1}, {X: 7, Y: 4}, {X: 2, Y: 9}, {X: -1, Y: 5}}
	box := BoundingBox(poly)

	assert.Equal(t, Vec(-1, 1), box[0])
	assert.Equal(t, Vec(7, 1), box[1])
	assert.Equal(t, Vec(7, 9), box[2])
	assert.Equal(t, Vec(-1, 9), box[3])
}

func TestPadOffset_ZeroPaddingIsIdentity(t *testing.T) {
	poly := Polygon{{X: 0, Y: 0}, {X: 10, Y: 2}, {X: 4, Y: 5}, {X: 12, Y: 9}, {X: -3, Y: 8}}
	padded := PadOffset(poly, 0)

	require.Len(t, padded, len(poly))
	for i := range poly {
		assert.True(t, AlmostEqual(poly[i], padded[i], 1e-12), "vertex %d moved", i)
	}
}

func TestPadOffset_DoesNotModifyInput(t *testing.T) {
	poly := square(0, 0, 10)
	orig := poly.Clone()
	PadOffset(poly, 3)
	assert.Equal(t, orig, poly)
}

func TestPadOffset_SquareCornersMoveOutward(t *testing.T) {
	for name, poly := range map[string]Polygon{
		"clockwise":        square(0, 0, 10),
		"counterclockwise": reversed(square(0, 0, 10)),
	} {
		t.Run(name, func(t *testing.T) {
			padded := PadOffset(poly, 2)
			centre := Vec(5, 5)
			for i := range poly {
				moved := Distance(poly[i], padded[i])
				assert.InDelta(t, 2.0, moved, 1e-9, "vertex %d offset distance", i)
				assert.Greater(t, Distance(padded[i], centre), Distance(poly[i], centre),
					"vertex %d should move away from the centre", i)
			}
		})
	}
}

func TestPadOffset_ConcaveVertexMovesOutward(t *testing.T) {
	// An L shape; vertex (5,5) is the reflex corner.
	poly := Polygon{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5},
		{X: 5, Y: 5}, {X: 5, Y: 10}, {X: 0, Y: 10},
	}
	padded := PadOffset(poly, 1)

	// The reflex corner is pushed away from the solid part, towards (10,10).
	assert.Greater(t, padded[3].X, 5.0)
	assert.Greater(t, padded[3].Y, 5.0)
	assert.False(t, PointInPolygon(padded[3], poly))
}

func TestPointInPolygon(t *testing.T) {
	poly := square(0, 0, 10)

	assert.True(t, PointInPolygon(Vec(5, 5), poly))
	assert.True(t, PointInPolygon(Vec(0.1, 9.9), poly))
	assert.False(t, PointInPolygon(Vec(-1, 5), poly))
	assert.False(t, PointInPolygon(Vec(5, 11), poly))
	assert.False(t, PointInPolygon(Vec(5, 5), Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}}))
}

func TestPointInPolygon_Concave(t *testing.T) {
	poly := Polygon{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5},
		{X: 5, Y: 5}, {X: 5, Y: 10}, {X: 0, Y: 10},
	}
	assert.True(t, PointInPolygon(Vec(2, 8), poly))
	assert.False(t, PointInPolygon(Vec(8, 8), poly), "notch of the L is outside")
}

func TestPolygonsIntersect(t *testing.T) {
	a := square(0, 0, 10)

	assert.True(t, PolygonsIntersect(a, square(5, 5, 10)), "overlapping corners")
	assert.True(t, PolygonsIntersect(a, square(2, 2, 3)), "b fully inside a")
	assert.True(t, PolygonsIntersect(square(2, 2, 3), a), "a fully inside b")
	assert.False(t, PolygonsIntersect(a, square(20, 20, 5)), "disjoint")
}

func TestPolygonsIntersect_CrossWithoutVerticesIsMissed(t *testing.T) {
	// Two thin bars crossing at their middles: no vertex of either lies in the other.
	horizontal := Polygon{{X: -10, Y: -1}, {X: 10, Y: -1}, {X: 10, Y: 1}, {X: -10, Y: 1}}
	vertical := Polygon{{X: -1, Y: -10}, {X: 1, Y: -10}, {X: 1, Y: 10}, {X: -1, Y: 10}}
	assert.False(t, PolygonsIntersect(horizontal, vertical))
}

func TestQuadsOverlap(t *testing.T) {
	a := Quad(square(0, 0, 10))

	assert.True(t, QuadsOverlap(a, Quad(square(5, 5, 10))))
	assert.True(t, QuadsOverlap(a, Quad(square(10, 0, 10))), "touching edges overlap")
	assert.False(t, QuadsOverlap(a, Quad(square(11, 0, 10))))

	// A diamond whose bounding box overlaps a but whose body does not.
	diamond := Quad{{X: 16, Y: 10}, {X: 22, Y: 16}, {X: 16, Y: 22}, {X: 10, Y: 16}}
	assert.False(t, QuadsOverlap(a, diamond))
}

func TestQuadExpand(t *testing.T) {
	q := Quad(square(0, 0, 10)).Expand(2)

	assert.True(t, AlmostEqual(q[0], Vec(-2, -2), 1e-9))
	assert.True(t, AlmostEqual(q[2], Vec(12, 12), 1e-9))
}

func TestQuadExpand_ContainsPaddedPoints(t *testing.T) {
	poly := Polygon{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 10, Y: 3}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	box := Quad(BoundingBox(poly)).Expand(3)
	inflated := Polygon(box.Expand(1e-9).Points())

	for i, v := range PadOffset(poly, 3) {
		assert.True(t, PointInPolygon(v, inflated), "padded vertex %d escapes the padded box", i)
	}
}

func TestRectsOverlap(t *testing.T) {
	a := geom.Rect{Min: Vec(0, 0), Max: Vec(10, 10)}

	assert.True(t, RectsOverlap(a, geom.Rect{Min: Vec(5, 5), Max: Vec(15, 15)}))
	assert.False(t, RectsOverlap(a, geom.Rect{Min: Vec(10, 0), Max: Vec(20, 10)}), "touching")
	assert.False(t, RectsOverlap(a, geom.Rect{Min: Vec(20, 20), Max: Vec(30, 30)}))
}

func TestAreaAndCentroid(t *testing.T) {
	poly := square(0, 0, 4)
	assert.InDelta(t, 16.0, Area(poly), 1e-12)
	assert.InDelta(t, 16.0, Area(reversed(poly)), 1e-12)
	assert.Greater(t, SignedArea(poly), 0.0)
	assert.Less(t, SignedArea(reversed(poly)), 0.0)
	assert.Equal(t, Vec(2, 2), Centroid(poly))
}

func TestResample_EvenSpacing(t *testing.T) {
	poly := square(0, 0, 10)
	points := Resample(poly, 5, 4)

	require.Len(t, points, 8)
	for i := range points {
		d := Distance(points[i], points[(i+1)%len(points)])
		assert.InDelta(t, 5.0, d, 1e-9)
	}
}

func TestResample_EnforcesMinimum(t *testing.T) {
	points := Resample(square(0, 0, 1), 7, 10)
	assert.Len(t, points, 10)
}

func TestMatrix_FromTransformRotatesAboutAnchor(t *testing.T) {
	anchor := Vec(5, 5)
	m := FromTransform(Vec(100, 50), 2, math.Pi/2, anchor)

	// The anchor lands on the translation.
	assert.True(t, AlmostEqual(m.TransformPoint(anchor), Vec(100, 50), 1e-9))

	// (10,5) is 5 right of the anchor; scaled x2 and rotated 90 degrees it is 10 below.
	assert.True(t, AlmostEqual(m.TransformPoint(Vec(10, 5)), Vec(100, 60), 1e-9))
}

func TestMatrix_MultiplyMatchesComposition(t *testing.T) {
	anchor := Vec(3, 4)
	direct := FromTransform(Vec(7, -2), 1.5, 0.3, anchor)
	composed := Translate(7, -2).
		Multiply(RotateMatrix(0.3)).
		Multiply(Scale(1.5)).
		Multiply(Translate(-anchor.X, -anchor.Y))

	for i := range direct {
		assert.InDelta(t, composed[i], direct[i], 1e-12)
	}
	assert.True(t, Identity().IsIdentity())
}

func TestPolygonValid(t *testing.T) {
	assert.True(t, square(0, 0, 1).Valid())
	assert.False(t, Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}}.Valid())
	assert.False(t, Polygon{{X: 0, Y: 0}, {X: math.NaN(), Y: 1}, {X: 1, Y: 0}}.Valid())
}
