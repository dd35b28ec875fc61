package collision

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jbeda/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
	"github.com/piwi3910/TilePack/internal/shape"
)

func rect(x0, y0, x1, y1 float64) geom.Rect {
	return geom.Rect{Min: geometry.Vec(x0, y0), Max: geometry.Vec(x1, y1)}
}

func TestNew_GridSize(t *testing.T) {
	ix := New(500, 300, 10)
	cols, rows := ix.Size()
	assert.Equal(t, 50, cols)
	assert.Equal(t, 30, rows)
	assert.Equal(t, 10.0, ix.Resolution())
}

func TestNew_DefaultResolution(t *testing.T) {
	ix := New(100, 100, 0)
	assert.Equal(t, DefaultResolution, ix.Resolution())
}

func TestNew_DegenerateCanvasIsOneCell(t *testing.T) {
	for _, size := range [][2]float64{{0, 0}, {-50, 20}, {5, 5}, {math.NaN(), 10}} {
		ix := New(size[0], size[1], 10)
		cols, rows := ix.Size()
		assert.GreaterOrEqual(t, cols, 1)
		assert.GreaterOrEqual(t, rows, 1)
	}

	ix := New(0, 0, 10)
	ix.Add(1, rect(-100, -100, 100, 100))
	assert.Equal(t, []int{1}, ix.OverlapCandidates(rect(5, 5, 6, 6)))
}

func TestNew_LargeCanvasIsCoarsened(t *testing.T) {
	ix := New(1e6, 1e6, 10)
	cols, rows := ix.Size()
	assert.LessOrEqual(t, cols*rows, MaxCells)
	assert.Greater(t, ix.Resolution(), 10.0)

	// The coarser grid still covers the whole canvas
	c, r := ix.CellOf(geom.Coord{X: 1e6 - 1, Y: 1e6 - 1})
	assert.Equal(t, cols-1, c)
	assert.Equal(t, rows-1, r)
}

func TestNew_InfiniteCanvas(t *testing.T) {
	for _, size := range [][2]float64{{math.Inf(1), 500}, {500, math.Inf(-1)}, {math.Inf(1), math.Inf(1)}} {
		ix := New(size[0], size[1], 10)
		cols, rows := ix.Size()
		assert.LessOrEqual(t, cols*rows, MaxCells)
		assert.GreaterOrEqual(t, cols, 1)
		assert.GreaterOrEqual(t, rows, 1)
	}
}

func TestCellOf_Clamps(t *testing.T) {
	ix := New(100, 50, 10)

	col, row := ix.CellOf(geometry.Vec(25, 35))
	assert.Equal(t, 2, col)
	assert.Equal(t, 3, row)

	col, row = ix.CellOf(geometry.Vec(-40, -1))
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)

	col, row = ix.CellOf(geometry.Vec(1000, 1000))
	assert.Equal(t, 9, col)
	assert.Equal(t, 4, row)
}

func TestOverlapCandidates(t *testing.T) {
	ix := New(100, 100, 10)
	ix.Add(1, rect(0, 0, 15, 15))
	ix.Add(2, rect(50, 50, 60, 60))
	ix.Add(3, rect(12, 12, 30, 30))

	assert.Equal(t, []int{1, 3}, ix.OverlapCandidates(rect(10, 10, 12, 12)))
	assert.Equal(t, []int{2}, ix.OverlapCandidates(rect(55, 55, 56, 56)))
	assert.Empty(t, ix.OverlapCandidates(rect(80, 0, 90, 5)))
	assert.Equal(t, []int{3}, ix.OverlapCandidates(rect(10, 10, 12, 12), 1))
}

func TestAdd_IsIdempotent(t *testing.T) {
	ix := New(100, 100, 10)
	ix.Add(1, rect(0, 0, 5, 5))
	ix.Add(1, rect(0, 0, 5, 5))

	st := ix.Stats()
	assert.Equal(t, 1, st.Occupied)
	assert.Equal(t, 1, st.Entries)
}

func TestRemove(t *testing.T) {
	ix := New(100, 100, 10)
	ix.Add(1, rect(0, 0, 25, 25))
	ix.Add(2, rect(0, 0, 5, 5))

	ix.Remove(1, rect(0, 0, 25, 25))
	assert.Equal(t, []int{2}, ix.OverlapCandidates(rect(0, 0, 100, 100)))

	st := ix.Stats()
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, 1, st.DistinctIDs)
}

func TestStats(t *testing.T) {
	ix := New(100, 100, 10)
	ix.Add(1, rect(0, 0, 15, 5))
	ix.Add(2, rect(0, 0, 5, 5))

	st := ix.Stats()
	assert.Equal(t, 100, st.Cells)
	assert.Equal(t, 2, st.Occupied)
	assert.Equal(t, 3, st.Entries)
	assert.Equal(t, 2, st.MaxPerCell)
	assert.Equal(t, 2, st.DistinctIDs)
}

func TestCandidates_ExcludesSelf(t *testing.T) {
	outline := model.NewOutline("square", geometry.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}})

	a, err := shape.New(0, outline, shape.DefaultOptions())
	require.NoError(t, err)
	a.Apply(shape.NewBuilder().Scale(20).Translate(geometry.Vec(50, 50)).Build())

	b, err := shape.New(1, outline, shape.DefaultOptions())
	require.NoError(t, err)
	b.Apply(shape.NewBuilder().Scale(20).Translate(geometry.Vec(60, 50)).Build())

	ix := New(200, 200, 10)
	ix.AddShape(a)
	ix.AddShape(b)

	assert.Equal(t, []int{1}, ix.Candidates(a))
	assert.Equal(t, []int{0}, ix.Candidates(b))
}

// Any two shapes whose collision polygons intersect must find each other.
func TestIndex_Soundness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	outline := model.NewOutline("tri", geometry.Polygon{{X: 0, Y: 0}, {X: 4, Y: 1}, {X: 1, Y: 5}})

	ix := New(300, 300, 10)
	var shapes []*shape.Shape
	for i := 0; i < 60; i++ {
		s, err := shape.New(i, outline, shape.Options{Padding: 2, PointSpacing: 4, MinPoints: 10})
		require.NoError(t, err)
		s.Apply(shape.NewBuilder().
			Scale(3 + rng.Float64()*10).
			Rotate(rng.Float64() * 2 * math.Pi).
			Translate(geometry.Vec(rng.Float64()*340-20, rng.Float64()*340-20)).
			Build())
		ix.AddShape(s)
		shapes = append(shapes, s)
	}

	overlaps := 0
	for _, a := range shapes {
		candidates := ix.Candidates(a)
		for _, b := range shapes {
			if a == b || !a.Intersects(b) {
				continue
			}
			overlaps++
			assert.Contains(t, candidates, b.ID(), "shape %d misses overlapping shape %d", a.ID(), b.ID())
		}
	}
	assert.Greater(t, overlaps, 0, "the fixture should contain overlapping shapes")
}
