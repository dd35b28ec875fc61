// Package collision provides the uniform grid used to find placed shapes that
// may overlap a candidate.
package collision

import (
	"math"
	"sort"

	"github.com/jbeda/geom"

	"github.com/piwi3910/TilePack/internal/shape"
)

// DefaultResolution is the cell side length used when none is given.
const DefaultResolution = 10.0

// MaxCells bounds the grid size. Larger canvases get a coarser resolution.
const MaxCells = 1 << 20

// Index is a dense grid of cells, each holding the ids of the shapes whose
// client rectangle covers it. Points outside the canvas map to the nearest
// edge cell, so shapes hanging off the canvas are still indexed.
type Index struct {
	cols       int
	rows       int
	resolution float64
	cells      [][]int // 1D array: index = row*cols + col
}

// New creates an index for a width x height canvas. The grid is at least 1x1,
// even for a degenerate canvas, and never holds more than MaxCells cells.
func New(width, height, resolution float64) *Index {
	if resolution <= 0 || math.IsNaN(resolution) {
		resolution = DefaultResolution
	}
	cols := cellCount(width, resolution)
	rows := cellCount(height, resolution)
	for cols*rows > MaxCells {
		resolution *= 2
		cols = cellCount(width, resolution)
		rows = cellCount(height, resolution)
	}
	return &Index{
		cols:       cols,
		rows:       rows,
		resolution: resolution,
		cells:      make([][]int, cols*rows),
	}
}

func cellCount(length, resolution float64) int {
	n := math.Floor(length / resolution)
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// Size returns the grid dimensions in cells.
func (ix *Index) Size() (cols, rows int) {
	return ix.cols, ix.rows
}

func (ix *Index) Resolution() float64 {
	return ix.resolution
}

// CellOf maps a canvas point to a cell, clamped to the grid.
func (ix *Index) CellOf(p geom.Coord) (col, row int) {
	return clamp(p.X/ix.resolution, ix.cols-1), clamp(p.Y/ix.resolution, ix.rows-1)
}

func clamp(v float64, last int) int {
	f := math.Floor(v)
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > float64(last):
		return last
	}
	return int(f)
}

// span returns the inclusive cell range covered by r.
func (ix *Index) span(r geom.Rect) (c0, r0, c1, r1 int) {
	c0, r0 = ix.CellOf(r.Min)
	c1, r1 = ix.CellOf(r.Max)
	return
}

// Add inserts id into every cell covered by r.
func (ix *Index) Add(id int, r geom.Rect) {
	c0, r0, c1, r1 := ix.span(r)
	for row := r0; row <= r1; row++ {
		rowOffset := row * ix.cols
		for col := c0; col <= c1; col++ {
			cell := &ix.cells[rowOffset+col]
			if !contains(*cell, id) {
				*cell = append(*cell, id)
			}
		}
	}
}

// AddShape indexes a shape under its current client rectangle.
func (ix *Index) AddShape(s *shape.Shape) {
	ix.Add(s.ID(), s.Bounds())
}

// Remove deletes id from every cell covered by r.
func (ix *Index) Remove(id int, r geom.Rect) {
	c0, r0, c1, r1 := ix.span(r)
	for row := r0; row <= r1; row++ {
		rowOffset := row * ix.cols
		for col := c0; col <= c1; col++ {
			cell := &ix.cells[rowOffset+col]
			for i, v := range *cell {
				if v == id {
					// Swap-remove; order inside a cell is irrelevant.
					last := len(*cell) - 1
					(*cell)[i] = (*cell)[last]
					*cell = (*cell)[:last]
					break
				}
			}
		}
	}
}

// OverlapCandidates returns the sorted ids registered in any cell covered by
// r, except those listed in exclude. Every shape whose indexed rectangle
// overlaps r is returned; some returned shapes may not overlap at all.
func (ix *Index) OverlapCandidates(r geom.Rect, exclude ...int) []int {
	c0, r0, c1, r1 := ix.span(r)
	seen := make(map[int]struct{})
	for row := r0; row <= r1; row++ {
		rowOffset := row * ix.cols
		for col := c0; col <= c1; col++ {
			for _, id := range ix.cells[rowOffset+col] {
				seen[id] = struct{}{}
			}
		}
	}
	for _, id := range exclude {
		delete(seen, id)
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Candidates returns the ids that may overlap s, excluding s itself.
func (ix *Index) Candidates(s *shape.Shape) []int {
	return ix.OverlapCandidates(s.Bounds(), s.ID())
}

// Stats summarises grid occupancy.
type Stats struct {
	Cells       int
	Occupied    int
	Entries     int
	MaxPerCell  int
	DistinctIDs int
}

func (ix *Index) Stats() Stats {
	st := Stats{Cells: len(ix.cells)}
	ids := make(map[int]struct{})
	for _, cell := range ix.cells {
		if len(cell) == 0 {
			continue
		}
		st.Occupied++
		st.Entries += len(cell)
		if len(cell) > st.MaxPerCell {
			st.MaxPerCell = len(cell)
		}
		for _, id := range cell {
			ids[id] = struct{}{}
		}
	}
	st.DistinctIDs = len(ids)
	return st
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
