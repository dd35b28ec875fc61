package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
)

// Spiral maps a search step to an offset from the run origin. Spirals are
// pure: the same step always gives the same offset.
type Spiral func(pos int) geometry.Vector

// aspect returns width/height, or 1 when the canvas has no usable height.
func aspect(width, height float64) float64 {
	e := width / height
	if height <= 0 || width <= 0 || math.IsNaN(e) || math.IsInf(e, 0) {
		return 1
	}
	return e
}

// Archimedean spirals outward with radius growing linearly in the step,
// stretched horizontally by the canvas aspect ratio.
func Archimedean(width, height float64) Spiral {
	e := aspect(width, height)
	return func(pos int) geometry.Vector {
		t := float64(pos) * 0.1
		return geometry.Vector{X: e * t * math.Cos(t), Y: t * math.Sin(t)}
	}
}

// Rectangular walks a square spiral ring by ring, one grid step per unit of
// pos, with a vertical step of 10 and a horizontal step scaled by the canvas
// aspect ratio.
func Rectangular(width, height float64) Spiral {
	const dy = 10.0
	dx := dy * aspect(width, height)
	return func(pos int) geometry.Vector {
		if pos <= 0 {
			return geometry.Vector{}
		}
		p := float64(pos)
		m := math.Floor((math.Sqrt(p) + 1) / 2)
		k := p - 4*m*(m-1)

		var x, y float64
		switch {
		case k <= 2*m:
			x, y = m, k-m
		case k <= 4*m:
			x, y = 3*m-k, m
		case k <= 6*m:
			x, y = -m, 5*m-k
		default:
			x, y = k-7*m, -m
		}
		return geometry.Vector{X: x * dx, Y: y * dy}
	}
}

// SpiralByName returns the named spiral for a canvas.
func SpiralByName(name string, width, height float64) (Spiral, error) {
	switch name {
	case model.SpiralArchimedean:
		return Archimedean(width, height), nil
	case model.SpiralRectangular:
		return Rectangular(width, height), nil
	}
	return nil, fmt.Errorf("unknown spiral %q", name)
}
