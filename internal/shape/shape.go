// Package shape implements the placeable unit of a packing run: an outline
// made of one or more polygons, a Transform, and the derived geometry used for
// collision tests.
package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/jbeda/geom"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
)

var (
	ErrEmptyOutline      = errors.New("outline has no paths")
	ErrDegenerateOutline = errors.New("degenerate outline")
)

// Options control how the collision geometry of a shape is derived.
type Options struct {
	Padding      float64 // Outward collision margin in canvas units
	PointSpacing float64 // Canvas-space distance between sampled points; 0 uses the raw vertices
	MinPoints    int     // Minimum samples per path so small paths keep coverage
}

func DefaultOptions() Options {
	return Options{
		Padding:      5,
		PointSpacing: 7,
		MinPoints:    10,
	}
}

// Shape is an outline placed on the canvas. Derived geometry is cached and
// recomputed lazily after any transform change.
type Shape struct {
	id      int
	outline model.Outline
	opts    Options

	local  geom.Rect
	centre geometry.Vector

	transform Transform

	// Highlight marks the shape for the highlight colour when rendered.
	Highlight bool

	samples   Cached[[]geometry.Polygon] // local coordinates; depends on scale only
	quad      Cached[geometry.Quad]
	client    Cached[[4]geometry.Vector]
	collision Cached[[]geometry.Polygon]
	polygons  Cached[[]geometry.Polygon]
}

// New builds a shape from an outline. Empty outlines, paths with fewer than
// three finite points and outlines with no extent are rejected.
func New(id int, outline model.Outline, opts Options) (*Shape, error) {
	if len(outline.Paths) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyOutline, outline.Name)
	}
	for i, p := range outline.Paths {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %q path %d", ErrDegenerateOutline, outline.Name, i)
		}
	}

	local := geometry.Bounds(outline.Points())
	if math.Max(local.Width(), local.Height()) < geometry.Epsilon {
		return nil, fmt.Errorf("%w: %q has no extent", ErrDegenerateOutline, outline.Name)
	}

	if opts.MinPoints < 3 {
		opts.MinPoints = 3
	}

	return &Shape{
		id:      id,
		outline: outline,
		opts:    opts,
		local:   local,
		centre: geometry.Vec(
			local.Min.X+local.Width()/2,
			local.Min.Y+local.Height()/2,
		),
		transform: IdentityTransform(),
	}, nil
}

func (s *Shape) ID() int { return s.id }
func (s *Shape) Name() string { return s.outline.Name }
func (s *Shape) Outline() model.Outline { return s.outline }
func (s *Shape) Options() Options { return s.opts }
func (s *Shape) Transform() Transform { return s.transform }
func (s *Shape) Centre() geometry.Vector { return s.centre }
func (s *Shape) Width() float64 { return s.local.Width() }
func (s *Shape) Height() float64 { return s.local.Height() }
func (s *Shape) LongestSide() float64 { return math.Max(s.Width(), s.Height()) }
func (s *Shape) Position() geometry.Vector { return s.transform.Translation }

// Apply replaces the whole transform.
func (s *Shape) Apply(t Transform) {
	scaleChanged := t.Scale != s.transform.Scale
	s.transform = t
	s.invalidate(scaleChanged)
}

func (s *Shape) SetScale(scale float64) {
	s.Apply(s.transform.WithScale(scale))
}

func (s *Shape) SetRotation(radians float64) {
	s.Apply(s.transform.WithRotation(radians))
}

func (s *Shape) SetTranslation(v geometry.Vector) {
	s.Apply(s.transform.WithTranslation(v))
}

func (s *Shape) TranslateBy(delta geometry.Vector) {
	s.Apply(s.transform.Translated(delta))
}

// ScaleBy multiplies the current scale by factor.
func (s *Shape) ScaleBy(factor float64) {
	s.Apply(s.transform.Scaled(factor))
}

// ScaleFor returns the scale at which the longest local side equals length.
func (s *Shape) ScaleFor(length float64) float64 {
	return length / s.LongestSide()
}

// ScaleTo scales the shape so its longest side equals length.
func (s *Shape) ScaleTo(length float64) {
	s.SetScale(s.ScaleFor(length))
}

func (s *Shape) invalidate(scaleChanged bool) {
	if scaleChanged {
		s.samples.Invalidate()
	}
	s.quad.Invalidate()
	s.client.Invalidate()
	s.collision.Invalidate()
	s.polygons.Invalidate()
}

func (s *Shape) matrix() geometry.Matrix2D {
	return s.transform.Matrix(s.centre)
}

// BoundingQuad is the oriented bounding box of the transformed outline,
// grown outward by the padding. Every collision polygon lies inside it.
func (s *Shape) BoundingQuad() geometry.Quad {
	return s.quad.Get(s.computeQuad)
}

func (s *Shape) computeQuad() geometry.Quad {
	m := s.matrix()
	var q geometry.Quad
	for i, c := range geometry.RectCorners(s.local) {
		q[i] = m.TransformPoint(c)
	}
	return q.Expand(s.opts.Padding)
}

// ClientRect is the axis-aligned rectangle around the bounding quad, ordered
// top-left, top-right, bottom-right, bottom-left.
func (s *Shape) ClientRect() [4]geometry.Vector {
	return s.client.Get(func() [4]geometry.Vector {
		q := s.BoundingQuad()
		return geometry.BoundingBox(q.Points())
	})
}

// Bounds returns ClientRect as a rectangle.
func (s *Shape) Bounds() geom.Rect {
	c := s.ClientRect()
	return geom.Rect{Min: c[0], Max: c[2]}
}

// samplePoints resamples each local path so that, at the current scale,
// neighbouring points are roughly PointSpacing apart.
func (s *Shape) samplePoints() []geometry.Polygon {
	return s.samples.Get(func() []geometry.Polygon {
		out := make([]geometry.Polygon, len(s.outline.Paths))
		scale := math.Abs(s.transform.Scale)
		for i, p := range s.outline.Paths {
			if s.opts.PointSpacing <= 0 || scale < geometry.Epsilon {
				out[i] = p
				continue
			}
			out[i] = geometry.Resample(p, s.opts.PointSpacing/scale, s.opts.MinPoints)
		}
		return out
	})
}

// CollisionPolygons returns the sampled outline paths in canvas space, padded
// outward. The returned slices must not be modified.
func (s *Shape) CollisionPolygons() []geometry.Polygon {
	return s.collision.Get(func() []geometry.Polygon {
		m := s.matrix()
		samples := s.samplePoints()
		out := make([]geometry.Polygon, len(samples))
		for i, p := range samples {
			out[i] = geometry.PadOffset(m.TransformPolygon(p), s.opts.Padding)
		}
		return out
	})
}

// Polygons returns the outline paths in canvas space without padding.
func (s *Shape) Polygons() []geometry.Polygon {
	return s.polygons.Get(func() []geometry.Polygon {
		m := s.matrix()
		out := make([]geometry.Polygon, len(s.outline.Paths))
		for i, p := range s.outline.Paths {
			out[i] = m.TransformPolygon(p)
		}
		return out
	})
}

// Intersects reports whether the padded outlines of two shapes overlap. The
// bounding quads are compared first; only if they overlap are the collision
// polygons tested pairwise.
func (s *Shape) Intersects(other *Shape) bool {
	if !geometry.QuadsOverlap(s.BoundingQuad(), other.BoundingQuad()) {
		return false
	}
	for _, a := range s.CollisionPolygons() {
		for _, b := range other.CollisionPolygons() {
			if geometry.PolygonsIntersect(a, b) {
				return true
			}
		}
	}
	return false
}

// ContainsPoint reports whether p lies inside any padded collision polygon.
func (s *Shape) ContainsPoint(p geometry.Vector) bool {
	r := s.Bounds()
	if p.X < r.Min.X || p.X > r.Max.X || p.Y < r.Min.Y || p.Y > r.Max.Y {
		return false
	}
	for _, poly := range s.CollisionPolygons() {
		if geometry.PointInPolygon(p, poly) {
			return true
		}
	}
	return false
}

// InBounds reports whether the client rectangle overlaps the boundary
// rectangle (corners ordered as in ClientRect). Touching does not count, and a
// boundary with no area contains nothing.
func (s *Shape) InBounds(boundary [4]geometry.Vector) bool {
	if boundary[1].X <= boundary[0].X || boundary[3].Y <= boundary[0].Y {
		return false
	}
	c := s.ClientRect()
	return c[0].X < boundary[1].X &&
		c[1].X > boundary[0].X &&
		c[0].Y < boundary[3].Y &&
		c[3].Y > boundary[0].Y
}

// Within reports whether the client rectangle lies entirely inside boundary.
func (s *Shape) Within(boundary [4]geometry.Vector) bool {
	c := s.ClientRect()
	return c[0].X >= boundary[0].X &&
		c[1].X <= boundary[1].X &&
		c[0].Y >= boundary[0].Y &&
		c[3].Y <= boundary[3].Y
}

// Record converts the shape into a placement record.
func (s *Shape) Record(order int) model.Placement {
	return model.Placement{
		Order:       order,
		OutlineID:   s.outline.ID,
		OutlineName: s.outline.Name,
		Scale:       s.transform.Scale,
		Rotation:    s.transform.Rotation,
		Translation: s.transform.Translation,
		Polygons:    s.Polygons(),
		Highlight:   s.Highlight,
	}
}
