package shape

import (
	"math"

	"github.com/piwi3910/TilePack/internal/geometry"
)

// Transform places a shape on the canvas. Scale and rotation are applied
// about the shape's local centre, and Translation is where that centre ends up.
type Transform struct {
	Scale       float64         `json:"scale"`
	Rotation    float64         `json:"rotation"` // radians
	Translation geometry.Vector `json:"translation"`
}

// IdentityTransform leaves the outline where it is defined, centred on its
// own local centre at the origin.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// Matrix returns the affine matrix for a shape whose local centre is centre.
func (t Transform) Matrix(centre geometry.Vector) geometry.Matrix2D {
	return geometry.FromTransform(t.Translation, t.Scale, t.Rotation, centre)
}

func (t Transform) WithScale(s float64) Transform {
	t.Scale = s
	return t
}

func (t Transform) WithRotation(radians float64) Transform {
	t.Rotation = radians
	return t
}

func (t Transform) WithTranslation(v geometry.Vector) Transform {
	t.Translation = v
	return t
}

// Translated moves the transform by delta.
func (t Transform) Translated(delta geometry.Vector) Transform {
	t.Translation = t.Translation.Plus(delta)
	return t
}

// Scaled multiplies the current scale by factor.
func (t Transform) Scaled(factor float64) Transform {
	t.Scale *= factor
	return t
}

// Builder accumulates a Transform that is applied to a shape in one go.
//
//	t := shape.NewBuilder().Scale(2).RotateDegrees(45).Translate(origin).Build()
//	s.Apply(t)
type Builder struct {
	t Transform
}

func NewBuilder() Builder {
	return Builder{t: IdentityTransform()}
}

func (b Builder) Scale(s float64) Builder {
	b.t.Scale = s
	return b
}

func (b Builder) Rotate(radians float64) Builder {
	b.t.Rotation = radians
	return b
}

func (b Builder) RotateDegrees(degrees float64) Builder {
	return b.Rotate(degrees * math.Pi / 180)
}

func (b Builder) Translate(v geometry.Vector) Builder {
	b.t.Translation = v
	return b
}

func (b Builder) Build() Transform {
	return b.t
}
