package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/scale"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Outline is a named placeable shape made of one or more closed sub-paths in
// local coordinates. Letters such as "i" or "j" are one outline with two paths.
type Outline struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Paths []geometry.Polygon `json:"paths"`
}

func NewOutline(name string, paths ...geometry.Polygon) Outline {
	return Outline{
		ID:    uuid.New().String()[:8],
		Name:  name,
		Paths: paths,
	}
}

// Points returns every vertex of every path.
func (o Outline) Points() []geometry.Vector {
	var pts []geometry.Vector
	for _, p := range o.Paths {
		pts = append(pts, p...)
	}
	return pts
}

// Size returns the width and height of the outline's bounding box.
func (o Outline) Size() (w, h float64) {
	r := geometry.Bounds(o.Points())
	return r.Width(), r.Height()
}

// Spiral names.
const (
	SpiralArchimedean = "archimedean"
	SpiralRectangular = "rectangular"
)

// SpiralNames lists the supported spiral search strategies.
var SpiralNames = []string{SpiralArchimedean, SpiralRectangular}

// Size is the canvas size in canvas units.
type Size struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StartConfig controls the first scale level.
type StartConfig struct {
	Count int     `json:"count"` // Shapes placed at level 0 (input to the growth function)
	Size  float64 `json:"size"`  // Initial shape size as a percentage of the longest canvas side
}

// ScaleConfig controls how shape sizes change between levels.
type ScaleConfig struct {
	Ratio           string `json:"ratio"`            // Named ratio (e.g. "majorThird") or a numeric multiplier
	Frequency       string `json:"frequency"`        // Growth function name (e.g. "triple")
	StrictFrequency bool   `json:"strict_frequency"` // Never advance the level early on repeated failure
	MaxLevels       int    `json:"max_levels"`
}

// TileConfig controls per-shape randomisation and collision margins.
type TileConfig struct {
	Padding      float64 `json:"padding"`       // Collision margin around each outline
	Rotation     float64 `json:"rotation"`      // Rotation increment in degrees; 0 disables rotation
	Wiggle       float64 `json:"wiggle"`        // Random jitter of size and rotation, in percent
	PointSpacing float64 `json:"point_spacing"` // Distance between sampled collision points
}

// Colours are used by the renderers.
type Colours struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Highlight  string `json:"highlight"`
}

// StopConditions end a run when either limit is reached.
type StopConditions struct {
	Tiles int     `json:"tiles"`
	Time  float64 `json:"time"` // seconds
}

// Config holds every option of a packing run.
type Config struct {
	Size           Size           `json:"size"`
	Start          StartConfig    `json:"start"`
	Scale          ScaleConfig    `json:"scale"`
	Tile           TileConfig     `json:"tile"`
	Colours        Colours        `json:"colours"`
	StopConditions StopConditions `json:"stop_conditions"`
	Spiral         string         `json:"spiral"`
	TwoPass        bool           `json:"two_pass"`   // Grow placed shapes until they touch after the run
	Debug          bool           `json:"debug"`      // Verbose engine logging
	Resolution     float64        `json:"resolution"` // Collision grid cell size; 0 uses the default
	Seed           int64          `json:"seed"`       // Random seed; 0 picks one from the clock
}

func DefaultConfig() Config {
	return Config{
		Size:  Size{X: 500, Y: 500},
		Start: StartConfig{Count: 1, Size: 66},
		Scale: ScaleConfig{
			Ratio:           "majorThird",
			Frequency:       "triple",
			StrictFrequency: false,
			MaxLevels:       7,
		},
		Tile: TileConfig{
			Padding:      5,
			Rotation:     15,
			Wiggle:       5,
			PointSpacing: 7,
		},
		Colours: Colours{
			Background: "#ffffff",
			Foreground: "#ffffff",
			Highlight:  "#ef7d00",
		},
		StopConditions: StopConditions{Tiles: 300, Time: 60},
		Spiral:         SpiralArchimedean,
		TwoPass:        true,
		Debug:          false,
		Resolution:     10,
	}
}

// LongestSide returns the larger canvas dimension.
func (c Config) LongestSide() float64 {
	return math.Max(c.Size.X, c.Size.Y)
}

// StartSize returns the nominal shape size at scale level 0.
func (c Config) StartSize() float64 {
	return c.Start.Size / 100 * c.LongestSide()
}

// Multiplier resolves Scale.Ratio into the per-level size multiplier.
func (c Config) Multiplier() (float64, error) {
	return scale.ParseMultiplier(c.Scale.Ratio)
}

// Validate reports every problem with the config. A zero or negative canvas
// is not an error: the run simply places nothing.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(finite(c.Size.X) && finite(c.Size.Y), "canvas size must be finite, got %gx%g", c.Size.X, c.Size.Y)
	check(c.Start.Count >= 1, "start count must be at least 1, got %d", c.Start.Count)
	check(c.Start.Size > 0, "start size must be positive, got %g", c.Start.Size)
	check(c.Scale.MaxLevels >= 0, "max levels must not be negative, got %d", c.Scale.MaxLevels)
	check(c.Tile.Padding >= 0, "padding must not be negative, got %g", c.Tile.Padding)
	check(c.Tile.Rotation >= 0, "rotation increment must not be negative, got %g", c.Tile.Rotation)
	check(c.Tile.Wiggle >= 0 && c.Tile.Wiggle <= 100, "wiggle must be between 0 and 100, got %g", c.Tile.Wiggle)
	check(c.Tile.PointSpacing >= 0, "point spacing must not be negative, got %g", c.Tile.PointSpacing)
	check(c.StopConditions.Tiles >= 1, "tile limit must be at least 1, got %d", c.StopConditions.Tiles)
	check(c.StopConditions.Time > 0, "time limit must be positive, got %g", c.StopConditions.Time)
	check(c.Resolution >= 0, "resolution must not be negative, got %g", c.Resolution)

	if _, err := c.Multiplier(); err != nil {
		errs = append(errs, err)
	}
	if _, err := scale.GrowthByName(c.Scale.Frequency); err != nil {
		errs = append(errs, err)
	}
	if !validSpiral(c.Spiral) {
		errs = append(errs, fmt.Errorf("unknown spiral %q", c.Spiral))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validSpiral(name string) bool {
	for _, s := range SpiralNames {
		if s == name {
			return true
		}
	}
	return false
}
