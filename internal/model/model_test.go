package model

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TilePack/internal/geometry"
)

func unitSquare() geometry.Polygon {
	return geometry.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 500.0, cfg.Size.X)
	assert.Equal(t, 1, cfg.Start.Count)
	assert.Equal(t, "majorThird", cfg.Scale.Ratio)
	assert.Equal(t, "triple", cfg.Scale.Frequency)
	assert.Equal(t, 7, cfg.Scale.MaxLevels)
	assert.Equal(t, 300, cfg.StopConditions.Tiles)
	assert.Equal(t, SpiralArchimedean, cfg.Spiral)
	assert.True(t, cfg.TwoPass)
}

func TestConfig_StartSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = Size{X: 400, Y: 800}
	cfg.Start.Size = 10

	assert.Equal(t, 800.0, cfg.LongestSide())
	assert.InDelta(t, 80.0, cfg.StartSize(), 1e-9)
}

func TestConfig_Multiplier(t *testing.T) {
	cfg := DefaultConfig()
	m, err := cfg.Multiplier()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, m, 1e-12)

	cfg.Scale.Ratio = "0.9"
	m, err = cfg.Multiplier()
	require.NoError(t, err)
	assert.Equal(t, 0.9, m)
}

func TestConfig_ValidateCollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start.Count = 0
	cfg.Tile.Wiggle = 150
	cfg.Scale.Ratio = "nope"
	cfg.Scale.Frequency = "sometimes"
	cfg.Spiral = "hexagonal"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	msg := err.Error()
	for _, want := range []string{"start count", "wiggle", `"nope"`, `"sometimes"`, `"hexagonal"`} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}
}

func TestConfig_DegenerateCanvasIsAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = Size{X: 0, Y: -10}
	assert.NoError(t, cfg.Validate())
}

func TestConfig_NonFiniteCanvasIsInvalid(t *testing.T) {
	for _, size := range []Size{{X: math.Inf(1), Y: 500}, {X: 500, Y: math.Inf(-1)}, {X: math.NaN(), Y: 500}} {
		cfg := DefaultConfig()
		cfg.Size = size
		err := cfg.Validate()
		require.Error(t, err, "size %v", size)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
		assert.Contains(t, err.Error(), "canvas size must be finite")
	}
}

func TestNewOutline(t *testing.T) {
	o := NewOutline("square", unitSquare())

	assert.Len(t, o.ID, 8)
	assert.Equal(t, "square", o.Name)
	require.Len(t, o.Paths, 1)

	w, h := o.Size()
	assert.Equal(t, 1.0, w)
	assert.Equal(t, 1.0, h)
}

func TestOutline_PointsSpansAllPaths(t *testing.T) {
	o := NewOutline("pair", unitSquare(), unitSquare().Translate(geometry.Vec(3, 0)))
	assert.Len(t, o.Points(), 8)

	w, h := o.Size()
	assert.Equal(t, 4.0, w)
	assert.Equal(t, 1.0, h)
}

func TestRunID(t *testing.T) {
	id := NewRunID()
	assert.True(t, strings.HasPrefix(id, "run_"))
	assert.NoError(t, ValidateRunID(id))

	assert.Error(t, ValidateRunID("not-an-id"))
}

func TestResult_CoverageAndArea(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = Size{X: 10, Y: 10}

	square := geometry.Polygon{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 5}}
	r := Result{
		Config: cfg,
		Placements: []Placement{
			{Order: 0, Polygons: []geometry.Polygon{square}},
			{Order: 1, Polygons: []geometry.Polygon{square}, Highlight: true},
		},
	}

	assert.InDelta(t, 50.0, r.PlacedArea(), 1e-9)
	assert.InDelta(t, 50.0, r.Coverage(), 1e-9)

	h, ok := r.Highlighted()
	assert.True(t, ok)
	assert.Equal(t, 1, h.Order)
}

func TestResult_CoverageDegenerateCanvas(t *testing.T) {
	r := Result{Config: Config{Size: Size{X: 0, Y: 100}}}
	assert.Equal(t, 0.0, r.Coverage())

	_, ok := r.Highlighted()
	assert.False(t, ok)
}
