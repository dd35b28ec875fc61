package gcode

import (
	"strings"
	"testing"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
)

// newTestSettings returns Settings with predictable output.
func newTestSettings() Settings {
	s := DefaultSettings()
	s.Profile = "Generic"
	s.Scale = 2
	s.FeedRate = 1000
	s.PlungeRate = 300
	s.SafeZ = 5
	s.DrawZ = -1
	s.SpindleSpeed = 12000
	s.FlipY = false
	return s
}

func newTestResult() model.Result {
	cfg := model.DefaultConfig()
	cfg.Size = model.Size{X: 100, Y: 50}
	return model.Result{
		RunID:  "run_test",
		Config: cfg,
		Placements: []model.Placement{
			{
				Order:       0,
				OutlineName: "Square",
				Scale:       10,
				Polygons: []geometry.Polygon{{
					geometry.Vec(10, 10),
					geometry.Vec(20, 10),
					geometry.Vec(20, 20),
					geometry.Vec(10, 20),
				}},
			},
		},
	}
}

func TestGenerate_SquarePath(t *testing.T) {
	code := New(newTestSettings()).Generate(newTestResult())

	expected := []string{
		"G0 X20.000 Y20.000",
		"G1 Z-1.000 F300.000",
		"G1 X40.000 Y20.000 F1000.000",
		"G1 X40.000 Y40.000",
		"G1 X20.000 Y40.000",
	}
	for _, line := range expected {
		if !strings.Contains(code, line+"\n") {
			t.Errorf("expected line %q in output", line)
		}
	}

	// Path returns to its start before the pen lifts
	if strings.Count(code, "X20.000 Y20.000") != 2 {
		t.Errorf("expected the path to close at its start point")
	}
	if !strings.Contains(code, "; --- Tile 1: Square (scale 10.00) ---") {
		t.Error("expected tile comment")
	}
}

func TestGenerate_HeaderAndFooter(t *testing.T) {
	code := New(newTestSettings()).Generate(newTestResult())

	if !strings.HasPrefix(code, "; TilePack GCode, run run_test\n") {
		t.Errorf("unexpected header: %q", strings.SplitN(code, "\n", 2)[0])
	}
	if !strings.Contains(code, "M3 S12000\n") {
		t.Error("expected spindle start")
	}
	if !strings.Contains(code, "G0 Z5.000\nG0 X0 Y0\nM5\nM2\n") {
		t.Error("expected end code with SafeZ substituted")
	}
	if !strings.HasSuffix(code, "M5\n") {
		t.Error("expected spindle stop at the end")
	}
}

func TestGenerate_PenPlotterHasNoSpindle(t *testing.T) {
	s := newTestSettings()
	s.Profile = "PenPlotter"
	code := New(s).Generate(newTestResult())

	if strings.Contains(code, "M3") || strings.Contains(code, "M5") {
		t.Error("pen plotter output should not control a spindle")
	}
	if !strings.Contains(code, "G1 X40.00 Y20.00 F1000.00\n") {
		t.Error("expected two decimal places for the pen plotter")
	}
}

func TestGenerate_FlipY(t *testing.T) {
	s := newTestSettings()
	s.FlipY = true
	code := New(s).Generate(newTestResult())

	// canvas y=10 -> (50-10)*2
	if !strings.Contains(code, "G0 X20.000 Y80.000\n") {
		t.Error("expected Y flipped against the canvas height")
	}
}

func TestGenerate_ClampsToCanvas(t *testing.T) {
	result := newTestResult()
	result.Placements[0].Polygons[0][0] = geometry.Vec(-3, 60)
	code := New(newTestSettings()).Generate(result)

	if !strings.Contains(code, "G0 X0.000 Y100.000\n") {
		t.Error("expected overhanging point clamped to the canvas")
	}
}

func TestGenerate_Highlight(t *testing.T) {
	result := newTestResult()
	result.Placements[0].Highlight = true
	code := New(newTestSettings()).Generate(result)

	if !strings.Contains(code, "[highlight]") {
		t.Error("expected highlight marker in tile comment")
	}
}

func TestGenerate_SkipsShortPath(t *testing.T) {
	result := newTestResult()
	result.Placements[0].Polygons = append(result.Placements[0].Polygons,
		geometry.Polygon{geometry.Vec(0, 0), geometry.Vec(1, 1)})
	code := New(newTestSettings()).Generate(result)

	if !strings.Contains(code, "WARNING: path 2 has fewer than 3 points") {
		t.Error("expected warning for degenerate path")
	}
}

func TestGenerate_MultiPathPlacement(t *testing.T) {
	result := newTestResult()
	p := result.Placements[0]
	p.Polygons = append(p.Polygons, p.Polygons[0].Translate(geometry.Vec(30, 0)))
	result.Placements[0] = p
	code := New(newTestSettings()).Generate(result)

	if n := strings.Count(code, "G1 Z-1.000 F300.000\n"); n != 2 {
		t.Errorf("expected 2 pen-down moves, got %d", n)
	}
}

func TestGenerate_MachCommentStyle(t *testing.T) {
	s := newTestSettings()
	s.Profile = "Mach3"
	code := New(s).Generate(newTestResult())

	if !strings.Contains(code, "( Profile: Mach3)\n") {
		t.Error("expected parenthesised comments for Mach3")
	}
}

func TestFormat_NegativeZero(t *testing.T) {
	g := New(newTestSettings())
	if got := g.format(-0.0001); got != "0.000" {
		t.Errorf("expected 0.000, got %s", got)
	}
	if got := g.format(-1.5); got != "-1.500" {
		t.Errorf("expected -1.500, got %s", got)
	}
}

func TestNew_ZeroScaleDefaultsToOne(t *testing.T) {
	s := newTestSettings()
	s.Scale = 0
	if g := New(s); g.Settings.Scale != 1 {
		t.Errorf("expected scale 1, got %f", g.Settings.Scale)
	}
}
