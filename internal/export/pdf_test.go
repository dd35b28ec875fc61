package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
)

func square(x, y, side float64) geometry.Polygon {
	return geometry.Polygon{
		geometry.Vec(x, y),
		geometry.Vec(x+side, y),
		geometry.Vec(x+side, y+side),
		geometry.Vec(x, y+side),
	}
}

// buildTestResult creates a small finished run with three placements.
func buildTestResult() model.Result {
	cfg := model.DefaultConfig()
	cfg.Size = model.Size{X: 200, Y: 100}
	cfg.Colours.Background = "#102030"
	return model.Result{
		RunID:  "run_01h455vb4pex5vsknk084sn02q",
		Config: cfg,
		Placements: []model.Placement{
			{Order: 0, OutlineName: "Square", Scale: 40, Translation: geometry.Vec(100, 50), Polygons: []geometry.Polygon{square(80, 30, 40)}},
			{Order: 1, OutlineName: "Square", Scale: 20, Translation: geometry.Vec(20, 20), Polygons: []geometry.Polygon{square(10, 10, 20)}, Highlight: true},
			{Order: 2, OutlineName: "Ring", Scale: 20, Translation: geometry.Vec(170, 20), Polygons: []geometry.Polygon{square(160, 10, 20), square(165, 15, 10)}},
		},
		Discarded: 12,
		Status: model.Status{
			State:       "stopped",
			TilesPlaced: 3,
			ScaleLevel:  1,
			ScaleFactor: 0.8,
		},
	}
}

func TestExportPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.pdf")

	if err := ExportPDF(path, buildTestResult()); err != nil {
		t.Fatalf("ExportPDF failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("output file not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_NoPlacements(t *testing.T) {
	result := buildTestResult()
	result.Placements = nil

	err := ExportPDF(filepath.Join(t.TempDir(), "empty.pdf"), result)
	if err == nil {
		t.Error("expected error for result without placements")
	}
}

func TestExportPDF_DegenerateCanvas(t *testing.T) {
	result := buildTestResult()
	result.Config.Size.Y = 0

	err := ExportPDF(filepath.Join(t.TempDir(), "flat.pdf"), result)
	if err == nil {
		t.Error("expected error for canvas without area")
	}
}

func TestUsageByOutline(t *testing.T) {
	usage := usageByOutline(buildTestResult())
	if len(usage) != 2 {
		t.Fatalf("expected 2 outlines, got %d", len(usage))
	}
	if usage[0].name != "Square" || usage[0].count != 2 {
		t.Errorf("expected Square x2 first, got %s x%d", usage[0].name, usage[0].count)
	}
	if usage[0].area != 2000 {
		t.Errorf("expected Square area 2000, got %f", usage[0].area)
	}
	if usage[1].name != "Ring" || usage[1].count != 1 {
		t.Errorf("expected Ring x1 second, got %s x%d", usage[1].name, usage[1].count)
	}
}

func TestParseColour(t *testing.T) {
	tests := []struct {
		in   string
		want rgb
	}{
		{"#ef7d00", orange},
		{"EF7D00", orange},
		{"#fff", white},
		{" #102030 ", rgb{R: 16, G: 32, B: 48}},
		{"", white},
		{"#12345", white},
		{"#zzzzzz", white},
	}
	for _, tt := range tests {
		if got := parseColour(tt.in, white); got != tt.want {
			t.Errorf("parseColour(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestRGBHex(t *testing.T) {
	if got := orange.hex(); got != "#ef7d00" {
		t.Errorf("expected #ef7d00, got %s", got)
	}
	if got := (rgb{R: 1, G: 2, B: 3}).hex(); got != "#010203" {
		t.Errorf("expected #010203, got %s", got)
	}
}
