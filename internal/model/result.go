package model

import (
	"fmt"
	"math"

	"go.jetify.com/typeid/v2"

	"github.com/piwi3910/TilePack/internal/geometry"
)

// RunIDPrefix is the typeid prefix of run identifiers.
const RunIDPrefix = "run"

// NewRunID returns a fresh run identifier such as "run_01h455vb4pex5vsknk084sn02q".
func NewRunID() string {
	return typeid.MustGenerate(RunIDPrefix).String()
}

// ValidateRunID checks that id is a well-formed run identifier.
func ValidateRunID(id string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", id, err)
	}
	if parsed.Prefix() != RunIDPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", RunIDPrefix, parsed.Prefix(), id)
	}
	return nil
}

// Status is emitted after every engine tick.
type Status struct {
	RunID              string  `json:"run_id"`
	State              string  `json:"state"`
	TilesPlaced        int     `json:"tiles_placed"`
	Discarded          int     `json:"discarded"`
	TotalTime          float64 `json:"total_time"`            // seconds since the run started
	AverageTimeToPlace float64 `json:"average_time_to_place"` // seconds between placements
	ScaleLevel         int     `json:"scale_level"`
	ScaleRatio         float64 `json:"scale_ratio"` // per-level multiplier
	ScaleFactor        float64 `json:"scale_factor"`
	Processing         bool    `json:"processing"`
}

func (s Status) String() string {
	return fmt.Sprintf("%d tiles in %.2fs (avg %.2fs), level %d",
		s.TilesPlaced, s.TotalTime, s.AverageTimeToPlace, s.ScaleLevel)
}

// Placement records one placed shape in placement order.
type Placement struct {
	Order       int                `json:"order"`
	OutlineID   string             `json:"outline_id"`
	OutlineName string             `json:"outline_name"`
	Scale       float64            `json:"scale"`
	Rotation    float64            `json:"rotation"` // radians
	Translation geometry.Vector    `json:"translation"`
	Polygons    []geometry.Polygon `json:"polygons"` // transformed outline, without padding
	Highlight   bool               `json:"highlight"`
}

// Area returns the summed area of the placed outline paths.
func (p Placement) Area() float64 {
	var total float64
	for _, poly := range p.Polygons {
		total += geometry.Area(poly)
	}
	return total
}

// Result is the output of a finished (or aborted) run.
type Result struct {
	RunID      string      `json:"run_id"`
	Config     Config      `json:"config"`
	Placements []Placement `json:"placements"`
	Discarded  int         `json:"discarded"`
	Status     Status      `json:"status"`
}

// PlacedArea returns the total area of all placements.
func (r Result) PlacedArea() float64 {
	var total float64
	for _, p := range r.Placements {
		total += p.Area()
	}
	return total
}

// CanvasArea returns the canvas area, or 0 for a degenerate canvas.
func (r Result) CanvasArea() float64 {
	return math.Max(r.Config.Size.X, 0) * math.Max(r.Config.Size.Y, 0)
}

// Coverage returns the placed area as a percentage of the canvas area.
func (r Result) Coverage() float64 {
	ca := r.CanvasArea()
	if ca == 0 {
		return 0
	}
	return (r.PlacedArea() / ca) * 100.0
}

// Highlighted returns the highlighted placement, if any.
func (r Result) Highlighted() (Placement, bool) {
	for _, p := range r.Placements {
		if p.Highlight {
			return p, true
		}
	}
	return Placement{}, false
}
