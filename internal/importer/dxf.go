package importer

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
)

const (
	arcSegments    = 32
	circleSegments = 64
	chainTolerance = 0.01
)

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE entities into closed paths.
type segment struct {
	start geometry.Vector
	end   geometry.Vector
}

// ImportDXF imports outlines from a DXF file. Every closed shape (LWPOLYLINE,
// CIRCLE, or chain of connected LINEs/ARCs) becomes a path. By default all
// paths form a single multi-path outline named after the file; with
// SplitPaths each path becomes its own outline.
func ImportDXF(path string, opts Options) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var paths []geometry.Polygon
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			p := lwPolylinePath(e)
			if len(p) >= 3 {
				paths = append(paths, p)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			paths = append(paths, circlePath(e.Center[0], e.Center[1], e.Radius, circleSegments))

		case *entity.Arc:
			pts := arcPoints(e.Circle.Center[0], e.Circle.Center[1], e.Circle.Radius, e.Angle[0], e.Angle[1], arcSegments)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: geometry.Vec(e.Start[0], e.Start[1]),
				end:   geometry.Vec(e.End[0], e.End[1]),
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	// Chain loose segments (LINEs and ARCs) into closed paths
	for _, p := range chainSegments(segments, chainTolerance) {
		if len(p) >= 3 {
			paths = append(paths, p)
		}
	}

	if len(paths) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	outlines, warnings := buildOutlines(name, paths, opts.SplitPaths)
	result.Outlines = outlines
	result.Warnings = append(result.Warnings, warnings...)
	if len(result.Outlines) == 0 {
		result.Errors = append(result.Errors, "No usable shapes found in DXF file")
	}
	return result
}

// buildOutlines flips paths from the DXF Y-up frame into canvas coordinates
// and groups them into outlines. Degenerate paths are skipped with a warning.
func buildOutlines(name string, paths []geometry.Polygon, split bool) ([]model.Outline, []string) {
	var warnings []string
	var kept []geometry.Polygon
	for _, p := range paths {
		flipped := make(geometry.Polygon, len(p))
		for i, v := range p {
			flipped[i] = geometry.Vec(v.X, -v.Y)
		}
		r := geometry.Bounds(flipped)
		if r.Width() < 0.01 || r.Height() < 0.01 {
			warnings = append(warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", r.Width(), r.Height()))
			continue
		}
		kept = append(kept, flipped)
	}
	if len(kept) == 0 {
		return nil, warnings
	}

	// Largest first for consistent ordering
	sort.SliceStable(kept, func(i, j int) bool {
		return geometry.Area(kept[i]) > geometry.Area(kept[j])
	})

	if !split {
		return []model.Outline{model.NewOutline(name, normalizePaths(kept)...)}, warnings
	}

	outlines := make([]model.Outline, 0, len(kept))
	for i, p := range kept {
		outlines = append(outlines, model.NewOutline(fmt.Sprintf("%s %d", name, i+1), normalizePaths([]geometry.Polygon{p})...))
	}
	return outlines, warnings
}

// normalizePaths translates the paths together so their common bounding box
// starts at (0, 0).
func normalizePaths(paths []geometry.Polygon) []geometry.Polygon {
	var all []geometry.Vector
	for _, p := range paths {
		all = append(all, p...)
	}
	offset := geometry.Bounds(all).Min.Times(-1)
	out := make([]geometry.Polygon, len(paths))
	for i, p := range paths {
		out[i] = p.Translate(offset)
	}
	return out
}

func lwPolylinePath(lw *entity.LwPolyline) geometry.Polygon {
	vertices := make([]geometry.Vector, len(lw.Vertices))
	for i, v := range lw.Vertices {
		vertices[i] = geometry.Vec(v[0], v[1])
	}
	return bulgePath(vertices, lw.Bulges)
}

// bulgePath expands polyline vertices into a path. A non-zero bulge on a
// vertex produces an interpolated arc to the next vertex.
func bulgePath(vertices []geometry.Vector, bulges []float64) geometry.Polygon {
	var path geometry.Polygon

	for i, current := range vertices {
		bulge := 0.0
		if i < len(bulges) {
			bulge = bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			next := vertices[(i+1)%len(vertices)]
			arcPts := bulgeArcPoints(current, next, bulge, arcSegments)
			// Add all but the last point (next vertex will be added naturally)
			path = append(path, arcPts[:len(arcPts)-1]...)
		} else {
			path = append(path, current)
		}
	}

	return path
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle.
func bulgeArcPoints(p1, p2 geometry.Vector, bulge float64, numSegments int) []geometry.Vector {
	chord := p2.Minus(p1)
	chordLen := chord.Magnitude()
	if chordLen < 1e-9 {
		return []geometry.Vector{p1, p2}
	}
	mid := p1.Plus(chord.Times(0.5))

	// Sagitta and radius
	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	// Centre lies on the chord's perpendicular, on the side opposite the bulge
	perp := geometry.Vec(-chord.Y/chordLen, chord.X/chordLen)
	if bulge > 0 {
		perp = perp.Times(-1)
	}
	centre := mid.Plus(perp.Times(radius - sagitta))

	startAngle := math.Atan2(p1.Y-centre.Y, p1.X-centre.X)
	endAngle := math.Atan2(p2.Y-centre.Y, p2.X-centre.X)

	if bulge < 0 {
		// Clockwise arc
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make([]geometry.Vector, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, geometry.Vec(
			centre.X+radius*math.Cos(angle),
			centre.Y+radius*math.Sin(angle),
		))
	}
	return pts
}

// circlePath approximates a circle as a regular polygon.
func circlePath(cx, cy, r float64, numSegments int) geometry.Polygon {
	path := make(geometry.Polygon, numSegments)
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		path[i] = geometry.Vec(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return path
}

// arcPoints samples an arc given in degrees, counter-clockwise from start to end.
func arcPoints(cx, cy, r, startDeg, endDeg float64, numSegments int) []geometry.Vector {
	startRad := startDeg * math.Pi / 180
	endRad := endDeg * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]geometry.Vector, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = geometry.Vec(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []geometry.Vector) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed paths.
// tolerance is the maximum distance between endpoints to consider them connected.
func chainSegments(segs []segment, tolerance float64) []geometry.Polygon {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var paths []geometry.Polygon

	for {
		// Find the first unused segment
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := geometry.Polygon{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		// Try to extend the chain
		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if geometry.Distance(tail, seg.start) <= tolerance {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if geometry.Distance(tail, seg.end) <= tolerance {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		// Only closed chains form a path; drop the duplicate closing point
		if len(chain) >= 4 && geometry.Distance(chain[0], chain[len(chain)-1]) <= tolerance {
			paths = append(paths, chain[:len(chain)-1])
		}
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return geometry.Area(paths[i]) > geometry.Area(paths[j])
	})

	return paths
}
