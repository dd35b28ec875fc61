// Package gcode plots packed layouts as GCode toolpaths.
package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
)

// Settings control how canvas units map onto the machine.
type Settings struct {
	Profile      string  `json:"profile"`
	Scale        float64 `json:"scale"`         // mm per canvas unit
	FeedRate     float64 `json:"feed_rate"`     // mm/min while drawing
	PlungeRate   float64 `json:"plunge_rate"`   // mm/min for pen-down moves
	SafeZ        float64 `json:"safe_z"`        // pen-up height
	DrawZ        float64 `json:"draw_z"`        // pen-down height, usually <= 0
	SpindleSpeed int     `json:"spindle_speed"` // RPM, ignored by profiles without a spindle
	FlipY        bool    `json:"flip_y"`        // machine Y grows upwards
}

func DefaultSettings() Settings {
	return Settings{
		Profile:      "PenPlotter",
		Scale:        1,
		FeedRate:     1500,
		PlungeRate:   500,
		SafeZ:        5,
		DrawZ:        0,
		SpindleSpeed: 12000,
		FlipY:        true,
	}
}

// Generator produces GCode from a packing result.
type Generator struct {
	Settings Settings
	profile  Profile
}

func New(settings Settings) *Generator {
	return NewWithProfile(settings, GetProfile(settings.Profile))
}

// NewWithProfile uses the given profile regardless of Settings.Profile.
func NewWithProfile(settings Settings, profile Profile) *Generator {
	if settings.Scale <= 0 {
		settings.Scale = 1
	}
	return &Generator{Settings: settings, profile: profile}
}

// Generate plots every path of every placement in placement order. Points are
// clamped to the canvas, so tiles overhanging the edge are drawn flat against
// it.
func (g *Generator) Generate(result model.Result) string {
	var b strings.Builder

	g.writeHeader(&b, result)
	for _, p := range result.Placements {
		g.writePlacement(&b, p, result.Config.Size)
	}
	g.writeFooter(&b)

	return b.String()
}

func (g *Generator) writeHeader(b *strings.Builder, result model.Result) {
	p := g.profile
	cfg := result.Config

	b.WriteString(g.comment(fmt.Sprintf("TilePack GCode, run %s", result.RunID)))
	b.WriteString(g.comment(fmt.Sprintf("Canvas: %.1f x %.1f units, %.3f mm/unit",
		cfg.Size.X, cfg.Size.Y, g.Settings.Scale)))
	b.WriteString(g.comment(fmt.Sprintf("Tiles: %d, Coverage: %.1f%%", len(result.Placements), result.Coverage())))
	b.WriteString(g.comment(fmt.Sprintf("Feed: %.0f mm/min, Plunge: %.0f mm/min",
		g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))

	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}

	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
}

func (g *Generator) writePlacement(b *strings.Builder, p model.Placement, canvas model.Size) {
	b.WriteString(g.comment(fmt.Sprintf("--- Tile %d: %s (scale %.2f)%s ---",
		p.Order+1, p.OutlineName, p.Scale, highlightStr(p.Highlight))))

	for i, poly := range p.Polygons {
		if len(poly) < 3 {
			b.WriteString(g.comment(fmt.Sprintf("WARNING: path %d has fewer than 3 points, skipping", i+1)))
			continue
		}
		g.writePath(b, g.toMachine(poly, canvas))
	}
}

// writePath draws one closed path: rapid to the start, pen down, trace, pen up.
func (g *Generator) writePath(b *strings.Builder, pts []geometry.Vector) {
	p := g.profile
	start := pts[0]

	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(start.X), g.format(start.Y)))
	b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(g.Settings.DrawZ), g.format(g.Settings.PlungeRate)))

	for i, pt := range pts[1:] {
		if i == 0 {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove,
				g.format(pt.X), g.format(pt.Y), g.format(g.Settings.FeedRate)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(pt.X), g.format(pt.Y)))
	}
	// Close
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(start.X), g.format(start.Y)))

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
}

// toMachine clamps a canvas path to the canvas and converts it to machine mm.
func (g *Generator) toMachine(poly geometry.Polygon, canvas model.Size) []geometry.Vector {
	s := g.Settings.Scale
	out := make([]geometry.Vector, len(poly))
	for i, v := range poly {
		x := clamp(v.X, 0, canvas.X)
		y := clamp(v.Y, 0, canvas.Y)
		if g.Settings.FlipY {
			y = canvas.Y - y
		}
		out[i] = geometry.Vec(x*s, y*s)
	}
	return out
}

func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	s := fmt.Sprintf(format, v)
	// Avoid "-0.000"
	if strings.Trim(s, "-0.") == "" {
		return strings.TrimPrefix(s, "-")
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func highlightStr(h bool) string {
	if h {
		return " [highlight]"
	}
	return ""
}
