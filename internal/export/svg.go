package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jbeda/geom"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
)

// SVG serialization helper. The first write error is kept and every later
// write is skipped.
type SVG struct {
	writer io.Writer
	err    error
}

func NewSVG(w io.Writer) *SVG {
	return &SVG{writer: w}
}

func (svg *SVG) printf(format string, a ...interface{}) {
	if svg.err != nil {
		return
	}
	_, svg.err = fmt.Fprintf(svg.writer, format, a...)
}

// Err returns the first write error.
func (svg *SVG) Err() error {
	return svg.err
}

// extraparams turns attribute strings ("fill='red'") and bare style strings
// into an attribute list.
func extraparams(s []string) string {
	ep := ""
	for i := 0; i < len(s); i++ {
		if strings.Index(s[i], "=") > 0 {
			ep += s[i] + " "
		} else if len(s[i]) > 0 {
			ep += fmt.Sprintf("style='%s' ", s[i])
		}
	}
	return ep
}

func (svg *SVG) Start(viewBox geom.Rect, s ...string) {
	svg.printf(`<?xml version="1.0"?>
<svg version="1.1"
     viewBox="%f %f %f %f"
     xmlns="http://www.w3.org/2000/svg" %s>
`, viewBox.Min.X, viewBox.Min.Y, viewBox.Width(), viewBox.Height(), extraparams(s))
}

func (svg *SVG) End() {
	svg.printf("</svg>\n")
}

func (svg *SVG) Rect(r geom.Rect, s ...string) {
	svg.printf("<rect x='%f' y='%f' width='%f' height='%f' %s/>\n", r.Min.X, r.Min.Y, r.Width(), r.Height(), extraparams(s))
}

func (svg *SVG) Polygon(p geometry.Polygon, s ...string) {
	var b strings.Builder
	for i, v := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%f,%f", v.X, v.Y)
	}
	svg.printf("<polygon points='%s' %s/>\n", b.String(), extraparams(s))
}

func (svg *SVG) GroupStart(s ...string) {
	svg.printf("<g %s>\n", extraparams(s))
}

func (svg *SVG) GroupEnd() {
	svg.printf("</g>\n")
}

// WriteSVG renders the layout in canvas units: the canvas filled with the
// background colour and every placed polygon in the foreground colour, or the
// highlight colour for the highlighted tile.
func WriteSVG(w io.Writer, result model.Result) error {
	cfg := result.Config
	canvas := geom.Rect{Max: geometry.Vec(cfg.Size.X, cfg.Size.Y)}

	bg := parseColour(cfg.Colours.Background, white)
	fg := parseColour(cfg.Colours.Foreground, white)
	hl := parseColour(cfg.Colours.Highlight, orange)

	svg := NewSVG(w)
	svg.Start(canvas, fmt.Sprintf("width='%g' height='%g'", cfg.Size.X, cfg.Size.Y))
	svg.Rect(canvas, fmt.Sprintf("fill='%s'", bg.hex()))

	svg.GroupStart("stroke='#1e1e1e'", "stroke-width='0.5'")
	for _, p := range result.Placements {
		fill := fg
		if p.Highlight {
			fill = hl
		}
		// Multi-path outlines use even-odd so inner paths cut holes
		attrs := []string{fmt.Sprintf("fill='%s'", fill.hex()), "fill-rule='evenodd'", fmt.Sprintf("data-order='%d'", p.Order)}
		for _, poly := range p.Polygons {
			svg.Polygon(poly, attrs...)
		}
	}
	svg.GroupEnd()
	svg.End()

	return svg.Err()
}
