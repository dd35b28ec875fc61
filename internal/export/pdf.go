// Package export renders packing results to PDF reports, tile labels and SVG.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/TilePack/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 10.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	configQRSize = 45.0
)

// ExportPDF generates a PDF document with the layout drawn to scale on the
// first page, followed by a summary page with run statistics and a QR code
// holding the run config.
func ExportPDF(path string, result model.Result) error {
	if len(result.Placements) == 0 {
		return fmt.Errorf("no placements to export")
	}
	if result.Config.Size.X <= 0 || result.Config.Size.Y <= 0 {
		return fmt.Errorf("canvas %gx%g has no area", result.Config.Size.X, result.Config.Size.Y)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderLayoutPage(pdf, result)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, result); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws the canvas and every placed polygon on the current page.
func renderLayoutPage(pdf *fpdf.Fpdf, result model.Result) {
	cfg := result.Config

	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Layout %s (%.0f x %.0f)", result.RunID, cfg.Size.X, cfg.Size.Y)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Tiles: %d | Discarded: %d | Coverage: %.1f%% | Levels: %d",
		len(result.Placements), result.Discarded, result.Coverage(), result.Status.ScaleLevel+1)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	// Calculate drawing area
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	// Scale the canvas to fit within the drawing area
	scale := math.Min(drawWidth/cfg.Size.X, drawHeight/cfg.Size.Y)
	canvasW := cfg.Size.X * scale
	canvasH := cfg.Size.Y * scale

	// Center the drawing horizontally
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	bg := parseColour(cfg.Colours.Background, white)
	pdf.SetFillColor(bg.R, bg.G, bg.B)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Tiles may hang over the canvas edge by the boundary margin
	pdf.ClipRect(offsetX, offsetY, canvasW, canvasH, false)

	fg := parseColour(cfg.Colours.Foreground, white)
	hl := parseColour(cfg.Colours.Highlight, orange)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.2)
	for _, p := range result.Placements {
		col := fg
		if p.Highlight {
			col = hl
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		for _, poly := range p.Polygons {
			pts := make([]fpdf.PointType, len(poly))
			for i, v := range poly {
				pts[i] = fpdf.PointType{X: offsetX + v.X*scale, Y: offsetY + v.Y*scale}
			}
			pdf.Polygon(pts, "FD")
		}
	}
	pdf.ClipEnd()

	drawDimensionAnnotations(pdf, cfg.Size, offsetX, offsetY, canvasW, canvasH)
}

// drawDimensionAnnotations adds width and height labels outside the canvas rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, size model.Size, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	// Width annotation (below the canvas)
	widthLabel := fmt.Sprintf("%.0f", size.X)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	// Height annotation (to the left of the canvas, rotated)
	heightLabel := fmt.Sprintf("%.0f", size.Y)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	// Reset text color
	pdf.SetTextColor(0, 0, 0)
}

// outlineUsage summarises how often each outline was placed.
type outlineUsage struct {
	name  string
	count int
	area  float64
}

func usageByOutline(result model.Result) []outlineUsage {
	byName := make(map[string]*outlineUsage)
	var order []string
	for _, p := range result.Placements {
		u, ok := byName[p.OutlineName]
		if !ok {
			u = &outlineUsage{name: p.OutlineName}
			byName[p.OutlineName] = u
			order = append(order, p.OutlineName)
		}
		u.count++
		u.area += p.Area()
	}
	out := make([]outlineUsage, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

// renderSummaryPage draws the summary page with run statistics, outline
// usage and the config QR code.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.Result) error {
	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	// Separator line
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Run Statistics", "", 0, "L", false, 0, "")
	y += 9

	st := result.Status
	summaryItems := []struct {
		label string
		value string
	}{
		{"Tiles Placed", fmt.Sprintf("%d", len(result.Placements))},
		{"Discarded Candidates", fmt.Sprintf("%d", result.Discarded)},
		{"Coverage", fmt.Sprintf("%.1f%%", result.Coverage())},
		{"Total Time", fmt.Sprintf("%.2f s", st.TotalTime)},
		{"Average Time To Place", fmt.Sprintf("%.4f s", st.AverageTimeToPlace)},
		{"Final Scale Level", fmt.Sprintf("%d (factor %.4f)", st.ScaleLevel, st.ScaleFactor)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	// Per-outline breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Outline Usage", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{70, 30, 50}
	headers := []string{"Outline", "Tiles", "Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, u := range usageByOutline(result) {
		if y > pageHeight-marginBottom-10 {
			break
		}
		xPos = marginLeft
		rowData := []string{u.name, fmt.Sprintf("%d", u.count), fmt.Sprintf("%.0f", u.area)}

		// Alternate row background
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if err := drawConfigQR(pdf, result.Config, pageWidth-marginRight-configQRSize, marginTop+18); err != nil {
		return err
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by TilePack", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// drawConfigQR places a QR code encoding the run config as JSON, so the
// layout can be regenerated from the printout.
func drawConfigQR(pdf *fpdf.Fpdf, cfg model.Config, x, y float64) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Low, 512)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf.RegisterImageOptionsReader("config_qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions("config_qr", x, y, configQRSize, configQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(x, y+configQRSize+1)
	pdf.CellFormat(configQRSize, 4, "Run config (JSON)", "", 0, "C", false, 0, "")
	return nil
}
