// Package importer loads outlines from DXF drawings and from CSV or Excel
// point lists. Point lists have one row per vertex (outline, path, x, y) with
// automatic delimiter detection, flexible column mapping, and case-insensitive
// header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Outlines []model.Outline
	Errors   []string
	Warnings []string
}

// Options control how imported paths are grouped into outlines.
type Options struct {
	Name       string // Outline name for DXF imports; defaults to the file name
	SplitPaths bool   // One outline per closed path instead of one multi-path outline
}

// Import dispatches on the file extension.
func Import(path string, opts Options) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dxf":
		return ImportDXF(path, opts)
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path)
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	}
	return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type: %s", filepath.Ext(path))}}
}

// ColumnMapping maps semantic column roles to their indices in the data.
// A Path of -1 puts every point of an outline on a single path.
type ColumnMapping struct {
	Outline int
	Path    int
	X       int
	Y       int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"outline": {"outline", "name", "shape", "label", "tile"},
	"path":    {"path", "ring", "contour", "loop", "part"},
	"x":       {"x", "px", "x coordinate"},
	"y":       {"y", "py", "y coordinate"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Only consider delimiters that produce more than 1 column
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or a default positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Outline: -1, Path: -1, X: -1, Y: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "outline":
					if mapping.Outline == -1 {
						mapping.Outline = i
					}
				case "path":
					if mapping.Path == -1 {
						mapping.Path = i
					}
				case "x":
					if mapping.X == -1 {
						mapping.X = i
					}
				case "y":
					if mapping.Y == -1 {
						mapping.Y = i
					}
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping(len(row)), false
	}
	return mapping, true
}

// positionalMapping is used for header-less data: outline,path,x,y, or
// outline,x,y when only three columns are present.
func positionalMapping(columns int) ColumnMapping {
	if columns == 3 {
		return ColumnMapping{Outline: 0, Path: -1, X: 1, Y: 2}
	}
	return ColumnMapping{Outline: 0, Path: 1, X: 2, Y: 3}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// pointRow is one parsed vertex.
type pointRow struct {
	outline string
	path    string
	point   geometry.Vector
}

// parseRow extracts a vertex from a row using the given column mapping.
// Returns the vertex and any error message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (pointRow, string) {
	pr := pointRow{
		outline: getCell(row, mapping.Outline),
		path:    getCell(row, mapping.Path),
	}
	if pr.outline == "" {
		pr.outline = "Outline 1"
	}

	xStr := getCell(row, mapping.X)
	if xStr == "" {
		return pointRow{}, fmt.Sprintf("%s: Missing x value", rowLabel)
	}
	x, err := strconv.ParseFloat(xStr, 64)
	if err != nil {
		return pointRow{}, fmt.Sprintf("%s: Invalid x '%s'", rowLabel, xStr)
	}

	yStr := getCell(row, mapping.Y)
	if yStr == "" {
		return pointRow{}, fmt.Sprintf("%s: Missing y value", rowLabel)
	}
	y, err := strconv.ParseFloat(yStr, 64)
	if err != nil {
		return pointRow{}, fmt.Sprintf("%s: Invalid y '%s'", rowLabel, yStr)
	}

	pr.point = geometry.Vec(x, y)
	if !geometry.Finite(pr.point) {
		return pointRow{}, fmt.Sprintf("%s: Coordinates must be finite", rowLabel)
	}
	return pr, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports outlines from a CSV point list.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports outlines from a CSV reader with a specific delimiter.
// This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports outlines from an Excel (.xlsx, .xls) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// outlineBuilder accumulates the paths of one outline in first-seen order.
type outlineBuilder struct {
	name  string
	keys  []string
	paths map[string]geometry.Polygon
}

func (b *outlineBuilder) add(pathKey string, p geometry.Vector) {
	if _, ok := b.paths[pathKey]; !ok {
		b.keys = append(b.keys, pathKey)
	}
	b.paths[pathKey] = append(b.paths[pathKey], p)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, parses each row into a vertex and groups
// vertices into outlines and paths in the order they first appear.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	// Detect columns from first row
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		// Validate that required columns were found
		missing := []string{}
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) > mapping.X {
		// No header: a non-numeric x column is an unrecognised header.
		// Skip it but keep the positional mapping
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][mapping.X]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	var builders []*outlineBuilder
	byName := make(map[string]*outlineBuilder)

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		pr, errMsg := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		b, ok := byName[pr.outline]
		if !ok {
			b = &outlineBuilder{name: pr.outline, paths: make(map[string]geometry.Polygon)}
			byName[pr.outline] = b
			builders = append(builders, b)
		}
		b.add(pr.path, pr.point)
	}

	for _, b := range builders {
		var paths []geometry.Polygon
		for _, key := range b.keys {
			p := b.paths[key]
			if !p.Valid() {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Outline '%s': skipped path '%s' with fewer than 3 points", b.name, key))
				continue
			}
			paths = append(paths, p)
		}
		if len(paths) == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Outline '%s': no usable paths", b.name))
			continue
		}
		result.Outlines = append(result.Outlines, model.NewOutline(b.name, paths...))
	}

	return result
}
