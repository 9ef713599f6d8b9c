package preview

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/aerissecure/xlsxwriter/worksheet"
)

// Intermediate representation of a worksheet for rendering. Sizes are in
// pixels.

// CellStyle is the resolved look of a cell.
type CellStyle struct {
	FontFamily      string  // e.g. "Calibri"
	FontSizePt      float64 // points
	FontColor       string  // "RRGGBB"
	Bold            bool
	Italic          bool
	Underline       bool
	Strike          bool
	BackgroundColor string // "RRGGBB"
	BorderColor     string // "RRGGBB", empty without a border
	HorizontalAlign string // left|center|right|justify
	VerticalAlign   string // top|middle|bottom
	WrapText        bool
	IndentPx        float64
}

func (s CellStyle) String() string {
	return fmt.Sprintf("FontFamily: %s, FontSizePt: %g, FontColor: %s, Bold: %t, Italic: %t, BackgroundColor: %s, BorderColor: %s, HorizontalAlign: %s, VerticalAlign: %s, WrapText: %t",
		s.FontFamily, s.FontSizePt, s.FontColor, s.Bold, s.Italic, s.BackgroundColor, s.BorderColor, s.HorizontalAlign, s.VerticalAlign, s.WrapText)
}

// CellKind mirrors the payload kinds of a worksheet cell.
type CellKind int

const (
	KindNumber CellKind = iota
	KindString
	KindFormula
	KindBlank
)

// RenderCell is a populated cell.
type RenderCell struct {
	Ref     string // e.g. "A1"
	Col     int    // index into the column slices of the sheet
	Kind    CellKind
	Value   string // display text
	Formula string // formula text for KindFormula
	Style   CellStyle
}

func (c RenderCell) String() string {
	return fmt.Sprintf("Ref: %s, Value: %s, Style: %s", c.Ref, c.Value, c.Style)
}

// RenderRow is a row holding at least one cell.
type RenderRow struct {
	Number   int // zero-based worksheet row
	HeightPx float64
	Hidden   bool
	Cells    []*RenderCell // populated cells, ascending by Col
}

// Cell returns the cell in column slot col, or nil.
func (r RenderRow) Cell(col int) *RenderCell {
	i, ok := slices.BinarySearchFunc(r.Cells, col, func(c *RenderCell, col int) int {
		return cmp.Compare(c.Col, col)
	})
	if !ok {
		return nil
	}
	return r.Cells[i]
}

// RenderSheet holds the rows and columns of a worksheet that carry cells, so
// its size follows the number of cells and not the extent of the sheet. The
// column slices are parallel and ascending.
type RenderSheet struct {
	Name      string
	Cols      []int // zero-based worksheet columns
	ColNames  []string
	ColWidths []float64
	ColHidden []bool
	Rows      []RenderRow // ascending by Number
}

// setColumns fills the column slices for cols and returns the slot of each
// worksheet column.
func (s *RenderSheet) setColumns(cols []int, info func(col int) (widthPx float64, hidden bool)) map[int]int {
	s.Cols = cols
	s.ColNames = make([]string, len(cols))
	s.ColWidths = make([]float64, len(cols))
	s.ColHidden = make([]bool, len(cols))
	slot := make(map[int]int, len(cols))
	for i, col := range cols {
		slot[col] = i
		s.ColNames[i] = worksheet.ColumnName(col)
		s.ColWidths[i], s.ColHidden[i] = info(col)
	}
	return slot
}

func (s RenderSheet) String() string {
	return fmt.Sprintf("Name: %s, Cols: %v, ColWidths: %v, ColHidden: %v, Rows: %d", s.Name, s.ColNames, s.ColWidths, s.ColHidden, len(s.Rows))
}

// WorkbookModel holds every rendered sheet.
type WorkbookModel struct {
	Sheets []RenderSheet
}
