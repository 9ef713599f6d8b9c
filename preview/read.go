package preview

import (
	"cmp"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/olekukonko/errors"
	"github.com/unidoc/unioffice/schema/soo/dml"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/aerissecure/xlsxwriter/format"
	"github.com/aerissecure/xlsxwriter/worksheet"
)

// ReadWorkbook loads an xlsx package and renders it into the same IR that
// BuildSheet produces, so a written file can be previewed as Excel would
// read it. Values are the formatted values stored in the file.
func ReadWorkbook(r io.ReaderAt, size int64) (WorkbookModel, error) {
	wb, err := spreadsheet.Read(r, size)
	if err != nil {
		return WorkbookModel{}, errors.New("read workbook").Wrap(err)
	}

	var m WorkbookModel
	for _, sheet := range wb.Sheets() {
		m.Sheets = append(m.Sheets, readSheet(wb, sheet))
	}
	return m, nil
}

func readSheet(wb *spreadsheet.Workbook, sheet spreadsheet.Sheet) RenderSheet {
	rs := RenderSheet{Name: sheet.Name()}
	rows := sheet.Rows()

	used := make(map[int]struct{})
	for _, row := range rows {
		for _, cell := range row.Cells() {
			if col, ok := cellColumn(cell); ok {
				used[col] = struct{}{}
			}
		}
	}
	slot := rs.setColumns(slices.Sorted(maps.Keys(used)), func(col int) (float64, bool) {
		width, hidden := columnPx(worksheet.DefaultColumnWidth), false
		x := sheet.Column(uint32(col + 1)).X()
		if x.CustomWidthAttr != nil && *x.CustomWidthAttr && x.WidthAttr != nil {
			width = storedColumnPx(*x.WidthAttr)
		}
		if x.HiddenAttr != nil {
			hidden = *x.HiddenAttr
		}
		return width, hidden
	})

	for _, row := range rows {
		rn := int(row.RowNumber()) - 1
		rr := RenderRow{
			Number:   rn,
			HeightPx: rowPx(worksheet.DefaultRowHeight),
			Hidden:   row.IsHidden(),
		}
		if x := row.X(); x.CustomHeightAttr != nil && *x.CustomHeightAttr && x.HtAttr != nil {
			rr.HeightPx = rowPx(*x.HtAttr)
		}
		for _, cell := range row.Cells() {
			col, ok := cellColumn(cell)
			if !ok {
				continue
			}
			rc := readCell(wb, cell, rn, col)
			rc.Col = slot[col]
			rr.Cells = append(rr.Cells, rc)
		}
		if len(rr.Cells) == 0 {
			continue
		}
		slices.SortFunc(rr.Cells, func(a, b *RenderCell) int { return cmp.Compare(a.Col, b.Col) })
		rs.Rows = append(rs.Rows, rr)
	}
	slices.SortFunc(rs.Rows, func(a, b RenderRow) int { return cmp.Compare(a.Number, b.Number) })
	return rs
}

func cellColumn(cell spreadsheet.Cell) (int, bool) {
	name, err := cell.Column()
	if err != nil {
		return 0, false
	}
	return int(reference.ColumnToIndex(name)), true
}

// storedColumnPx converts a stored column width, which includes the cell
// padding, back to pixels.
func storedColumnPx(width float64) float64 {
	return float64(int(width*7 + 0.5))
}

func readCell(wb *spreadsheet.Workbook, cell spreadsheet.Cell, row, col int) *RenderCell {
	x := cell.X()
	rc := &RenderCell{
		Ref:   worksheet.CellName(row, col),
		Value: cell.GetFormattedValue(),
		Style: readStyle(wb, x.SAttr),
	}
	switch {
	case x.F != nil:
		rc.Kind = KindFormula
		rc.Formula = x.F.Content
	case x.TAttr == sml.ST_CellTypeS || x.TAttr == sml.ST_CellTypeInlineStr || x.TAttr == sml.ST_CellTypeStr:
		rc.Kind = KindString
	case x.V == nil:
		rc.Kind = KindBlank
	default:
		rc.Kind = KindNumber
	}
	return rc
}

// readStyle maps the xf at index s to a CellStyle. Missing or out of range
// indexes give the default look.
func readStyle(wb *spreadsheet.Workbook, s *uint32) CellStyle {
	ss := wb.StyleSheet
	st := CellStyle{FontFamily: format.DefaultFontName, FontSizePt: format.DefaultFontSize}
	if s == nil {
		return st
	}
	xfs := ss.X().CellXfs
	if xfs == nil || int(*s) >= len(xfs.Xf) {
		return st
	}
	xf := xfs.Xf[*s]

	if font := fontOf(ss, xf); font != nil {
		if len(font.Name) > 0 {
			st.FontFamily = font.Name[0].ValAttr
		}
		if len(font.Sz) > 0 {
			st.FontSizePt = font.Sz[0].ValAttr
		}
		if len(font.Color) > 0 && font.Color[0].RgbAttr != nil {
			st.FontColor = rgb(*font.Color[0].RgbAttr)
		}
	}
	if fill := fillOf(ss, xf); fill != nil && fill.PatternFill != nil && fill.PatternFill.FgColor != nil {
		fg := fill.PatternFill.FgColor
		switch {
		case fg.RgbAttr != nil:
			st.BackgroundColor = rgb(*fg.RgbAttr)
		case fg.ThemeAttr != nil:
			st.BackgroundColor, _ = themeColor(wb, int(*fg.ThemeAttr))
		}
	}
	if b := borderOf(ss, xf); b != nil && b.Left != nil && b.Left.Color != nil && b.Left.Color.RgbAttr != nil {
		st.BorderColor = rgb(*b.Left.Color.RgbAttr)
	}
	if a := xf.Alignment; a != nil {
		if h := a.HorizontalAttr.String(); h != "" && h != "general" {
			st.HorizontalAlign = h
		}
		switch a.VerticalAttr.String() {
		case "top":
			st.VerticalAlign = "top"
		case "center":
			st.VerticalAlign = "middle"
		case "bottom":
			st.VerticalAlign = "bottom"
		}
		if a.WrapTextAttr != nil {
			st.WrapText = *a.WrapTextAttr
		}
		if a.IndentAttr != nil {
			st.IndentPx = float64(*a.IndentAttr) * 9
		}
	}
	return st
}

func fontOf(ss spreadsheet.StyleSheet, xf *sml.CT_Xf) *sml.CT_Font {
	fonts := ss.X().Fonts
	if xf.FontIdAttr == nil || fonts == nil || int(*xf.FontIdAttr) >= len(fonts.Font) {
		return nil
	}
	return fonts.Font[*xf.FontIdAttr]
}

func fillOf(ss spreadsheet.StyleSheet, xf *sml.CT_Xf) *sml.CT_Fill {
	fills := ss.X().Fills
	if xf.FillIdAttr == nil || fills == nil || int(*xf.FillIdAttr) >= len(fills.Fill) {
		return nil
	}
	return fills.Fill[*xf.FillIdAttr]
}

func borderOf(ss spreadsheet.StyleSheet, xf *sml.CT_Xf) *sml.CT_Border {
	borders := ss.X().Borders
	if xf.BorderIdAttr == nil || borders == nil || int(*xf.BorderIdAttr) >= len(borders.Border) {
		return nil
	}
	return borders.Border[*xf.BorderIdAttr]
}

// themeColor resolves a theme color index to RRGGBB, ignoring tint.
func themeColor(wb *spreadsheet.Workbook, idx int) (string, bool) {
	themes := wb.Themes()
	if len(themes) == 0 || themes[0] == nil || themes[0].ThemeElements == nil {
		return "", false
	}
	cs := themes[0].ThemeElements.ClrScheme
	if cs == nil {
		return "", false
	}
	scheme := []*dml.CT_Color{
		cs.Dk1, cs.Lt1, cs.Dk2, cs.Lt2,
		cs.Accent1, cs.Accent2, cs.Accent3, cs.Accent4, cs.Accent5, cs.Accent6,
		cs.Hlink, cs.FolHlink,
	}
	if idx < 0 || idx >= len(scheme) || scheme[idx] == nil {
		return "", false
	}
	switch c := scheme[idx]; {
	case c.SrgbClr != nil && c.SrgbClr.ValAttr != "":
		return rgb(c.SrgbClr.ValAttr), true
	case c.SysClr != nil && c.SysClr.LastClrAttr != nil:
		return rgb(*c.SysClr.LastClrAttr), true
	}
	return "", false
}

// rgb drops the alpha byte of an ARGB color.
func rgb(argb string) string {
	argb = strings.ToUpper(strings.TrimPrefix(argb, "#"))
	if len(argb) == 8 {
		return argb[2:]
	}
	return argb
}
