package preview

import (
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	numfmt "github.com/unidoc/unioffice/spreadsheet/format"

	"github.com/aerissecure/xlsxwriter/format"
	"github.com/aerissecure/xlsxwriter/worksheet"
)

// StringLookup resolves shared-string ids. *sst.Table satisfies it.
type StringLookup interface {
	Lookup(id int) (string, bool)
}

// rowPx converts a row height in points to pixels at 96 dpi.
func rowPx(pt float64) float64 { return pt * 96 / 72 }

// columnPx converts a character width to pixels using the 7px max digit
// width and 5px padding of the default font.
func columnPx(width float64) float64 {
	if width <= 0 {
		return 0
	}
	if width < 1 {
		return math.Round(width * 12)
	}
	return math.Round(width*7) + 5
}

// BuildWorkbook renders every sheet in order.
func BuildWorkbook(sheets []*worksheet.Worksheet, strs StringLookup) WorkbookModel {
	m := WorkbookModel{Sheets: make([]RenderSheet, 0, len(sheets))}
	for _, ws := range sheets {
		m.Sheets = append(m.Sheets, BuildSheet(ws, strs))
	}
	return m
}

// BuildSheet converts ws into the render IR. Only rows and columns that
// hold a cell are included; every cell carries its resolved style.
func BuildSheet(ws *worksheet.Worksheet, strs StringLookup) RenderSheet {
	rs := RenderSheet{Name: ws.Name()}
	rows := ws.Grid().Rows()

	used := make(map[int]struct{})
	for _, row := range rows {
		for _, c := range row.Cells() {
			used[c.Col] = struct{}{}
		}
	}
	slot := rs.setColumns(slices.Sorted(maps.Keys(used)), func(col int) (float64, bool) {
		if run, ok := ws.Column(col); ok {
			return columnPx(run.Width), run.Hidden
		}
		return columnPx(worksheet.DefaultColumnWidth), false
	})

	for _, row := range rows {
		if row.Len() == 0 {
			continue
		}
		rr := RenderRow{
			Number:   row.Number(),
			HeightPx: rowPx(row.Height()),
			Hidden:   row.Hidden(),
			Cells:    make([]*RenderCell, 0, row.Len()),
		}
		for _, c := range row.Cells() {
			rc := buildCell(ws, strs, row.Number(), c)
			rc.Col = slot[c.Col]
			rr.Cells = append(rr.Cells, rc)
		}
		rs.Rows = append(rs.Rows, rr)
	}
	return rs
}

func buildCell(ws *worksheet.Worksheet, strs StringLookup, row int, c *worksheet.Cell) *RenderCell {
	st := resolvedStyle(ws, row, c.Col)
	rc := &RenderCell{
		Ref:   worksheet.CellName(row, c.Col),
		Style: cellStyle(st),
	}
	switch v := c.Value.(type) {
	case worksheet.Number:
		rc.Kind = KindNumber
		rc.Value = displayNumber(float64(v), st.NumFormat, ws.Date1904())
	case worksheet.StringRef:
		rc.Kind = KindString
		if strs != nil {
			rc.Value, _ = strs.Lookup(v.ID)
		}
	case worksheet.Formula:
		rc.Kind = KindFormula
		rc.Formula = v.Text
		switch r := v.Cached.(type) {
		case worksheet.NumberResult:
			rc.Value = displayNumber(float64(r), st.NumFormat, ws.Date1904())
		case worksheet.StringResult:
			rc.Value = string(r)
		}
	case worksheet.Blank:
		rc.Kind = KindBlank
	}
	return rc
}

// resolvedStyle returns the style of the format that applies to the cell,
// or the default style when none applies or the format is not a registry
// format.
func resolvedStyle(ws *worksheet.Worksheet, row, col int) format.Style {
	if f, ok := ws.ResolveFormat(row, col).(*format.Format); ok && f != nil {
		return f.Style()
	}
	return format.Style{FontName: format.DefaultFontName, FontSize: format.DefaultFontSize}
}

func cellStyle(s format.Style) CellStyle {
	cs := CellStyle{
		FontFamily:      s.FontName,
		FontSizePt:      s.FontSize,
		FontColor:       s.FontColor,
		Bold:            s.Bold,
		Italic:          s.Italic,
		Underline:       s.Underline,
		Strike:          s.Strikeout,
		BackgroundColor: s.FillColor,
		HorizontalAlign: s.HAlign,
		VerticalAlign:   s.VAlign,
		WrapText:        s.Wrap,
		IndentPx:        float64(s.Indent) * 9,
	}
	if cs.FontFamily == "" {
		cs.FontFamily = format.DefaultFontName
	}
	if cs.FontSizePt == 0 {
		cs.FontSizePt = format.DefaultFontSize
	}
	if cs.VerticalAlign == "center" {
		cs.VerticalAlign = "middle"
	}
	if s.Border != format.BorderNone {
		cs.BorderColor = s.BorderColor
		if cs.BorderColor == "" {
			cs.BorderColor = "000000"
		}
	}
	return cs
}

// displayNumber renders v under the format code the way a viewer would.
// Numeric and elapsed-time sections go through the unioffice formatter,
// which also backs ReadWorkbook. Date and time-of-day sections are
// converted here so the 1904 date system and the 1900 leap-year offset
// are honoured.
func displayNumber(v float64, code string, date1904 bool) string {
	secs := splitSections(code)
	sec := secs[0]
	switch {
	case v < 0 && len(secs) > 1:
		sec = secs[1]
	case v == 0 && len(secs) > 2:
		sec = secs[2]
	}
	body := strings.ToLower(dateTokens(sec))
	if !isDateCode(body) || isElapsed(sec) {
		return numfmt.Number(v, code)
	}
	t := serialToTime(v, date1904)
	hasDate := strings.ContainsAny(body, "yd") || strings.Contains(body, "mmm")
	hasTime := strings.ContainsAny(body, "hs")
	switch {
	case hasDate && hasTime:
		return t.Format("2006-01-02 15:04:05")
	case hasTime:
		return t.Format("15:04:05")
	}
	return t.Format("2006-01-02")
}

// splitSections splits a number format at the semicolons that are not
// quoted, escaped or bracketed. It always returns at least one section.
func splitSections(code string) []string {
	var secs []string
	start, quoted, bracket := 0, false, false
	for i := 0; i < len(code); i++ {
		switch c := code[i]; {
		case quoted:
			quoted = c != '"'
		case bracket:
			bracket = c != ']'
		case c == '"':
			quoted = true
		case c == '[':
			bracket = true
		case c == '\\':
			i++
		case c == ';':
			secs = append(secs, code[start:i])
			start = i + 1
		}
	}
	return append(secs, code[start:])
}

// dateTokens drops the parts of a section that cannot hold date or time
// tokens: quoted and escaped literals, padding and fill directives, and
// bracketed colors, conditions and locales. The elapsed-time blocks [h],
// [m] and [s] are kept.
func dateTokens(sec string) string {
	var b strings.Builder
	for i := 0; i < len(sec); i++ {
		switch c := sec[i]; c {
		case '"':
			j := strings.IndexByte(sec[i+1:], '"')
			if j < 0 {
				return b.String()
			}
			i += j + 1
		case '\\', '_', '*':
			i++
		case '[':
			j := strings.IndexByte(sec[i:], ']')
			if j < 0 {
				return b.String()
			}
			if tok := sec[i+1 : i+j]; strings.Trim(strings.ToLower(tok), "hms") == "" {
				b.WriteString(tok)
			}
			i += j
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// isElapsed reports whether the section counts hours, minutes or seconds
// past their clock range, as in [h]:mm.
func isElapsed(sec string) bool {
	sec = strings.ToLower(sec)
	return strings.Contains(sec, "[h") || strings.Contains(sec, "[m") || strings.Contains(sec, "[s")
}

func isDateCode(body string) bool {
	if body == "general" {
		return false
	}
	return strings.ContainsAny(body, "ydhs") || strings.Contains(body, "mmm")
}

// serialToTime is the inverse of worksheet.ExcelDate. Serial 60, the
// fictitious 1900-02-29, shows as 1900-03-01.
func serialToTime(v float64, date1904 bool) time.Time {
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	switch {
	case date1904:
		epoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	case v < 61:
		epoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	days := math.Floor(v)
	secs := math.Round((v - days) * 86400)
	return epoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
}
