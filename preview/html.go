package preview

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// majority returns the value held by more than half of total, if any.
func majority[K comparable](counts map[K]int, total int) (K, bool) {
	var zero K
	for k, n := range counts {
		if n > total/2 {
			return k, true
		}
	}
	return zero, false
}

// styleDefaults picks, per property, the value shared by a majority of the
// populated cells. Those values go into the td rule so the per-style classes
// only carry what differs.
func styleDefaults(styles []CellStyle) CellStyle {
	var (
		family  = map[string]int{}
		size    = map[float64]int{}
		color   = map[string]int{}
		bg      = map[string]int{}
		border  = map[string]int{}
		halign  = map[string]int{}
		valign  = map[string]int{}
		wrapped = map[bool]int{}
	)
	for _, st := range styles {
		family[st.FontFamily]++
		size[st.FontSizePt]++
		color[st.FontColor]++
		bg[st.BackgroundColor]++
		border[st.BorderColor]++
		halign[st.HorizontalAlign]++
		valign[st.VerticalAlign]++
		wrapped[st.WrapText]++
	}
	n := len(styles)
	var def CellStyle
	def.FontFamily, _ = majority(family, n)
	def.FontSizePt, _ = majority(size, n)
	def.FontColor, _ = majority(color, n)
	def.BackgroundColor, _ = majority(bg, n)
	def.BorderColor, _ = majority(border, n)
	def.HorizontalAlign, _ = majority(halign, n)
	def.VerticalAlign, _ = majority(valign, n)
	def.WrapText, _ = majority(wrapped, n)
	return def
}

func textAlign(h string) string {
	switch h {
	case "center", "centerContinuous", "distributed":
		return "center"
	case "right", "justify":
		return h
	default:
		return "left"
	}
}

func verticalAlign(v string) string {
	switch v {
	case "top", "middle":
		return v
	default:
		return "bottom"
	}
}

// tdRule is the CSS body of the shared td rule.
func tdRule(def CellStyle) string {
	var b strings.Builder
	b.WriteString("padding:4px 8px;")
	if def.FontFamily != "" {
		fmt.Fprintf(&b, " font-family:'%s';", def.FontFamily)
	}
	if def.FontSizePt > 0 {
		fmt.Fprintf(&b, " font-size:%.1fpt;", def.FontSizePt)
	}
	if def.FontColor != "" {
		fmt.Fprintf(&b, " color:#%s;", def.FontColor)
	}
	if def.BackgroundColor != "" {
		fmt.Fprintf(&b, " background-color:#%s;", def.BackgroundColor)
	}
	if def.BorderColor != "" {
		fmt.Fprintf(&b, " border:1px solid #%s;", def.BorderColor)
	} else {
		b.WriteString(" border:1px solid #D4D4D4;")
	}
	if !def.WrapText {
		b.WriteString(" white-space:nowrap; overflow:hidden;")
	}
	if def.HorizontalAlign != "" {
		fmt.Fprintf(&b, " text-align:%s;", textAlign(def.HorizontalAlign))
	}
	if def.VerticalAlign != "" {
		fmt.Fprintf(&b, " vertical-align:%s;", verticalAlign(def.VerticalAlign))
	}
	return b.String()
}

// styleToCSSDiff returns the CSS for the properties of s that differ from def.
func styleToCSSDiff(s, def CellStyle) string {
	var b strings.Builder
	if s.FontFamily != "" && s.FontFamily != def.FontFamily {
		fmt.Fprintf(&b, "font-family:'%s';", s.FontFamily)
	}
	if s.FontSizePt > 0 && s.FontSizePt != def.FontSizePt {
		fmt.Fprintf(&b, "font-size:%.1fpt;", s.FontSizePt)
	}
	if s.FontColor != "" && s.FontColor != def.FontColor {
		fmt.Fprintf(&b, "color:#%s;", s.FontColor)
	}
	if s.Bold {
		b.WriteString("font-weight:bold;")
	}
	if s.Italic {
		b.WriteString("font-style:italic;")
	}
	switch {
	case s.Underline && s.Strike:
		b.WriteString("text-decoration:underline line-through;")
	case s.Underline:
		b.WriteString("text-decoration:underline;")
	case s.Strike:
		b.WriteString("text-decoration:line-through;")
	}
	if s.BackgroundColor != "" && s.BackgroundColor != def.BackgroundColor {
		fmt.Fprintf(&b, "background-color:#%s;", s.BackgroundColor)
	}
	if s.BorderColor != "" && s.BorderColor != def.BorderColor {
		fmt.Fprintf(&b, "border:1px solid #%s;", s.BorderColor)
	}
	if s.HorizontalAlign != "" && s.HorizontalAlign != def.HorizontalAlign {
		fmt.Fprintf(&b, "text-align:%s;", textAlign(s.HorizontalAlign))
	}
	if s.VerticalAlign != "" && s.VerticalAlign != def.VerticalAlign {
		fmt.Fprintf(&b, "vertical-align:%s;", verticalAlign(s.VerticalAlign))
	}
	if s.WrapText != def.WrapText {
		if s.WrapText {
			b.WriteString("white-space:normal;")
		} else {
			b.WriteString("white-space:nowrap;overflow:hidden;")
		}
	}
	if s.IndentPx > 0 {
		side := "left"
		if s.HorizontalAlign == "right" {
			side = "right"
		}
		fmt.Fprintf(&b, "padding-%s:%.0fpx;", side, s.IndentPx)
	}
	return b.String()
}

// RenderWorkbookHTML renders every sheet of m as an HTML table. Each distinct
// cell style gets one cellstyleN class, numbered in order of first use.
func RenderWorkbookHTML(m WorkbookModel) string {
	classes := make(map[CellStyle]string)
	var styles, used []CellStyle
	for _, sheet := range m.Sheets {
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				used = append(used, cell.Style)
				if _, ok := classes[cell.Style]; !ok {
					classes[cell.Style] = fmt.Sprintf("cellstyle%d", len(styles)+1)
					styles = append(styles, cell.Style)
				}
			}
		}
	}
	def := styleDefaults(used)

	var b strings.Builder
	b.WriteString("<style>\n")
	b.WriteString(".table { border-collapse: collapse; table-layout: fixed; margin-bottom: 2em; }\n")
	fmt.Fprintf(&b, ".table td { %s }\n", tdRule(def))
	b.WriteString(".table td.num { text-align:right; }\n")
	b.WriteString(".table th { background-color:#F3F3F3; border:1px solid #D4D4D4; font-weight:normal; }\n")
	for _, st := range styles {
		if css := styleToCSSDiff(st, def); css != "" {
			fmt.Fprintf(&b, ".%s { %s }\n", classes[st], css)
		}
	}
	b.WriteString("</style>\n")

	for _, sheet := range m.Sheets {
		renderSheetHTML(&b, sheet, classes)
	}
	return b.String()
}

// rowHeaderPx is the width of the row-number column.
const rowHeaderPx = 40

// renderSheetHTML writes one table. Rows and columns without cells are not
// in the model; the row-number column and the column letters keep the
// worksheet positions readable across the gaps.
func renderSheetHTML(b *strings.Builder, sheet RenderSheet, classes map[CellStyle]string) {
	total := float64(rowHeaderPx)
	for i, w := range sheet.ColWidths {
		if !sheet.ColHidden[i] {
			total += w
		}
	}
	fmt.Fprintf(b, "<div class=\"sheet\" data-name=\"%s\">\n", html.EscapeString(sheet.Name))
	fmt.Fprintf(b, "<table class=\"table\" style=\"width:%.0fpx;\">\n", total)
	b.WriteString("  <colgroup>\n")
	fmt.Fprintf(b, "    <col style=\"width:%dpx;\">\n", rowHeaderPx)
	for i, w := range sheet.ColWidths {
		if sheet.ColHidden[i] {
			b.WriteString("    <col style=\"display:none;\">\n")
			continue
		}
		fmt.Fprintf(b, "    <col style=\"width:%.0fpx;\">\n", w)
	}
	b.WriteString("  </colgroup>\n")

	if len(sheet.ColNames) > 0 {
		b.WriteString("  <tr><th></th>")
		for i, name := range sheet.ColNames {
			if sheet.ColHidden[i] {
				b.WriteString("<th style=\"display:none;\"></th>")
				continue
			}
			fmt.Fprintf(b, "<th>%s</th>", name)
		}
		b.WriteString("</tr>\n")
	}

	for _, row := range sheet.Rows {
		style := fmt.Sprintf("height:%.0fpx;", row.HeightPx)
		if row.Hidden {
			style += "display:none;"
		}
		fmt.Fprintf(b, "  <tr data-row=\"%d\" style=\"%s\">\n", row.Number+1, style)
		fmt.Fprintf(b, "    <th>%d</th>\n", row.Number+1)
		next := 0
		for col := range sheet.ColNames {
			if next >= len(row.Cells) || row.Cells[next].Col != col {
				b.WriteString("    <td></td>\n")
				continue
			}
			cell := row.Cells[next]
			next++
			class := classes[cell.Style]
			if cell.Style.HorizontalAlign == "" && (cell.Kind == KindNumber || (cell.Kind == KindFormula && isNumeric(cell.Value))) {
				class += " num"
			}
			title := ""
			if cell.Kind == KindFormula {
				title = fmt.Sprintf(" title=\"=%s\"", html.EscapeString(cell.Formula))
			}
			value := strings.ReplaceAll(html.EscapeString(cell.Value), "\n", "<br>")
			fmt.Fprintf(b, "    <td data-cell=\"%s\" class=\"%s\"%s>%s</td>\n", cell.Ref, class, title, value)
		}
		b.WriteString("  </tr>\n")
	}
	b.WriteString("</table>\n</div>\n")
}

func isNumeric(s string) bool {
	s = strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "%")
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
