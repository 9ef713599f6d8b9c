package worksheet

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/olekukonko/errors"
	"github.com/unidoc/unioffice/schema/soo/sml"
)

const (
	nsMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	// Rows are grouped in blocks of this size when computing span hints.
	spanBlock = 16
)

var xmlHeader = xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8" standalone="yes"`)}

// AssembleXML writes the worksheet part to w in one pass. Any write error
// aborts the pass; whatever reached w by then is not a valid part.
//
// AssembleXML records whether a formula was emitted; see RecalcOnLoad.
func (ws *Worksheet) AssembleXML(w io.Writer) error {
	s := &serializer{ws: ws, enc: xml.NewEncoder(w)}
	if err := s.run(); err != nil {
		return errors.Newf("write worksheet %q", ws.name).Wrap(err)
	}
	ws.recalc = s.formulas > 0
	ws.log.Debugf("%s: wrote %d rows, %d cells, %d column runs, dimension %s",
		ws.name, ws.grid.Len(), s.cells, ws.cols.Len(), ws.dim.Ref())
	if ws.recalc {
		ws.log.Debugf("%s: %d formulas, recalculation on load required", ws.name, s.formulas)
	}
	return nil
}

type serializer struct {
	ws       *Worksheet
	enc      *xml.Encoder
	spans    map[int]string
	cells    int
	formulas int
}

func (s *serializer) run() error {
	if err := s.enc.EncodeToken(xmlHeader); err != nil {
		return err
	}
	if err := s.enc.EncodeToken(xml.CharData("\n")); err != nil {
		return err
	}
	root := xml.StartElement{
		Name: xml.Name{Local: "worksheet"},
		Attr: []xml.Attr{attr("xmlns", nsMain), attr("xmlns:r", nsRelationships)},
	}
	if err := s.enc.EncodeToken(root); err != nil {
		return err
	}
	for _, section := range []func() error{
		s.writeDimension,
		s.writeSheetViews,
		s.writeSheetFormatPr,
		s.writeCols,
		s.writeSheetData,
		s.writePageMargins,
	} {
		if err := section(); err != nil {
			return err
		}
	}
	if err := s.enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return s.enc.Flush()
}

func (s *serializer) element(name string, v any) error {
	return s.enc.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: name}})
}

func (s *serializer) writeDimension() error {
	return s.element("dimension", &sml.CT_SheetDimension{RefAttr: s.ws.dim.Ref()})
}

func (s *serializer) writeSheetViews() error {
	views := xml.StartElement{Name: xml.Name{Local: "sheetViews"}}
	if err := s.enc.EncodeToken(views); err != nil {
		return err
	}
	view := &sml.CT_SheetView{WorkbookViewIdAttr: 0}
	if s.ws.selected {
		view.TabSelectedAttr = boolPtr(true)
	}
	if err := s.element("sheetView", view); err != nil {
		return err
	}
	return s.enc.EncodeToken(views.End())
}

func (s *serializer) writeSheetFormatPr() error {
	pr := &sml.CT_SheetFormatPr{DefaultRowHeightAttr: DefaultRowHeight}
	var rowLevel uint8
	for _, r := range s.ws.grid.rows {
		rowLevel = max(rowLevel, r.level)
	}
	if rowLevel > 0 {
		pr.OutlineLevelRowAttr = &rowLevel
	}
	if colLevel := s.ws.cols.maxLevel(); colLevel > 0 {
		pr.OutlineLevelColAttr = &colLevel
	}
	return s.element("sheetFormatPr", pr)
}

func (s *serializer) writeCols() error {
	runs := s.ws.cols.Runs()
	if len(runs) == 0 {
		return nil
	}
	cols := xml.StartElement{Name: xml.Name{Local: "cols"}}
	if err := s.enc.EncodeToken(cols); err != nil {
		return err
	}
	for _, run := range runs {
		if err := s.element("col", colInfo(run)); err != nil {
			return err
		}
	}
	return s.enc.EncodeToken(cols.End())
}

// colInfo maps a run to its <col> element. A hidden column left at the
// default width is written with width 0.
func colInfo(run ColumnRun) *sml.CT_Col {
	width := run.Width
	custom := width != DefaultColumnWidth
	if run.Hidden && !custom {
		width = 0
		custom = true
	}
	col := &sml.CT_Col{
		MinAttr: uint32(run.First + 1),
		MaxAttr: uint32(run.Last + 1),
	}
	w := excelWidth(width)
	col.WidthAttr = &w
	if hasFormat(run.Format) {
		idx := run.Format.XFIndex()
		col.StyleAttr = &idx
	}
	if run.Hidden {
		col.HiddenAttr = boolPtr(true)
	}
	if custom {
		col.CustomWidthAttr = boolPtr(true)
	}
	if run.Level > 0 {
		lvl := run.Level
		col.OutlineLevelAttr = &lvl
	}
	if run.Collapsed {
		col.CollapsedAttr = boolPtr(true)
	}
	return col
}

func (s *serializer) writeSheetData() error {
	data := xml.StartElement{Name: xml.Name{Local: "sheetData"}}
	if err := s.enc.EncodeToken(data); err != nil {
		return err
	}
	s.spans = rowSpans(s.ws.grid.rows)
	for _, r := range s.ws.grid.rows {
		if err := s.writeRow(r); err != nil {
			return err
		}
	}
	return s.enc.EncodeToken(data.End())
}

// rowSpans computes the "first:last" column hint, one-based, for each block
// of spanBlock rows that holds at least one cell.
func rowSpans(rows []*Row) map[int]string {
	type bounds struct{ lo, hi int }
	blocks := make(map[int]bounds)
	for _, r := range rows {
		if len(r.cells) == 0 {
			continue
		}
		b := r.num / spanBlock
		lo, hi := r.cells[0].Col, r.cells[len(r.cells)-1].Col
		if cur, ok := blocks[b]; ok {
			lo, hi = min(lo, cur.lo), max(hi, cur.hi)
		}
		blocks[b] = bounds{lo, hi}
	}
	spans := make(map[int]string, len(blocks))
	for b, v := range blocks {
		spans[b] = strconv.Itoa(v.lo+1) + ":" + strconv.Itoa(v.hi+1)
	}
	return spans
}

func (s *serializer) writeRow(r *Row) error {
	start := xml.StartElement{Name: xml.Name{Local: "row"}}
	start.Attr = append(start.Attr, attr("r", strconv.Itoa(r.num+1)))
	if len(r.cells) > 0 {
		start.Attr = append(start.Attr, attr("spans", s.spans[r.num/spanBlock]))
	}
	if r.changed {
		if hasFormat(r.format) {
			start.Attr = append(start.Attr,
				attr("s", strconv.FormatUint(uint64(r.format.XFIndex()), 10)),
				attr("customFormat", "1"))
		}
		if r.height != DefaultRowHeight {
			start.Attr = append(start.Attr, attr("ht", formatNumber(r.height)), attr("customHeight", "1"))
		}
		if r.hidden {
			start.Attr = append(start.Attr, attr("hidden", "1"))
		}
		if r.level > 0 {
			start.Attr = append(start.Attr, attr("outlineLevel", strconv.Itoa(int(r.level))))
		}
		if r.collapsed {
			start.Attr = append(start.Attr, attr("collapsed", "1"))
		}
	}
	if err := s.enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range r.cells {
		if err := s.writeCell(r, c); err != nil {
			return err
		}
	}
	return s.enc.EncodeToken(start.End())
}

func (s *serializer) writeCell(r *Row, c *Cell) error {
	start := xml.StartElement{Name: xml.Name{Local: "c"}}
	start.Attr = append(start.Attr, attr("r", CellName(r.num, c.Col)))
	if f := s.ws.resolve(r, c, c.Col); f != nil {
		start.Attr = append(start.Attr, attr("s", strconv.FormatUint(uint64(f.XFIndex()), 10)))
	}
	s.cells++

	switch v := c.Value.(type) {
	case Number:
		return s.leaf(start, "v", formatNumber(float64(v)))
	case StringRef:
		start.Attr = append(start.Attr, attr("t", "s"))
		return s.leaf(start, "v", strconv.Itoa(v.ID))
	case Formula:
		s.formulas++
		result := "0"
		switch cached := v.Cached.(type) {
		case NumberResult:
			result = formatNumber(float64(cached))
		case StringResult:
			start.Attr = append(start.Attr, attr("t", "str"))
			result = string(cached)
		}
		if err := s.enc.EncodeToken(start); err != nil {
			return err
		}
		if err := s.text("f", v.Text); err != nil {
			return err
		}
		if err := s.text("v", result); err != nil {
			return err
		}
		return s.enc.EncodeToken(start.End())
	case Blank:
		if err := s.enc.EncodeToken(start); err != nil {
			return err
		}
		return s.enc.EncodeToken(start.End())
	default:
		return errors.Newf("cell %s: unknown value type %T", CellName(r.num, c.Col), c.Value)
	}
}

// leaf writes <start><name>text</name></start>.
func (s *serializer) leaf(start xml.StartElement, name, text string) error {
	if err := s.enc.EncodeToken(start); err != nil {
		return err
	}
	if err := s.text(name, text); err != nil {
		return err
	}
	return s.enc.EncodeToken(start.End())
}

func (s *serializer) text(name, text string) error {
	el := xml.StartElement{Name: xml.Name{Local: name}}
	if err := s.enc.EncodeToken(el); err != nil {
		return err
	}
	if err := s.enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return s.enc.EncodeToken(el.End())
}

func (s *serializer) writePageMargins() error {
	return s.element("pageMargins", &sml.CT_PageMargins{
		LeftAttr:   0.7,
		RightAttr:  0.7,
		TopAttr:    0.75,
		BottomAttr: 0.75,
		HeaderAttr: 0.3,
		FooterAttr: 0.3,
	})
}

// formatNumber renders v with up to 16 significant digits, the precision
// Excel writes.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func boolPtr(b bool) *bool { return &b }
