package worksheet

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/olekukonko/errors"
	"github.com/olekukonko/ll"
	"github.com/olekukonko/ll/lh"
	"github.com/unidoc/unioffice/schema/soo/sml"
)

func endToEndSheet(t *testing.T) (*Worksheet, *memStrings) {
	t.Helper()
	ws, strs := newTestSheet(t)
	if err := ws.WriteNumber(0, 0, 1234.567, nil); err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteString(0, 1, "Hello", nil); err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteFormulaNum(0, 2, "=A1+1", nil, 1235.567); err != nil {
		t.Fatal(err)
	}
	if err := ws.SetRow(0, 20, nil, nil); err != nil {
		t.Fatal(err)
	}
	return ws, strs
}

func TestAssembleEndToEnd(t *testing.T) {
	ws, strs := endToEndSheet(t)
	out := assemble(t, ws)

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`,
		`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`,
		`<dimension ref="A1:C1">`,
		`<sheetData><row r="1" spans="1:3" ht="20" customHeight="1">` +
			`<c r="A1"><v>1234.567</v></c>` +
			`<c r="B1" t="s"><v>0</v></c>` +
			`<c r="C1"><f>A1+1</f><v>1235.567</v></c>` +
			`</row></sheetData>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s\n%s", want, out)
		}
	}
	if strs.list[0] != "Hello" {
		t.Errorf("string 0 = %q, want Hello", strs.list[0])
	}
	if !ws.RecalcOnLoad() {
		t.Error("RecalcOnLoad() = false with a formula present")
	}

	order := []string{"<dimension", "<sheetViews", "<sheetFormatPr", "<sheetData", "<pageMargins", "</worksheet>"}
	last := -1
	for _, tag := range order {
		i := strings.Index(out, tag)
		if i <= last {
			t.Fatalf("%s out of order in\n%s", tag, out)
		}
		last = i
	}
	if strings.Contains(out, "<cols") {
		t.Error("<cols> written without column runs")
	}
}

func TestAssembleDecodes(t *testing.T) {
	ws, _ := endToEndSheet(t)
	if err := ws.SetColumn(1, 3, 30, italic, nil); err != nil {
		t.Fatal(err)
	}
	out := assemble(t, ws)

	doc := sml.NewWorksheet()
	if err := xml.Unmarshal([]byte(out), doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Dimension == nil || doc.Dimension.RefAttr != "A1:C1" {
		t.Fatalf("dimension = %+v, want A1:C1", doc.Dimension)
	}
	if doc.SheetData == nil || len(doc.SheetData.Row) != 1 {
		t.Fatalf("sheetData = %+v, want one row", doc.SheetData)
	}
	row := doc.SheetData.Row[0]
	if row.HtAttr == nil || *row.HtAttr != 20 {
		t.Errorf("row height = %v, want 20", row.HtAttr)
	}
	if len(row.C) != 3 {
		t.Fatalf("row has %d cells, want 3", len(row.C))
	}
	for i, ref := range []string{"A1", "B1", "C1"} {
		if row.C[i].RAttr == nil || *row.C[i].RAttr != ref {
			t.Errorf("cell %d ref = %v, want %s", i, row.C[i].RAttr, ref)
		}
	}
	if row.C[1].TAttr != sml.ST_CellTypeS {
		t.Errorf("B1 type = %v, want shared string", row.C[1].TAttr)
	}
	if f := row.C[2].F; f == nil || f.Content != "A1+1" {
		t.Errorf("C1 formula = %+v, want A1+1", f)
	}
	if v := row.C[2].V; v == nil || *v != "1235.567" {
		t.Errorf("C1 cached value = %v, want 1235.567", v)
	}

	if len(doc.Cols) != 1 || len(doc.Cols[0].Col) != 1 {
		t.Fatalf("cols = %+v, want one run", doc.Cols)
	}
	col := doc.Cols[0].Col[0]
	if col.MinAttr != 2 || col.MaxAttr != 4 {
		t.Errorf("col range = %d:%d, want 2:4", col.MinAttr, col.MaxAttr)
	}
	if col.WidthAttr == nil || *col.WidthAttr != 30.7109375 {
		t.Errorf("col width = %v, want 30.7109375", col.WidthAttr)
	}
	if col.StyleAttr == nil || *col.StyleAttr != 2 {
		t.Errorf("col style = %v, want 2", col.StyleAttr)
	}
	if col.CustomWidthAttr == nil || !*col.CustomWidthAttr {
		t.Error("customWidth not set")
	}
}

func TestAssembleEmptySheet(t *testing.T) {
	ws, _ := newTestSheet(t)
	out := assemble(t, ws)
	if !strings.Contains(out, `<dimension ref="A1">`) {
		t.Errorf("empty sheet dimension not A1:\n%s", out)
	}
	if !strings.Contains(out, "<sheetData></sheetData>") {
		t.Errorf("empty sheet has rows:\n%s", out)
	}
	if ws.RecalcOnLoad() {
		t.Error("RecalcOnLoad() = true without formulas")
	}
}

func TestAssembleBlankVersusAbsent(t *testing.T) {
	ws, _ := newTestSheet(t)
	if err := ws.WriteBlank(5, 5, bold); err != nil {
		t.Fatal(err)
	}
	out := assemble(t, ws)
	if !strings.Contains(out, `<c r="F6" s="1"></c>`) {
		t.Errorf("formatted blank missing:\n%s", out)
	}
	if strings.Contains(out, `r="G7"`) {
		t.Errorf("unwritten cell G7 present:\n%s", out)
	}
	if got := ws.Dimension().Ref(); got != "F6" {
		t.Errorf("dimension = %s, want F6", got)
	}
}

func TestAssembleRowAttributes(t *testing.T) {
	ws, _ := newTestSheet(t)
	if err := ws.SetRow(2, 0, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := ws.SetRow(3, 30, bold, &RowColOptions{Level: 2, Collapsed: true}); err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteNumber(3, 0, 5, nil); err != nil {
		t.Fatal(err)
	}
	if err := ws.SetRow(4, DefaultRowHeight, nil, nil); err != nil {
		t.Fatal(err)
	}
	out := assemble(t, ws)

	for _, want := range []string{
		`<row r="3" hidden="1"></row>`,
		`<row r="4" spans="1:1" s="1" customFormat="1" ht="30" customHeight="1" outlineLevel="2" collapsed="1"><c r="A4" s="1"><v>5</v></c></row>`,
		`<row r="5"></row>`,
		`outlineLevelRow="2"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s\n%s", want, out)
		}
	}
	if got := ws.Dimension().Ref(); got != "A4" {
		t.Errorf("dimension = %s, want A4: row properties must not widen it", got)
	}
}

func TestAssembleSpans(t *testing.T) {
	ws, _ := newTestSheet(t)
	for _, rc := range [][2]int{{0, 1}, {0, 3}, {1, 5}, {17, 0}} {
		if err := ws.WriteNumber(rc[0], rc[1], 1, nil); err != nil {
			t.Fatal(err)
		}
	}
	out := assemble(t, ws)
	for _, want := range []string{`<row r="1" spans="2:6">`, `<row r="2" spans="2:6">`, `<row r="18" spans="1:1">`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s\n%s", want, out)
		}
	}
}

func TestAssembleFormulaResults(t *testing.T) {
	ws, _ := newTestSheet(t)
	if err := ws.WriteFormula(0, 0, "=SUM(B1:B3)", nil); err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteFormulaStr(1, 0, `="a"&"b"`, nil, "ab"); err != nil {
		t.Fatal(err)
	}
	out := assemble(t, ws)
	if !strings.Contains(out, `<c r="A1"><f>SUM(B1:B3)</f><v>0</v></c>`) {
		t.Errorf("placeholder result missing:\n%s", out)
	}
	if !strings.Contains(out, `<c r="A2" t="str">`) || !strings.Contains(out, `<v>ab</v>`) {
		t.Errorf("string result missing:\n%s", out)
	}
}

func TestAssembleHiddenColumn(t *testing.T) {
	ws, _ := newTestSheet(t)
	if err := ws.SetColumn(0, 0, DefaultColumnWidth, nil, &RowColOptions{Hidden: true, Level: 1}); err != nil {
		t.Fatal(err)
	}
	if err := ws.SetColumn(1, 1, DefaultColumnWidth, bold, nil); err != nil {
		t.Fatal(err)
	}
	doc := sml.NewWorksheet()
	if err := xml.Unmarshal([]byte(assemble(t, ws)), doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	cols := doc.Cols[0].Col
	if len(cols) != 2 {
		t.Fatalf("got %d cols, want 2", len(cols))
	}
	if *cols[0].WidthAttr != 0 || cols[0].HiddenAttr == nil || !*cols[0].HiddenAttr {
		t.Errorf("hidden col = width %v hidden %v, want width 0 hidden", *cols[0].WidthAttr, cols[0].HiddenAttr)
	}
	if cols[1].CustomWidthAttr != nil && *cols[1].CustomWidthAttr {
		t.Error("default-width column marked customWidth")
	}
	if doc.SheetFormatPr == nil || doc.SheetFormatPr.OutlineLevelColAttr == nil || *doc.SheetFormatPr.OutlineLevelColAttr != 1 {
		t.Errorf("sheetFormatPr = %+v, want outlineLevelCol 1", doc.SheetFormatPr)
	}
}

func TestSetColumnZeroWidthHides(t *testing.T) {
	ws, _ := newTestSheet(t)
	if err := ws.SetColumn(2, 3, 0, nil, nil); err != nil {
		t.Fatal(err)
	}
	run, ok := ws.Column(3)
	if !ok || !run.Hidden || run.Width != DefaultColumnWidth {
		t.Fatalf("Column(3) = %+v, %t; want hidden at the default width", run, ok)
	}
	doc := sml.NewWorksheet()
	if err := xml.Unmarshal([]byte(assemble(t, ws)), doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	col := doc.Cols[0].Col[0]
	if *col.WidthAttr != 0 || col.HiddenAttr == nil || !*col.HiddenAttr {
		t.Errorf("col = width %v hidden %v, want width 0 hidden", *col.WidthAttr, col.HiddenAttr)
	}
}

func TestAssembleIsRepeatable(t *testing.T) {
	ws, _ := endToEndSheet(t)
	if a, b := assemble(t, ws), assemble(t, ws); a != b {
		t.Errorf("second pass differs:\n%s\n%s", a, b)
	}
}

func TestAssembleWriteFailure(t *testing.T) {
	ws, _ := endToEndSheet(t)
	var full bytes.Buffer
	if err := ws.AssembleXML(&full); err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{0, 10, 200, full.Len() - 1} {
		err := ws.AssembleXML(&failWriter{n: n})
		if err == nil {
			t.Fatalf("AssembleXML with %d writable bytes succeeded", n)
		}
		if !errors.Is(err, errDiskFull) {
			t.Errorf("error %v does not wrap the write failure", err)
		}
	}
}

func TestAssembleLogsSummary(t *testing.T) {
	mem := lh.NewMemoryHandler()
	logger := ll.New("test", ll.WithHandler(mem)).Enable()
	ws := New("Logged", newMemStrings(), WithLogger(logger))
	if err := ws.WriteFormula(0, 0, "=1+1", nil); err != nil {
		t.Fatal(err)
	}
	assemble(t, ws)
	var found bool
	for _, e := range mem.Entries() {
		if strings.Contains(e.Message, "recalculation on load") {
			found = true
		}
	}
	if !found {
		t.Errorf("no recalculation entry in %d log entries", len(mem.Entries()))
	}
}
