package xlsxwriter

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olekukonko/errors"
	"github.com/olekukonko/ll"
	"github.com/olekukonko/ll/lh"
	"github.com/xuri/excelize/v2"

	"github.com/aerissecure/xlsxwriter/format"
)

func readPart(t *testing.T, pkg []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestWorkbookRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	wb := New(&buf)
	ws, err := wb.AddWorksheet("Data")
	if err != nil {
		t.Fatal(err)
	}
	bold := wb.AddFormat(format.Style{Bold: true})
	steps := []error{
		ws.WriteNumber(0, 0, 1234.567, nil),
		ws.WriteString(0, 1, "Hello", nil),
		ws.WriteFormulaNum(0, 2, "=A1+1", nil, 1235.567),
		ws.SetRow(0, 20, nil, nil),
		ws.SetColumn(1, 1, 30, nil, nil),
		ws.WriteString(2, 1, "Hello", bold),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	wb.SetProperties(Properties{Title: "Report", Author: "QA", Created: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)})
	if err := wb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("excelize.OpenReader: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 1 || got[0] != "Data" {
		t.Errorf("sheets = %v, want [Data]", got)
	}
	for cell, want := range map[string]string{"A1": "1234.567", "B1": "Hello", "C1": "1235.567", "B3": "Hello"} {
		got, err := f.GetCellValue("Data", cell)
		if err != nil || got != want {
			t.Errorf("GetCellValue(%s) = %q, %v; want %q", cell, got, err, want)
		}
	}
	if got, err := f.GetCellFormula("Data", "C1"); err != nil || got != "A1+1" {
		t.Errorf("GetCellFormula(C1) = %q, %v; want A1+1", got, err)
	}
	if got, err := f.GetRowHeight("Data", 1); err != nil || got != 20 {
		t.Errorf("GetRowHeight(1) = %v, %v; want 20", got, err)
	}
	if got, err := f.GetColWidth("Data", "B"); err != nil || got != 30.7109375 {
		t.Errorf("GetColWidth(B) = %v, %v; want 30.7109375", got, err)
	}
	styleID, err := f.GetCellStyle("Data", "B3")
	if err != nil {
		t.Fatal(err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style.Font == nil || !style.Font.Bold {
		t.Errorf("B3 style = %+v, %v; want bold", style, err)
	}
	props, err := f.GetDocProps()
	if err != nil || props.Title != "Report" || props.Creator != "QA" {
		t.Errorf("doc props = %+v, %v", props, err)
	}

	if wbXML := readPart(t, buf.Bytes(), "xl/workbook.xml"); !strings.Contains(wbXML, "fullCalcOnLoad=") {
		t.Errorf("workbook.xml has no fullCalcOnLoad:\n%s", wbXML)
	}
	if ws.Grid().Len() != 0 {
		t.Error("worksheet not freed after Close")
	}
}

func TestWorkbookNoFormulaNoRecalc(t *testing.T) {
	var buf bytes.Buffer
	wb := New(&buf)
	ws, _ := wb.AddWorksheet("")
	if err := ws.WriteNumber(0, 0, 1, nil); err != nil {
		t.Fatal(err)
	}
	if err := wb.Close(); err != nil {
		t.Fatal(err)
	}
	if wbXML := readPart(t, buf.Bytes(), "xl/workbook.xml"); strings.Contains(wbXML, "fullCalcOnLoad") {
		t.Errorf("fullCalcOnLoad set without formulas:\n%s", wbXML)
	}
	if ct := readPart(t, buf.Bytes(), "[Content_Types].xml"); strings.Contains(ct, "sharedStrings") {
		t.Error("content types list sharedStrings for a workbook without strings")
	}
}

func TestWorkbookCloseTwice(t *testing.T) {
	var buf bytes.Buffer
	wb := New(&buf)
	if err := wb.Close(); err != nil {
		t.Fatal(err)
	}
	n := buf.Len()
	if err := wb.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close = %v, want ErrClosed", err)
	}
	if buf.Len() != n {
		t.Error("second Close wrote data")
	}
	if _, err := wb.AddWorksheet("late"); !errors.Is(err, ErrClosed) {
		t.Errorf("AddWorksheet after Close = %v, want ErrClosed", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("empty workbook does not open: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 1 || got[0] != "Sheet1" {
		t.Errorf("sheets = %v, want [Sheet1]", got)
	}
}

func TestSheetNames(t *testing.T) {
	wb := New(io.Discard)
	first, err := wb.AddWorksheet("")
	if err != nil || first.Name() != "Sheet1" || !first.Selected() {
		t.Fatalf("first sheet = %v, %v", first, err)
	}
	if _, err := wb.AddWorksheet("Totals"); err != nil {
		t.Fatal(err)
	}
	bad := []string{
		"totals",
		strings.Repeat("x", MaxSheetNameLength+1),
		"a/b",
		"[x]",
		"'quoted",
		"quoted'",
	}
	for _, name := range bad {
		if _, err := wb.AddWorksheet(name); !errors.Is(err, ErrSheetName) {
			t.Errorf("AddWorksheet(%q) = %v, want ErrSheetName", name, err)
		}
	}
	if ws, ok := wb.Worksheet("TOTALS"); !ok || ws.Name() != "Totals" || ws.Selected() {
		t.Errorf("Worksheet(TOTALS) = %v, %t", ws, ok)
	}
	if ws, _ := wb.AddWorksheet(""); ws.Name() != "Sheet3" {
		t.Errorf("third default name = %q, want Sheet3", ws.Name())
	}
}

func TestNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")
	wb, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	ws, _ := wb.AddWorksheet("One")
	if err := ws.WriteString(0, 0, "x", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("target exists before Close: %v", err)
	}
	if err := wb.Close(); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue("One", "A1"); got != "x" {
		t.Errorf("A1 = %q, want x", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the workbook", len(entries))
	}
}

func TestAbort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")
	wb, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	ws, _ := wb.AddWorksheet("")
	if err := ws.WriteNumber(0, 0, 1, nil); err != nil {
		t.Fatal(err)
	}
	wb.Abort()
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("directory holds %d entries after Abort, want none", len(entries))
	}
	if err := wb.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("Close after Abort = %v, want ErrClosed", err)
	}
	if !ws.Dimension().IsEmpty() {
		t.Errorf("worksheet still holds cells after Abort")
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestCloseWriteError(t *testing.T) {
	wb := New(brokenWriter{})
	ws, _ := wb.AddWorksheet("")
	if err := ws.WriteFormula(0, 0, "=1", nil); err != nil {
		t.Fatal(err)
	}
	if err := wb.Close(); err == nil {
		t.Fatal("Close succeeded on a broken writer")
	}
}

func TestWorkbookLogging(t *testing.T) {
	mem := lh.NewMemoryHandler()
	logger := ll.New("test", ll.WithHandler(mem)).Enable()
	wb := New(io.Discard, WithLogger(logger))
	ws, _ := wb.AddWorksheet("")
	if err := ws.WriteFormula(0, 0, "=1+1", nil); err != nil {
		t.Fatal(err)
	}
	if err := wb.Close(); err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, e := range mem.Entries() {
		if strings.Contains(e.Message, "fullCalcOnLoad") {
			found = true
		}
	}
	if !found {
		t.Error("no fullCalcOnLoad log entry")
	}
}
