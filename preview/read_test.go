package preview

import (
	"bytes"
	"slices"
	"testing"

	"github.com/aerissecure/xlsxwriter"
	"github.com/aerissecure/xlsxwriter/format"
)

func TestReadWorkbookMatchesBuildSheet(t *testing.T) {
	var buf bytes.Buffer
	wb := xlsxwriter.New(&buf)
	ws, err := wb.AddWorksheet("Data")
	if err != nil {
		t.Fatalf("failed to add sheet: %v", err)
	}
	fill := wb.AddFormat(format.Style{FillColor: "FFFF00"})
	if err := ws.SetColumn(1, 1, 20, fill, nil); err != nil {
		t.Fatalf("failed to set column: %v", err)
	}
	if err := ws.SetRow(2, 30, nil, nil); err != nil {
		t.Fatalf("failed to set row: %v", err)
	}
	if err := ws.WriteString(0, 0, "name", nil); err != nil {
		t.Fatalf("failed to write A1: %v", err)
	}
	if err := ws.WriteNumber(1, 1, 1.5, nil); err != nil {
		t.Fatalf("failed to write B2: %v", err)
	}
	if err := ws.WriteFormulaNum(2, 2, "B2*2", nil, 3); err != nil {
		t.Fatalf("failed to write C3: %v", err)
	}
	built := BuildSheet(ws, wb.Strings())
	if err := wb.Close(); err != nil {
		t.Fatalf("failed to close workbook: %v", err)
	}

	m, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("failed to read workbook: %v", err)
	}
	if len(m.Sheets) != 1 {
		t.Fatalf("got %d sheets, want 1", len(m.Sheets))
	}
	read := m.Sheets[0]

	if read.Name != built.Name || !slices.Equal(read.Cols, built.Cols) {
		t.Errorf("got sheet %s with columns %v, want %s with %v", read.Name, read.Cols, built.Name, built.Cols)
	}
	if len(read.Rows) != len(built.Rows) || len(read.ColWidths) != len(built.ColWidths) {
		t.Fatalf("got %dx%d, want %dx%d", len(read.Rows), len(read.ColWidths), len(built.Rows), len(built.ColWidths))
	}
	for i := range built.ColWidths {
		if read.ColWidths[i] != built.ColWidths[i] {
			t.Errorf("column %s: got %vpx, want %vpx", built.ColNames[i], read.ColWidths[i], built.ColWidths[i])
		}
	}
	for i, row := range built.Rows {
		if read.Rows[i].HeightPx != row.HeightPx {
			t.Errorf("row %d: got height %vpx, want %vpx", row.Number+1, read.Rows[i].HeightPx, row.HeightPx)
		}
		for j := range built.Cols {
			got, want := read.Rows[i].Cell(j), row.Cell(j)
			if (got == nil) != (want == nil) {
				t.Errorf("row %d col %d: got %v, want %v", i, j, got, want)
				continue
			}
			if want == nil {
				continue
			}
			if got.Ref != want.Ref || got.Kind != want.Kind || got.Value != want.Value {
				t.Errorf("%s: got (%d, %q), want (%d, %q)", want.Ref, got.Kind, got.Value, want.Kind, want.Value)
			}
		}
	}
	if got := read.Rows[2].Cell(2).Formula; got != "B2*2" {
		t.Errorf("C3: got formula %q, want B2*2", got)
	}
	if got := read.Rows[1].Cell(1).Style.BackgroundColor; got != "FFFF00" {
		t.Errorf("B2: got background %q, want the column fill", got)
	}
}

func TestReadWorkbookInvalid(t *testing.T) {
	data := []byte("not a zip")
	if _, err := ReadWorkbook(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("read succeeded on garbage input")
	}
}

func TestStoredColumnPx(t *testing.T) {
	for _, width := range []float64{1, 8.43, 20, 50} {
		stored := float64(uint16((columnPx(width))/7*256)) / 256
		if got, want := storedColumnPx(stored), columnPx(width); got != want {
			t.Errorf("width %v: got %vpx, want %vpx", width, got, want)
		}
	}
}
