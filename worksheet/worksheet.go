// Package worksheet stores one sheet of a workbook as a sparse grid of rows
// and cells and serializes it to the OOXML worksheet part.
//
// A Worksheet is not safe for concurrent use.
package worksheet

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/olekukonko/ll"
)

// MaxStringLength is the longest string, in characters, a cell can hold.
const MaxStringLength = 32767

// MaxOutlineLevel is the deepest row or column grouping Excel supports.
const MaxOutlineLevel = 7

// StringTable interns cell strings. Ids must stay stable for the lifetime of
// the worksheet.
type StringTable interface {
	Intern(s string) (int, error)
}

// RowColOptions carries the visibility and grouping flags of SetRow and
// SetColumn.
type RowColOptions struct {
	Hidden    bool
	Level     uint8
	Collapsed bool
}

// Worksheet is one sheet of a workbook.
type Worksheet struct {
	name     string
	strings  StringTable
	grid     Grid
	dim      Dimension
	cols     ColumnTable
	selected bool
	recalc   bool
	date1904 bool
	log      *ll.Logger
}

// New returns an empty worksheet. Strings written to it are interned in
// strs, which is usually shared by every sheet of a workbook.
func New(name string, strs StringTable, opts ...Option) *Worksheet {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Worksheet{
		name:     name,
		strings:  strs,
		dim:      emptyDimension(),
		cols:     newColumnTable(cfg.maxColumnRuns),
		date1904: cfg.date1904,
		log:      cfg.logger,
	}
}

func (ws *Worksheet) Name() string { return ws.name }

// Select marks the worksheet as a selected tab.
func (ws *Worksheet) Select() { ws.selected = true }

func (ws *Worksheet) Selected() bool { return ws.selected }

// Grid exposes the row store for read-only traversal.
func (ws *Worksheet) Grid() *Grid { return &ws.grid }

// Dimension returns the bounding rectangle of all written cells.
func (ws *Worksheet) Dimension() Dimension { return ws.dim }

// Columns returns the column runs in ascending order.
func (ws *Worksheet) Columns() []ColumnRun { return ws.cols.Runs() }

// Column returns the run covering col.
func (ws *Worksheet) Column(col int) (ColumnRun, bool) { return ws.cols.Lookup(col) }

// Cell returns the cell at (row, col), or nil when the coordinate is empty.
func (ws *Worksheet) Cell(row, col int) *Cell {
	r := ws.grid.Row(row)
	if r == nil {
		return nil
	}
	return r.Cell(col)
}

// RecalcOnLoad reports whether the last serialization emitted a formula, in
// which case the workbook must ask Excel to recalculate on open.
func (ws *Worksheet) RecalcOnLoad() bool { return ws.recalc }

// Date1904 reports whether dates are stored in the 1904 date system.
func (ws *Worksheet) Date1904() bool { return ws.date1904 }

// Free releases every row and cell and resets the sheet to empty. It is safe
// to call more than once.
func (ws *Worksheet) Free() {
	ws.grid.reset()
	ws.cols.runs = nil
	ws.dim = emptyDimension()
}

// writeCell is the single mutation path for cell content. Coordinates are
// validated before anything is touched.
func (ws *Worksheet) writeCell(row, col int, v Value, f Format) error {
	_, c, err := ws.grid.getOrCreateCell(row, col)
	if err != nil {
		return err
	}
	c.Value = v
	c.Format = f
	ws.dim.Record(row, col)
	return nil
}

// WriteNumber writes a numeric cell.
func (ws *Worksheet) WriteNumber(row, col int, v float64, f Format) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return newWriteError(RangeError, "cell %s: %v is not a finite number", CellName(row, col), v)
	}
	return ws.writeCell(row, col, Number(v), f)
}

// WriteString interns s and writes a shared-string cell. An empty string
// writes a Blank when f is set and is otherwise ignored.
func (ws *Worksheet) WriteString(row, col int, s string, f Format) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	if s == "" {
		return ws.WriteBlank(row, col, f)
	}
	if n := utf8.RuneCountInString(s); n > MaxStringLength {
		return newWriteError(StringLengthError, "cell %s: string of %d characters exceeds %d",
			CellName(row, col), n, MaxStringLength)
	}
	if ws.strings == nil {
		return newWriteError(StringTableError, "cell %s: worksheet has no string table", CellName(row, col))
	}
	id, err := ws.strings.Intern(s)
	if err != nil {
		return newWriteError(StringTableError, "cell %s: intern string", CellName(row, col)).Wrap(err)
	}
	return ws.writeCell(row, col, StringRef{ID: id}, f)
}

// WriteFormula writes a formula whose displayed value is 0 until Excel
// recalculates it. A leading '=' is removed.
func (ws *Worksheet) WriteFormula(row, col int, formula string, f Format) error {
	return ws.writeFormula(row, col, formula, nil, f)
}

// WriteFormulaNum writes a formula with a cached numeric result.
func (ws *Worksheet) WriteFormulaNum(row, col int, formula string, f Format, result float64) error {
	return ws.writeFormula(row, col, formula, NumberResult(result), f)
}

// WriteFormulaStr writes a formula with a cached string result.
func (ws *Worksheet) WriteFormulaStr(row, col int, formula string, f Format, result string) error {
	return ws.writeFormula(row, col, formula, StringResult(result), f)
}

func (ws *Worksheet) writeFormula(row, col int, formula string, cached Result, f Format) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	if len(formula) > 0 && formula[0] == '=' {
		formula = formula[1:]
	}
	if formula == "" {
		return newWriteError(RangeError, "cell %s: empty formula", CellName(row, col))
	}
	return ws.writeCell(row, col, Formula{Text: formula, Cached: cached}, f)
}

// WriteBlank writes a cell that carries only a format. Without a format
// there is nothing to store and the call is a no-op.
func (ws *Worksheet) WriteBlank(row, col int, f Format) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	if !hasFormat(f) {
		return nil
	}
	return ws.writeCell(row, col, Blank{}, f)
}

// WriteDatetime writes t as an Excel serial date number. The cell needs a
// date number format to display as a date.
func (ws *Worksheet) WriteDatetime(row, col int, t time.Time, f Format) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	serial, err := ExcelDate(t, ws.date1904)
	if err != nil {
		return err
	}
	return ws.writeCell(row, col, Number(serial), f)
}

// Write dispatches on the dynamic type of v. nil writes a Blank, strings
// starting with '=' are written as formulas.
func (ws *Worksheet) Write(row, col int, v any, f Format) error {
	switch x := v.(type) {
	case nil:
		return ws.WriteBlank(row, col, f)
	case string:
		if len(x) > 1 && x[0] == '=' {
			return ws.WriteFormula(row, col, x, f)
		}
		return ws.WriteString(row, col, x, f)
	case float64:
		return ws.WriteNumber(row, col, x, f)
	case float32:
		return ws.WriteNumber(row, col, float64(x), f)
	case int:
		return ws.WriteNumber(row, col, float64(x), f)
	case int64:
		return ws.WriteNumber(row, col, float64(x), f)
	case int32:
		return ws.WriteNumber(row, col, float64(x), f)
	case uint:
		return ws.WriteNumber(row, col, float64(x), f)
	case uint32:
		return ws.WriteNumber(row, col, float64(x), f)
	case uint64:
		return ws.WriteNumber(row, col, float64(x), f)
	case bool:
		if x {
			return ws.WriteNumber(row, col, 1, f)
		}
		return ws.WriteNumber(row, col, 0, f)
	case time.Time:
		return ws.WriteDatetime(row, col, x, f)
	case fmt.Stringer:
		return ws.WriteString(row, col, x.String(), f)
	}
	return newWriteError(RangeError, "cell %s: unsupported value type %T", CellName(row, col), v)
}

// SetRow sets the height, format and flags of a row. A height of 0 hides
// the row. The format applies to cells of the row that have none.
func (ws *Worksheet) SetRow(row int, height float64, f Format, opts *RowColOptions) error {
	if err := checkRow(row); err != nil {
		return err
	}
	if height < 0 {
		return newWriteError(RangeError, "row %d: negative height %v", row, height)
	}
	var o RowColOptions
	if opts != nil {
		o = *opts
	}
	if o.Level > MaxOutlineLevel {
		return newWriteError(RangeError, "row %d: outline level %d exceeds %d", row, o.Level, MaxOutlineLevel)
	}
	if height == 0 {
		o.Hidden = true
		height = DefaultRowHeight
	}
	r, err := ws.grid.getOrCreateRow(row)
	if err != nil {
		return err
	}
	r.height = height
	r.format = f
	r.hidden = o.Hidden
	r.level = o.Level
	r.collapsed = o.Collapsed
	r.changed = true
	return nil
}

// SetColumn sets width, format and flags for the inclusive range
// first..last. A width of 0 hides the columns. Later calls win for the
// columns they overlap.
func (ws *Worksheet) SetColumn(first, last int, width float64, f Format, opts *RowColOptions) error {
	if width < 0 {
		return newWriteError(RangeError, "columns %d-%d: negative width %v", first, last, width)
	}
	run := ColumnRun{First: first, Last: last, Width: width, Format: f}
	if opts != nil {
		if opts.Level > MaxOutlineLevel {
			return newWriteError(RangeError, "columns %d-%d: outline level %d exceeds %d",
				first, last, opts.Level, MaxOutlineLevel)
		}
		run.Hidden, run.Level, run.Collapsed = opts.Hidden, opts.Level, opts.Collapsed
	}
	if width == 0 {
		run.Hidden = true
		run.Width = DefaultColumnWidth
	}
	if err := ws.cols.Set(run); err != nil {
		if Code(err) == CapacityError {
			ws.log.Debugf("%s: rejected columns %s:%s: %v", ws.name, ColumnName(first), ColumnName(last), err)
		}
		return err
	}
	return nil
}
