package worksheet

import "sort"

// DefaultRowHeight is Excel's default row height in points.
const DefaultRowHeight = 15.0

// Row holds the cells of one row number in ascending column order together
// with the row-level overrides set through SetRow.
type Row struct {
	num       int
	height    float64
	format    Format
	hidden    bool
	level     uint8
	collapsed bool
	changed   bool
	cells     []*Cell
}

func newRow(num int) *Row {
	return &Row{num: num, height: DefaultRowHeight}
}

func (r *Row) Number() int { return r.num }
func (r *Row) Height() float64 { return r.height }
func (r *Row) Format() Format { return r.format }
func (r *Row) Hidden() bool { return r.hidden }
func (r *Row) Level() uint8 { return r.level }
func (r *Row) Collapsed() bool { return r.collapsed }

// Changed reports whether SetRow was called for this row. Rows created only
// by cell writes serialize without row-level attributes.
func (r *Row) Changed() bool { return r.changed }

// Cells returns the row's cells in ascending column order. The slice is
// shared with the row and must not be modified.
func (r *Row) Cells() []*Cell { return r.cells }

// Len returns the number of cells in the row.
func (r *Row) Len() int { return len(r.cells) }

// Cell returns the cell at col, or nil.
func (r *Row) Cell(col int) *Cell {
	i, ok := r.search(col)
	if !ok {
		return nil
	}
	return r.cells[i]
}

func (r *Row) search(col int) (int, bool) {
	n := len(r.cells)
	// Writes usually arrive left to right.
	if n == 0 || r.cells[n-1].Col < col {
		return n, false
	}
	i := sort.Search(n, func(i int) bool { return r.cells[i].Col >= col })
	return i, i < n && r.cells[i].Col == col
}

// getOrCreateCell returns the cell at col, inserting an empty one in sorted
// position when the coordinate is unoccupied.
func (r *Row) getOrCreateCell(col int) *Cell {
	i, ok := r.search(col)
	if ok {
		return r.cells[i]
	}
	c := &Cell{Col: col}
	r.cells = append(r.cells, nil)
	copy(r.cells[i+1:], r.cells[i:])
	r.cells[i] = c
	return c
}
