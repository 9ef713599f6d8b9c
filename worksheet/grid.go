package worksheet

import "sort"

// Excel's addressable limits, zero-based.
const (
	MaxRow = 1048575
	MaxCol = 16383
)

// Grid is the sparse row store of a worksheet. Rows are kept in ascending
// row-number order; memory grows with the rows actually touched.
type Grid struct {
	rows []*Row
}

// Rows returns every row in ascending order. The slice is shared with the
// grid and must not be modified.
func (g *Grid) Rows() []*Row { return g.rows }

// Len returns the number of rows.
func (g *Grid) Len() int { return len(g.rows) }

// Row returns the row numbered num, or nil.
func (g *Grid) Row(num int) *Row {
	i, ok := g.search(num)
	if !ok {
		return nil
	}
	return g.rows[i]
}

func (g *Grid) search(num int) (int, bool) {
	n := len(g.rows)
	if n == 0 || g.rows[n-1].num < num {
		return n, false
	}
	i := sort.Search(n, func(i int) bool { return g.rows[i].num >= num })
	return i, i < n && g.rows[i].num == num
}

// getOrCreateRow returns the existing row or links a new one in sorted
// position. It only fails for an out-of-range row number.
func (g *Grid) getOrCreateRow(num int) (*Row, error) {
	if err := checkRow(num); err != nil {
		return nil, err
	}
	i, ok := g.search(num)
	if ok {
		return g.rows[i], nil
	}
	r := newRow(num)
	g.rows = append(g.rows, nil)
	copy(g.rows[i+1:], g.rows[i:])
	g.rows[i] = r
	return r, nil
}

// getOrCreateCell validates both coordinates before touching the grid, so a
// RangeError never leaves an empty row behind.
func (g *Grid) getOrCreateCell(row, col int) (*Row, *Cell, error) {
	if err := checkCell(row, col); err != nil {
		return nil, nil, err
	}
	r, err := g.getOrCreateRow(row)
	if err != nil {
		return nil, nil, err
	}
	return r, r.getOrCreateCell(col), nil
}

func (g *Grid) reset() {
	for i := range g.rows {
		g.rows[i].cells = nil
		g.rows[i] = nil
	}
	g.rows = nil
}

func checkRow(row int) error {
	if row < 0 || row > MaxRow {
		return newWriteError(RangeError, "row %d out of range [0, %d]", row, MaxRow)
	}
	return nil
}

func checkCol(col int) error {
	if col < 0 || col > MaxCol {
		return newWriteError(RangeError, "column %d out of range [0, %d]", col, MaxCol)
	}
	return nil
}

func checkCell(row, col int) error {
	if err := checkRow(row); err != nil {
		return err
	}
	return checkCol(col)
}
