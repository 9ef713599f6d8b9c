package worksheet

// Dimension is the bounding rectangle of every coordinate that has held a
// cell. Bounds only ever grow.
type Dimension struct {
	RowMin, RowMax int
	ColMin, ColMax int
}

func emptyDimension() Dimension {
	return Dimension{RowMin: MaxRow + 1, RowMax: 0, ColMin: MaxCol + 1, ColMax: 0}
}

// IsEmpty reports whether no coordinate has been recorded.
func (d Dimension) IsEmpty() bool {
	return d.RowMin > d.RowMax || d.ColMin > d.ColMax
}

// Record extends the rectangle to include (row, col).
func (d *Dimension) Record(row, col int) {
	if d.IsEmpty() {
		*d = Dimension{RowMin: row, RowMax: row, ColMin: col, ColMax: col}
		return
	}
	d.RowMin = min(d.RowMin, row)
	d.RowMax = max(d.RowMax, row)
	d.ColMin = min(d.ColMin, col)
	d.ColMax = max(d.ColMax, col)
}

// Contains reports whether (row, col) lies inside the rectangle.
func (d Dimension) Contains(row, col int) bool {
	return !d.IsEmpty() && row >= d.RowMin && row <= d.RowMax && col >= d.ColMin && col <= d.ColMax
}

// Ref renders the rectangle as an A1 reference. A single cell renders as
// "B2", a range as "A1:C3" and an empty dimension as "A1".
func (d Dimension) Ref() string {
	if d.IsEmpty() {
		return "A1"
	}
	first := CellName(d.RowMin, d.ColMin)
	if d.RowMin == d.RowMax && d.ColMin == d.ColMax {
		return first
	}
	return first + ":" + CellName(d.RowMax, d.ColMax)
}
