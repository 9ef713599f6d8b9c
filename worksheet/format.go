package worksheet

// Format is the non-owning reference a cell, row or column holds to an entry
// of the workbook's format registry. Only the cell-format index is ever read.
// An index of 0 is the default format and counts as unset.
type Format interface {
	XFIndex() uint32
}

func hasFormat(f Format) bool {
	return f != nil && f.XFIndex() != 0
}

// ResolveFormat returns the format in effect at (row, col): the cell's own
// format, else the row's, else the column run's, else nil. Row wins over
// column. It is evaluated on every call so later SetRow and SetColumn calls
// apply to cells written before them.
func (ws *Worksheet) ResolveFormat(row, col int) Format {
	r := ws.grid.Row(row)
	var c *Cell
	if r != nil {
		c = r.Cell(col)
	}
	return ws.resolve(r, c, col)
}

func (ws *Worksheet) resolve(r *Row, c *Cell, col int) Format {
	if c != nil && hasFormat(c.Format) {
		return c.Format
	}
	if r != nil && hasFormat(r.format) {
		return r.format
	}
	if run, ok := ws.cols.Lookup(col); ok && hasFormat(run.Format) {
		return run.Format
	}
	return nil
}
