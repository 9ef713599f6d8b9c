package worksheet

import "sort"

const (
	// DefaultColumnWidth is Excel's default column width in characters.
	DefaultColumnWidth = 8.43
	// DefaultMaxColumnRuns bounds the column property table.
	DefaultMaxColumnRuns = 128
)

// ColumnRun is a contiguous, inclusive column range sharing one set of
// properties.
type ColumnRun struct {
	First, Last int
	Width       float64
	Format      Format
	Hidden      bool
	Level       uint8
	Collapsed   bool
}

func (r ColumnRun) sameProps(o ColumnRun) bool {
	return r.Width == o.Width && r.Format == o.Format && r.Hidden == o.Hidden &&
		r.Level == o.Level && r.Collapsed == o.Collapsed
}

// ColumnTable stores column properties as sorted, non-overlapping runs.
// Memory is proportional to the number of runs, not to the column count.
type ColumnTable struct {
	runs []ColumnRun
	max  int
}

func newColumnTable(max int) ColumnTable {
	return ColumnTable{max: max}
}

// Runs returns the runs in ascending column order.
func (t *ColumnTable) Runs() []ColumnRun { return t.runs }

// Len returns the number of runs.
func (t *ColumnTable) Len() int { return len(t.runs) }

// Lookup returns the run covering col.
func (t *ColumnTable) Lookup(col int) (ColumnRun, bool) {
	i := sort.Search(len(t.runs), func(i int) bool { return t.runs[i].Last >= col })
	if i < len(t.runs) && t.runs[i].First <= col {
		return t.runs[i], true
	}
	return ColumnRun{}, false
}

// Set overlays run on the table. Existing runs are cut back where they
// overlap it and neighbouring runs with equal properties are joined. The
// table is left untouched when the result would exceed the capacity.
func (t *ColumnTable) Set(run ColumnRun) error {
	if err := checkCol(run.First); err != nil {
		return err
	}
	if err := checkCol(run.Last); err != nil {
		return err
	}
	if run.First > run.Last {
		return newWriteError(RangeError, "first column %d is after last column %d", run.First, run.Last)
	}

	next := make([]ColumnRun, 0, len(t.runs)+2)
	placed := false
	for _, r := range t.runs {
		if r.Last < run.First {
			next = append(next, r)
			continue
		}
		if r.First > run.Last {
			if !placed {
				next = append(next, run)
				placed = true
			}
			next = append(next, r)
			continue
		}
		if r.First < run.First {
			left := r
			left.Last = run.First - 1
			next = append(next, left)
		}
		if !placed {
			next = append(next, run)
			placed = true
		}
		if r.Last > run.Last {
			right := r
			right.First = run.Last + 1
			next = append(next, right)
		}
	}
	if !placed {
		next = append(next, run)
	}
	next = joinRuns(next)

	if t.max > 0 && len(next) > t.max {
		return newWriteError(CapacityError, "column table full: %d runs exceed the maximum of %d", len(next), t.max)
	}
	t.runs = next
	return nil
}

func joinRuns(runs []ColumnRun) []ColumnRun {
	out := runs[:0]
	for _, r := range runs {
		if n := len(out); n > 0 && out[n-1].Last+1 == r.First && out[n-1].sameProps(r) {
			out[n-1].Last = r.Last
			continue
		}
		out = append(out, r)
	}
	return out
}

// maxLevel returns the highest outline level over all runs.
func (t *ColumnTable) maxLevel() uint8 {
	var lvl uint8
	for _, r := range t.runs {
		lvl = max(lvl, r.Level)
	}
	return lvl
}

// excelWidth converts a width in characters to the value Excel stores: the
// pixel width rounded for a 7px maximum digit width plus 5px padding, kept
// at 1/256 character precision.
func excelWidth(width float64) float64 {
	const digit, padding = 7.0, 5.0
	if width <= 0 {
		return 0
	}
	var px float64
	if width < 1 {
		px = float64(uint16(width*(digit+padding) + 0.5))
	} else {
		px = float64(uint16(width*digit+0.5)) + padding
	}
	return float64(uint16(px/digit*256)) / 256
}
