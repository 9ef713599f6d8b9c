package worksheet

// Value is the payload held by a Cell. The concrete types are Number,
// StringRef, Formula and Blank; the set is closed.
type Value interface {
	isValue()
}

// Number is a numeric cell value.
type Number float64

// StringRef points into the shared-string table. The text itself is never
// stored in the grid.
type StringRef struct {
	ID int
}

// Formula is stored as opaque text without the leading '='. Cached is the
// value shown before the formula is recalculated; nil means 0.
type Formula struct {
	Text   string
	Cached Result
}

// Blank marks a cell that exists only to carry a format.
type Blank struct{}

func (Number) isValue()    {}
func (StringRef) isValue() {}
func (Formula) isValue()   {}
func (Blank) isValue()     {}

// Result is the cached result of a Formula: NumberResult or StringResult.
type Result interface {
	isResult()
}

type NumberResult float64

type StringResult string

func (NumberResult) isResult() {}
func (StringResult) isResult() {}

// Cell is one populated coordinate of a Row.
type Cell struct {
	Col    int
	Value  Value
	Format Format
}
