package worksheet

import (
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/spreadsheet/reference"
)

// CellName returns the A1 name of a zero-based coordinate.
func CellName(row, col int) string {
	return ColumnName(col) + strconv.Itoa(row+1)
}

// ColumnName returns the letters of a zero-based column, "A" for 0.
func ColumnName(col int) string {
	return reference.IndexToColumn(uint32(col))
}

// RangeName returns "A1:C3" for the rectangle (r1, c1)-(r2, c2), or the
// single cell name when both corners coincide.
func RangeName(r1, c1, r2, c2 int) string {
	if r1 == r2 && c1 == c2 {
		return CellName(r1, c1)
	}
	return CellName(r1, c1) + ":" + CellName(r2, c2)
}

// ParseCell converts an A1 reference such as "C2" or "$C$2" to a zero-based
// (row, col) pair.
func ParseCell(ref string) (row, col int, err error) {
	ref = strings.TrimSpace(ref)
	if !isCellRef(ref) {
		return 0, 0, newWriteError(RangeError, "invalid cell reference %q", ref)
	}
	cr, err := reference.ParseCellReference(strings.ToUpper(ref))
	if err != nil || cr.RowIdx == 0 {
		return 0, 0, newWriteError(RangeError, "invalid cell reference %q", ref)
	}
	row, col = int(cr.RowIdx)-1, int(cr.ColumnIdx)
	if err := checkCell(row, col); err != nil {
		return 0, 0, err
	}
	return row, col, nil
}

// isCellRef matches [$]letters[$]digits.
func isCellRef(s string) bool {
	s = strings.TrimPrefix(s, "$")
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == 0 || i > 3 {
		return false
	}
	s = strings.TrimPrefix(s[i:], "$")
	if s == "" {
		return false
	}
	for j := 0; j < len(s); j++ {
		if s[j] < '0' || s[j] > '9' {
			return false
		}
	}
	return true
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// ParseColumns converts "B:D" or a single "B" to a zero-based inclusive
// column range.
func ParseColumns(ref string) (first, last int, err error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(ref), ":")
	if !found {
		hi = lo
	}
	if first, err = parseColumn(lo); err != nil {
		return 0, 0, err
	}
	if last, err = parseColumn(hi); err != nil {
		return 0, 0, err
	}
	if first > last {
		return 0, 0, newWriteError(RangeError, "column range %q is reversed", ref)
	}
	return first, last, nil
}

func parseColumn(s string) (int, error) {
	s = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" || len(s) > 3 {
		return 0, newWriteError(RangeError, "invalid column %q", s)
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return 0, newWriteError(RangeError, "invalid column %q", s)
		}
	}
	col := int(reference.ColumnToIndex(s))
	if err := checkCol(col); err != nil {
		return 0, err
	}
	return col, nil
}
