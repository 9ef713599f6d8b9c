package preview

import (
	"io"
	"strconv"

	"github.com/olekukonko/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderText writes sheet as a console table with A1-style column letters
// in the header and row numbers in the first column. Hidden rows and
// columns are left out.
func RenderText(w io.Writer, sheet RenderSheet) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithHeaderAlignment(tw.AlignCenter),
	)

	header := []string{""}
	for i, name := range sheet.ColNames {
		if !sheet.ColHidden[i] {
			header = append(header, name)
		}
	}
	table.Header(header)

	for _, row := range sheet.Rows {
		if row.Hidden {
			continue
		}
		line := []string{strconv.Itoa(row.Number + 1)}
		for col, hidden := range sheet.ColHidden {
			if hidden {
				continue
			}
			value := ""
			if cell := row.Cell(col); cell != nil {
				value = cell.Value
			}
			line = append(line, value)
		}
		if err := table.Append(line); err != nil {
			return errors.Newf("preview row %d", row.Number+1).Wrap(err)
		}
	}
	if err := table.Render(); err != nil {
		return errors.Newf("preview sheet %q", sheet.Name).Wrap(err)
	}
	return nil
}
