package xlsxwriter

import (
	"github.com/olekukonko/ll"

	"github.com/aerissecure/xlsxwriter/worksheet"
)

type config struct {
	logger        *ll.Logger
	maxColumnRuns int
	stringLimit   int
	date1904      bool
}

// Option configures a Workbook.
type Option func(*config)

// WithLogger sets the parent logger for the workbook and its worksheets.
// Without it the library logs nothing.
func WithLogger(l *ll.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxColumnRuns bounds the column property table of every worksheet.
func WithMaxColumnRuns(n int) Option {
	return func(c *config) { c.maxColumnRuns = n }
}

// WithStringLimit caps the number of unique shared strings. 0 is unlimited.
func WithStringLimit(n int) Option {
	return func(c *config) { c.stringLimit = n }
}

// WithDate1904 switches the workbook to the 1904 date system.
func WithDate1904(on bool) Option {
	return func(c *config) { c.date1904 = on }
}

func newConfig(opts []Option) config {
	c := config{
		logger:        ll.New("xlsxwriter"),
		maxColumnRuns: worksheet.DefaultMaxColumnRuns,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
