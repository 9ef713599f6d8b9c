package worksheet

import "github.com/olekukonko/ll"

type config struct {
	logger        *ll.Logger
	maxColumnRuns int
	date1904      bool
}

func defaultConfig() config {
	return config{
		logger:        ll.New("xlsxwriter/worksheet"),
		maxColumnRuns: DefaultMaxColumnRuns,
	}
}

// Option configures a Worksheet.
type Option func(*config)

// WithLogger routes the worksheet's debug output to l. The default logger
// is disabled.
func WithLogger(l *ll.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l.Namespace("worksheet")
		}
	}
}

// WithMaxColumnRuns sets how many column runs SetColumn may create before it
// fails with a CapacityError. Zero or less removes the limit.
func WithMaxColumnRuns(n int) Option {
	return func(c *config) { c.maxColumnRuns = n }
}

// WithDate1904 makes WriteDatetime use the 1904 date system.
func WithDate1904(on bool) Option {
	return func(c *config) { c.date1904 = on }
}
