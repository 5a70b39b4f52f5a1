// Package sheetpack reads and writes Excel workbooks through their packaged
// XML parts, keeping a whole worksheet in memory per load/save cycle.
package sheetpack

// ReadOption configures a sheet read.
type ReadOption func(*readConfig)

type readConfig struct {
	headers []string
}

// WithHeaders replaces the first row of the returned table with the given
// header values. The replacement is skipped when the lengths differ.
func WithHeaders(headers []string) ReadOption {
	return func(c *readConfig) {
		c.headers = headers
	}
}
