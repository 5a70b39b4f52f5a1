// Package models defines data structures for workbook reading and writing.
package models

// Table is a worksheet's content as ordered rows of cell values.
// Cell values are string, int64 or float64; empty cells hold "".
type Table [][]any

// NewTable returns a rows x cols table with every cell set to "".
func NewTable(rows, cols int) Table {
	t := make(Table, rows)
	for i := range t {
		row := make([]any, cols)
		for j := range row {
			row[j] = ""
		}
		t[i] = row
	}
	return t
}

// Dims returns the row count and the widest row's column count.
func (t Table) Dims() (rows, cols int) {
	rows = len(t)
	for _, row := range t {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return rows, cols
}

// Sheet represents a single worksheet snapshot.
type Sheet struct {
	// Name is the worksheet display name.
	Name string `json:"name"`
	// Table contains the sheet's rows and cells.
	Table Table `json:"rows"`
}
