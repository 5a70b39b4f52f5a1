package output

import (
	"encoding/csv"
	"io"

	"github.com/danmolnar/sheetpack/pkg/sheetpack/models"
	"github.com/danmolnar/sheetpack/pkg/sheetpack/parser"
)

// WriteCSV renders a table as CSV.
func WriteCSV(w io.Writer, table models.Table) error {
	cw := csv.NewWriter(w)
	for _, row := range table {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = parser.FormatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV decodes CSV into a table, re-typing numeric fields the same way
// the worksheet reader does.
func ReadCSV(r io.Reader) (models.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var table models.Table
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]any, len(record))
		for i, field := range record {
			row[i] = parser.ParseValue(field)
		}
		table = append(table, row)
	}
	return table, nil
}
