// Package output serializes workbook data for the CLI.
package output

import (
	"encoding/json"

	"github.com/danmolnar/sheetpack/pkg/sheetpack/models"
)

// workbookJSON is the top-level CLI output shape.
type workbookJSON struct {
	BookName string                  `json:"book_name"`
	Sheets   map[string]models.Table `json:"sheets"`
}

// SheetToJSON serializes a single sheet.
func SheetToJSON(sheet *models.Sheet, pretty bool) ([]byte, error) {
	return marshal(sheet, pretty)
}

// WorkbookToJSON serializes every sheet under the workbook file name.
func WorkbookToJSON(bookName string, sheets []*models.Sheet, pretty bool) ([]byte, error) {
	out := workbookJSON{
		BookName: bookName,
		Sheets:   make(map[string]models.Table, len(sheets)),
	}
	for _, sheet := range sheets {
		out.Sheets[sheet.Name] = sheet.Table
	}
	return marshal(out, pretty)
}

// ReadTableJSON decodes a JSON 2D array into a table. Numbers arrive as
// float64 from the decoder; integral ones are narrowed to int64 so they
// round-trip through the worksheet writer unchanged.
func ReadTableJSON(data []byte) (models.Table, error) {
	var table models.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	for _, row := range table {
		for i, v := range row {
			if f, ok := v.(float64); ok && f == float64(int64(f)) {
				row[i] = int64(f)
			}
		}
	}
	return table, nil
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
