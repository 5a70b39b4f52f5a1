package parser

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/danmolnar/sheetpack/pkg/sheetpack/models"
)

type xmlCellOut struct {
	XMLName xml.Name `xml:"c"`
	Ref     string   `xml:"r,attr"`
	Type    string   `xml:"t,attr,omitempty"`
	Value   string   `xml:"v"`
}

type xmlRowOut struct {
	XMLName xml.Name     `xml:"row"`
	R       string       `xml:"r,attr"`
	Spans   string       `xml:"spans,attr,omitempty"`
	Cells   []xmlCellOut `xml:"c"`
}

type xmlWorksheetOut struct {
	XMLName   xml.Name `xml:"worksheet"`
	XMLNS     string   `xml:"xmlns,attr"`
	Dimension struct {
		Ref string `xml:"ref,attr"`
	} `xml:"dimension"`
	SheetData struct {
		Rows []xmlRowOut `xml:"row"`
	} `xml:"sheetData"`
}

// BuildWorksheet serializes a table into a fresh worksheet part. String
// cells are routed through the string table and written as shared-string
// references; other values are written inline. Empty-string cells emit no
// <c> element, their position survives through the dimension reference.
func BuildWorksheet(table models.Table, shared *StringTable) ([]byte, error) {
	rows, cols := table.Dims()

	end := "A1"
	if rows > 0 && cols > 0 {
		var err error
		end, err = CoordsToRef(rows, cols)
		if err != nil {
			return nil, err
		}
	}

	var ws xmlWorksheetOut
	ws.XMLNS = spreadsheetNS
	ws.Dimension.Ref = "A1:" + end

	for i, row := range table {
		out := xmlRowOut{R: strconv.Itoa(i + 1)}
		if len(row) > 0 {
			out.Spans = fmt.Sprintf("1:%d", len(row))
		}
		for j, v := range row {
			if v == nil || v == "" {
				continue
			}
			ref, err := CoordsToRef(i+1, j+1)
			if err != nil {
				return nil, err
			}
			cell := xmlCellOut{Ref: ref}
			if s, ok := v.(string); ok {
				cell.Type = "s"
				cell.Value = strconv.Itoa(shared.Add(s))
			} else {
				cell.Value = FormatValue(v)
			}
			out.Cells = append(out.Cells, cell)
		}
		ws.SheetData.Rows = append(ws.SheetData.Rows, out)
	}

	data, err := xml.Marshal(ws)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
