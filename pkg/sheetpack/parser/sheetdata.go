package parser

import (
	"bytes"
	"encoding/xml"
	"io"
)

// Cell is one populated cell as it appears in a worksheet part.
type Cell struct {
	// Ref is the "A1"-style cell reference.
	Ref string
	// Type is the cell's t attribute ("s", "str", "inlineStr", "" for plain values).
	Type string
	// Value is the raw value text, shared-string index included.
	Value string
}

// ParseSheetData walks a worksheet part and returns the declared dimension
// reference plus every cell carrying a value. The walk is linear and keeps
// no tree; unknown elements are skipped by depth tracking.
func ParseSheetData(data []byte) (dimension string, cells []Cell, err error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}

		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "dimension":
			for _, attr := range se.Attr {
				if attr.Name.Local == "ref" {
					dimension = attr.Value
				}
			}
		case "c":
			cell, err := parseCellElement(decoder, se)
			if err != nil {
				return "", nil, err
			}
			if cell.Ref != "" && cell.Value != "" {
				cells = append(cells, cell)
			}
		}
	}
	return dimension, cells, nil
}

// parseCellElement consumes a <c> element and extracts its reference, type
// and value. Values live in <v>, or in <is><t> for inline strings.
func parseCellElement(decoder *xml.Decoder, start xml.StartElement) (Cell, error) {
	var cell Cell
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "r":
			cell.Ref = attr.Value
		case "t":
			cell.Type = attr.Value
		}
	}

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return cell, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "v", "t":
				text, err := readElementText(decoder)
				if err != nil {
					return cell, err
				}
				cell.Value += text
				depth--
			case "f":
				// formula text is not a value; skip the element
				if _, err := readElementText(decoder); err != nil {
					return cell, err
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return cell, nil
}

// readElementText collects character data until the current element closes.
func readElementText(decoder *xml.Decoder) (string, error) {
	var text string
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text, err
		}
		switch t := token.(type) {
		case xml.CharData:
			text += string(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text, nil
}
