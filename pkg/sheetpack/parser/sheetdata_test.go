package parser

import (
	"testing"

	"github.com/danmolnar/sheetpack/pkg/sheetpack/models"
)

const worksheetFixture = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <dimension ref="A1:C3"/>
  <sheetData>
    <row r="1" spans="1:3">
      <c r="A1" t="s"><v>0</v></c>
      <c r="B1"><v>42</v></c>
      <c r="C1"><v>1.5</v></c>
    </row>
    <row r="3" spans="1:2">
      <c r="A3" t="inlineStr"><is><t>inline</t></is></c>
      <c r="B3" t="str"><f>A1&amp;B1</f><v>calc</v></c>
    </row>
  </sheetData>
</worksheet>`

func TestParseSheetData(t *testing.T) {
	dimension, cells, err := ParseSheetData([]byte(worksheetFixture))
	if err != nil {
		t.Fatalf("ParseSheetData failed: %v", err)
	}

	if dimension != "A1:C3" {
		t.Errorf("dimension = %q, expected A1:C3", dimension)
	}
	if len(cells) != 5 {
		t.Fatalf("expected 5 cells, got %d", len(cells))
	}

	expected := []Cell{
		{Ref: "A1", Type: "s", Value: "0"},
		{Ref: "B1", Type: "", Value: "42"},
		{Ref: "C1", Type: "", Value: "1.5"},
		{Ref: "A3", Type: "inlineStr", Value: "inline"},
		{Ref: "B3", Type: "str", Value: "calc"},
	}
	for i, want := range expected {
		if cells[i] != want {
			t.Errorf("cell %d = %+v, expected %+v", i, cells[i], want)
		}
	}
}

func TestParseSheetDataNoDimension(t *testing.T) {
	data := `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData><row r="2"><c r="B2"><v>9</v></c></row></sheetData></worksheet>`

	dimension, cells, err := ParseSheetData([]byte(data))
	if err != nil {
		t.Fatalf("ParseSheetData failed: %v", err)
	}
	if dimension != "" {
		t.Errorf("dimension = %q, expected empty", dimension)
	}
	if len(cells) != 1 || cells[0].Ref != "B2" || cells[0].Value != "9" {
		t.Errorf("unexpected cells: %+v", cells)
	}
}

func TestParseSharedStrings(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="2" uniqueCount="2">
  <si><t>plain</t></si>
  <si><r><t>rich </t></r><r><t>text</t></r></si>
</sst>`

	strings, err := ParseSharedStrings([]byte(data))
	if err != nil {
		t.Fatalf("ParseSharedStrings failed: %v", err)
	}
	if len(strings) != 2 {
		t.Fatalf("expected 2 strings, got %d", len(strings))
	}
	if strings[0] != "plain" {
		t.Errorf("strings[0] = %q, expected %q", strings[0], "plain")
	}
	if strings[1] != "rich text" {
		t.Errorf("strings[1] = %q, expected %q", strings[1], "rich text")
	}
}

func TestStringTableDedup(t *testing.T) {
	st := NewStringTable([]string{"a", "b"})

	if i := st.Add("b"); i != 1 {
		t.Errorf("Add(existing) = %d, expected 1", i)
	}
	if i := st.Add("c"); i != 2 {
		t.Errorf("Add(new) = %d, expected 2", i)
	}
	if i := st.Add("c"); i != 2 {
		t.Errorf("Add(repeated) = %d, expected 2", i)
	}
	if len(st.Items()) != 3 {
		t.Errorf("expected 3 items, got %d", len(st.Items()))
	}
}

func TestBuildWorksheetRoundTrip(t *testing.T) {
	table := models.Table{
		{"Name", "Qty"},
		{"widget", int64(3)},
		{"", 2.5},
	}
	shared := NewStringTable(nil)

	data, err := BuildWorksheet(table, shared)
	if err != nil {
		t.Fatalf("BuildWorksheet failed: %v", err)
	}

	dimension, cells, err := ParseSheetData(data)
	if err != nil {
		t.Fatalf("ParseSheetData of built worksheet failed: %v", err)
	}
	if dimension != "A1:B3" {
		t.Errorf("dimension = %q, expected A1:B3", dimension)
	}

	// A3 held "" and must not be written
	if len(cells) != 5 {
		t.Fatalf("expected 5 cells, got %d: %+v", len(cells), cells)
	}

	items := shared.Items()
	wantShared := []string{"Name", "Qty", "widget"}
	if len(items) != len(wantShared) {
		t.Fatalf("expected %d shared strings, got %d", len(wantShared), len(items))
	}
	for i, want := range wantShared {
		if items[i] != want {
			t.Errorf("shared[%d] = %q, expected %q", i, items[i], want)
		}
	}

	for _, cell := range cells {
		switch cell.Ref {
		case "A1", "B1", "A2":
			if cell.Type != "s" {
				t.Errorf("cell %s type = %q, expected shared string", cell.Ref, cell.Type)
			}
		case "B2":
			if cell.Value != "3" {
				t.Errorf("cell B2 = %q, expected 3", cell.Value)
			}
		case "B3":
			if cell.Value != "2.5" {
				t.Errorf("cell B3 = %q, expected 2.5", cell.Value)
			}
		default:
			t.Errorf("unexpected cell %s", cell.Ref)
		}
	}
}

func TestBuildWorksheetEmptyTable(t *testing.T) {
	data, err := BuildWorksheet(models.Table{}, NewStringTable(nil))
	if err != nil {
		t.Fatalf("BuildWorksheet failed: %v", err)
	}
	dimension, cells, err := ParseSheetData(data)
	if err != nil {
		t.Fatalf("ParseSheetData failed: %v", err)
	}
	if dimension != "A1:A1" {
		t.Errorf("dimension = %q, expected A1:A1", dimension)
	}
	if len(cells) != 0 {
		t.Errorf("expected no cells, got %+v", cells)
	}
}

func TestBuildSharedStringsRoundTrip(t *testing.T) {
	data, err := BuildSharedStrings([]string{"one", "two"})
	if err != nil {
		t.Fatalf("BuildSharedStrings failed: %v", err)
	}
	strings, err := ParseSharedStrings(data)
	if err != nil {
		t.Fatalf("ParseSharedStrings failed: %v", err)
	}
	if len(strings) != 2 || strings[0] != "one" || strings[1] != "two" {
		t.Errorf("unexpected strings: %v", strings)
	}
}
