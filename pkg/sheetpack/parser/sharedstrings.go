package parser

import (
	"encoding/xml"
	"strconv"
)

const spreadsheetNS = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"

type xmlSST struct {
	XMLName xml.Name `xml:"sst"`
	SI      []xmlSI  `xml:"si"`
}

type xmlSI struct {
	T *string  `xml:"t"`
	R []xmlRun `xml:"r"`
}

type xmlRun struct {
	T string `xml:"t"`
}

// ParseSharedStrings decodes a sharedStrings part into the string list.
// Rich-text entries are flattened by concatenating their runs.
func ParseSharedStrings(data []byte) ([]string, error) {
	var sst xmlSST
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil, err
	}
	strings := make([]string, 0, len(sst.SI))
	for _, si := range sst.SI {
		if si.T != nil {
			strings = append(strings, *si.T)
			continue
		}
		var s string
		for _, run := range si.R {
			s += run.T
		}
		strings = append(strings, s)
	}
	return strings, nil
}

// StringTable is a dedup index over the shared string list. Existing
// entries keep their positions so cells written earlier stay valid.
type StringTable struct {
	items []string
	index map[string]int
}

// NewStringTable builds a table seeded with the existing shared strings.
func NewStringTable(existing []string) *StringTable {
	st := &StringTable{
		items: append([]string(nil), existing...),
		index: make(map[string]int, len(existing)),
	}
	for i, s := range existing {
		if _, ok := st.index[s]; !ok {
			st.index[s] = i
		}
	}
	return st
}

// Add returns the index of s, appending it when unseen.
func (st *StringTable) Add(s string) int {
	if i, ok := st.index[s]; ok {
		return i
	}
	i := len(st.items)
	st.items = append(st.items, s)
	st.index[s] = i
	return i
}

// Items returns the string list in index order.
func (st *StringTable) Items() []string {
	return st.items
}

// BuildSharedStrings serializes the string table into a sharedStrings part.
func BuildSharedStrings(items []string) ([]byte, error) {
	type si struct {
		T string `xml:"t"`
	}
	out := struct {
		XMLName     xml.Name `xml:"sst"`
		XMLNS       string   `xml:"xmlns,attr"`
		Count       string   `xml:"count,attr"`
		UniqueCount string   `xml:"uniqueCount,attr"`
		SI          []si     `xml:"si"`
	}{
		XMLNS:       spreadsheetNS,
		Count:       strconv.Itoa(len(items)),
		UniqueCount: strconv.Itoa(len(items)),
	}
	for _, s := range items {
		out.SI = append(out.SI, si{T: s})
	}
	data, err := xml.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
