package opc

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Relationship types and part names referenced by the write path.
const (
	RelTypeSharedStrings = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings"
	RelTypeWorksheet     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
)

const relsNS = "http://schemas.openxmlformats.org/package/2006/relationships"

// Relationships models a .rels part.
type Relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []Relationship `xml:"Relationship"`
}

// Relationship is a single package relationship entry.
type Relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// ParseRelationships decodes a .rels part.
func ParseRelationships(data []byte) (*Relationships, error) {
	var rels Relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, err
	}
	return &rels, nil
}

// Map returns relationship IDs mapped to their targets.
func (r *Relationships) Map() map[string]string {
	m := make(map[string]string, len(r.Rels))
	for _, rel := range r.Rels {
		m[rel.ID] = rel.Target
	}
	return m
}

// NextID allocates the next free "rId<n>" identifier.
func (r *Relationships) NextID() string {
	max := 0
	for _, rel := range r.Rels {
		n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId"))
		if err == nil && n > max {
			max = n
		}
	}
	return "rId" + strconv.Itoa(max+1)
}

// Add appends a relationship with a freshly allocated ID and returns it.
func (r *Relationships) Add(relType, target string) string {
	id := r.NextID()
	r.Rels = append(r.Rels, Relationship{ID: id, Type: relType, Target: target})
	return id
}

// Marshal serializes the relationships back into a .rels part.
func (r *Relationships) Marshal() ([]byte, error) {
	out := struct {
		XMLName xml.Name       `xml:"Relationships"`
		XMLNS   string         `xml:"xmlns,attr"`
		Rels    []Relationship `xml:"Relationship"`
	}{
		XMLNS: relsNS,
		Rels:  r.Rels,
	}
	data, err := xml.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
