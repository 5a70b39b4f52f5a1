package opc

import "encoding/xml"

const contentTypesNS = "http://schemas.openxmlformats.org/package/2006/content-types"

// ContentTypeSharedStrings is the content type of xl/sharedStrings.xml.
const ContentTypeSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"

// ContentTypes models the [Content_Types].xml part.
type ContentTypes struct {
	XMLName   xml.Name     `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ParseContentTypes decodes [Content_Types].xml.
func ParseContentTypes(data []byte) (*ContentTypes, error) {
	var ct ContentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

// HasOverride reports whether the part is already registered.
func (ct *ContentTypes) HasOverride(partName string) bool {
	for _, o := range ct.Overrides {
		if o.PartName == partName {
			return true
		}
	}
	return false
}

// AddOverride registers a part with its content type.
func (ct *ContentTypes) AddOverride(partName, contentType string) {
	ct.Overrides = append(ct.Overrides, ctOverride{PartName: partName, ContentType: contentType})
}

// Marshal serializes the part list back into [Content_Types].xml.
func (ct *ContentTypes) Marshal() ([]byte, error) {
	out := struct {
		XMLName   xml.Name     `xml:"Types"`
		XMLNS     string       `xml:"xmlns,attr"`
		Defaults  []ctDefault  `xml:"Default"`
		Overrides []ctOverride `xml:"Override"`
	}{
		XMLNS:     contentTypesNS,
		Defaults:  ct.Defaults,
		Overrides: ct.Overrides,
	}
	data, err := xml.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
