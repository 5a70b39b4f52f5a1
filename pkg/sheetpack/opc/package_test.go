package opc

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeZip creates a zip file with the given entries.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

func TestPackageReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.zip")
	writeZip(t, path, map[string]string{
		"xl/workbook.xml":     "<workbook/>",
		"xl/theme/theme1.xml": "<theme/>",
		"docProps/core.xml":   "<core/>",
	})

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer p.Close()

	data, err := p.ReadFile("xl/workbook.xml")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "<workbook/>" {
		t.Errorf("ReadFile = %q", data)
	}

	if !p.Has("docProps/core.xml") {
		t.Error("Has(docProps/core.xml) = false")
	}
	if p.Has("missing.xml") {
		t.Error("Has(missing.xml) = true")
	}

	if _, err := p.ReadFile("missing.xml"); !errors.Is(err, ErrPartNotFound) {
		t.Errorf("expected ErrPartNotFound, got %v", err)
	}
}

func TestPackageFolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.zip")
	writeZip(t, path, map[string]string{
		"xl/theme/theme1.xml":      "<theme/>",
		"xl/worksheets/sheet1.xml": "<worksheet/>",
		"docProps/core.xml":        "<core/>",
		"[Content_Types].xml":      "<Types/>",
	})

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer p.Close()

	folders := p.Folders()
	want := []string{"docProps", "xl", "xl/theme", "xl/worksheets"}
	if len(folders) != len(want) {
		t.Fatalf("Folders() = %v, expected %v", folders, want)
	}
	for i, f := range want {
		if folders[i] != f {
			t.Errorf("Folders()[%d] = %q, expected %q", i, folders[i], f)
		}
	}
}

func TestPackageRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.zip")
	writeZip(t, path, map[string]string{
		"keep.xml":    "untouched",
		"replace.xml": "old",
	})

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer p.Close()

	err = p.Rewrite(
		map[string][]byte{"replace.xml": []byte("new")},
		map[string][]byte{"added.xml": []byte("fresh")},
	)
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}

	// The reader is reopened over the rewritten archive.
	for name, want := range map[string]string{
		"keep.xml":    "untouched",
		"replace.xml": "new",
		"added.xml":   "fresh",
	} {
		data, err := p.ReadFile(name)
		if err != nil {
			t.Fatalf("ReadFile(%s) after rewrite failed: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("ReadFile(%s) = %q, expected %q", name, data, want)
		}
	}

	// And the file on disk matches.
	p2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer p2.Close()
	data, err := p2.ReadFile("added.xml")
	if err != nil {
		t.Fatalf("ReadFile on reopened package failed: %v", err)
	}
	if string(data) != "fresh" {
		t.Errorf("reopened added.xml = %q", data)
	}
}

func TestPackageCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.zip")
	writeZip(t, path, map[string]string{"a.xml": "a"})

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestRelationships(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId3" Type="` + RelTypeWorksheet + `" Target="worksheets/sheet1.xml"/>
  <Relationship Id="rId1" Type="type1" Target="styles.xml"/>
</Relationships>`

	rels, err := ParseRelationships([]byte(data))
	if err != nil {
		t.Fatalf("ParseRelationships failed: %v", err)
	}
	if len(rels.Rels) != 2 {
		t.Fatalf("expected 2 relationships, got %d", len(rels.Rels))
	}

	m := rels.Map()
	if m["rId3"] != "worksheets/sheet1.xml" {
		t.Errorf("Map()[rId3] = %q", m["rId3"])
	}

	if id := rels.NextID(); id != "rId4" {
		t.Errorf("NextID() = %q, expected rId4", id)
	}

	id := rels.Add(RelTypeSharedStrings, "sharedStrings.xml")
	if id != "rId4" {
		t.Errorf("Add returned %q, expected rId4", id)
	}

	out, err := rels.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	reparsed, err := ParseRelationships(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if len(reparsed.Rels) != 3 {
		t.Fatalf("expected 3 relationships after Add, got %d", len(reparsed.Rels))
	}
	if reparsed.Map()["rId4"] != "sharedStrings.xml" {
		t.Errorf("reparsed Map()[rId4] = %q", reparsed.Map()["rId4"])
	}
}

func TestNextIDEmpty(t *testing.T) {
	rels := &Relationships{}
	if id := rels.NextID(); id != "rId1" {
		t.Errorf("NextID() on empty set = %q, expected rId1", id)
	}
}

func TestContentTypes(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
</Types>`

	ct, err := ParseContentTypes([]byte(data))
	if err != nil {
		t.Fatalf("ParseContentTypes failed: %v", err)
	}
	if !ct.HasOverride("/xl/workbook.xml") {
		t.Error("HasOverride(/xl/workbook.xml) = false")
	}
	if ct.HasOverride("/xl/sharedStrings.xml") {
		t.Error("HasOverride(/xl/sharedStrings.xml) = true before Add")
	}

	ct.AddOverride("/xl/sharedStrings.xml", ContentTypeSharedStrings)

	out, err := ct.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	reparsed, err := ParseContentTypes(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if !reparsed.HasOverride("/xl/sharedStrings.xml") {
		t.Error("override lost through marshal round trip")
	}
	if len(reparsed.Defaults) != 1 {
		t.Errorf("expected 1 default, got %d", len(reparsed.Defaults))
	}
}
