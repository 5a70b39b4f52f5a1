// Package opc provides ZIP container access for Office Open XML packages.
package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrPartNotFound indicates the requested part is not in the package.
var ErrPartNotFound = fmt.Errorf("part not found")

// Package is an open workbook container backed by a file on disk.
type Package struct {
	path string
	r    *zip.ReadCloser
}

// Open opens the package at path for reading.
func Open(path string) (*Package, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &Package{path: path, r: r}, nil
}

// Close releases the underlying archive. Safe to call twice.
func (p *Package) Close() error {
	if p.r == nil {
		return nil
	}
	err := p.r.Close()
	p.r = nil
	return err
}

// Path returns the package file path.
func (p *Package) Path() string {
	return p.path
}

// Has reports whether the named part exists in the package.
func (p *Package) Has(name string) bool {
	if p.r == nil {
		return false
	}
	for _, f := range p.r.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// ReadFile returns the content of the named part.
// A missing part is reported as ErrPartNotFound.
func (p *Package) ReadFile(name string) ([]byte, error) {
	if p.r == nil {
		return nil, fmt.Errorf("package is closed")
	}
	for _, f := range p.r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
}

// Folders returns every folder path present in the package, inferred from
// the part names. Most archivers do not store directory entries, so
// "xl/theme" is derived from "xl/theme/theme1.xml".
func (p *Package) Folders() []string {
	seen := make(map[string]bool)
	if p.r != nil {
		for _, f := range p.r.File {
			parts := strings.Split(f.Name, "/")
			parent := ""
			for i := 0; i < len(parts)-1; i++ {
				if parent == "" {
					parent = parts[i]
				} else {
					parent = parent + "/" + parts[i]
				}
				seen[parent] = true
			}
		}
	}
	folders := make([]string, 0, len(seen))
	for folder := range seen {
		folders = append(folders, folder)
	}
	sort.Strings(folders)
	return folders
}

// Rewrite replaces and appends parts by writing a whole new archive through
// an in-memory buffer, then swapping the file on disk and reopening the
// reader. Parts named in replace are substituted, parts named in add are
// appended, everything else is copied unchanged.
func (p *Package) Rewrite(replace, add map[string][]byte) error {
	if p.r == nil {
		return fmt.Errorf("package is closed")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range p.r.File {
		w, err := zw.Create(f.Name)
		if err != nil {
			return err
		}
		if data, ok := replace[f.Name]; ok {
			if _, err := w.Write(data); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}

	names := make([]string, 0, len(add))
	for name := range add {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write(add[name]); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return err
	}

	if err := p.r.Close(); err != nil {
		return err
	}
	p.r = nil

	if err := os.WriteFile(p.path, buf.Bytes(), 0644); err != nil {
		return err
	}

	r, err := zip.OpenReader(p.path)
	if err != nil {
		return err
	}
	p.r = r
	return nil
}
