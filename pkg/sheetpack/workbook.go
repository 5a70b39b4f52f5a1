package sheetpack

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/danmolnar/sheetpack/pkg/sheetpack/models"
	"github.com/danmolnar/sheetpack/pkg/sheetpack/opc"
	"github.com/danmolnar/sheetpack/pkg/sheetpack/parser"
)

const (
	sharedStringsPath = "xl/sharedStrings.xml"
	workbookPath      = "xl/workbook.xml"
	workbookRelsPath  = "xl/_rels/workbook.xml.rels"
	contentTypesPath  = "[Content_Types].xml"
	corePropsPath     = "docProps/core.xml"
	appPropsPath      = "docProps/app.xml"
)

var requiredFolders = []string{"docProps", "xl", "xl/theme", "xl/worksheets"}

var requiredParts = []string{corePropsPath, appPropsPath}

// Workbook is an open workbook package. All reads and writes go through the
// packaged XML parts; a whole worksheet is held in memory per operation.
type Workbook struct {
	path string
	pkg  *opc.Package

	modified   time.Time
	appVersion string

	sheetOrder []string
	sheetPaths map[string]string
	rels       map[string]string
	sheets     map[string]*models.Sheet
}

type xmlWorkbook struct {
	XMLName xml.Name `xml:"workbook"`
	Sheets  struct {
		Sheet []xmlSheet `xml:"sheet"`
	} `xml:"sheets"`
}

type xmlSheet struct {
	Name    string `xml:"name,attr"`
	SheetID string `xml:"sheetId,attr"`
	RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xmlCoreProps struct {
	Modified string `xml:"http://purl.org/dc/terms/ modified"`
}

type xmlAppProps struct {
	AppVersion string `xml:"AppVersion"`
}

// Open opens the workbook at path. The file must exist and carry an .xlsx
// or .xlsm extension; the package is checked for the folders and parts a
// well-formed workbook always has. Open never modifies the file.
func Open(path string) (*Workbook, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".xlsm" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	pkg, err := opc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	wb := &Workbook{
		path:   path,
		pkg:    pkg,
		sheets: make(map[string]*models.Sheet),
	}
	if err := wb.checkIntegrity(); err != nil {
		pkg.Close()
		return nil, err
	}
	wb.loadProps()
	if err := wb.loadSheets(); err != nil {
		pkg.Close()
		return nil, err
	}
	return wb, nil
}

// Close releases the underlying package.
func (wb *Workbook) Close() error {
	return wb.pkg.Close()
}

// Path returns the workbook file path.
func (wb *Workbook) Path() string {
	return wb.path
}

// Modified returns the modification date from the core document properties,
// or the zero time when the property is absent or unparsable.
func (wb *Workbook) Modified() time.Time {
	return wb.modified
}

// AppVersion returns the producing application version from the extended
// document properties, or "" when absent.
func (wb *Workbook) AppVersion() string {
	return wb.appVersion
}

// SheetNames returns the sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	return append([]string(nil), wb.sheetOrder...)
}

// Relationships returns the workbook relationship map (rId to part target).
func (wb *Workbook) Relationships() map[string]string {
	m := make(map[string]string, len(wb.rels))
	for k, v := range wb.rels {
		m[k] = v
	}
	return m
}

// checkIntegrity verifies the folders and parts every workbook package has.
func (wb *Workbook) checkIntegrity() error {
	folders := make(map[string]bool)
	for _, f := range wb.pkg.Folders() {
		folders[f] = true
	}
	for _, f := range requiredFolders {
		if !folders[f] {
			return fmt.Errorf("%w: missing folder %s", ErrCorruptArchive, f)
		}
	}
	for _, part := range requiredParts {
		if !wb.pkg.Has(part) {
			return fmt.Errorf("%w: missing part %s", ErrCorruptArchive, part)
		}
	}
	return nil
}

// loadProps reads the document properties. Both are best-effort: a workbook
// with unusual properties still opens.
func (wb *Workbook) loadProps() {
	if data, err := wb.pkg.ReadFile(corePropsPath); err == nil {
		var core xmlCoreProps
		if xml.Unmarshal(data, &core) == nil {
			if t, err := time.Parse(time.RFC3339, strings.TrimSpace(core.Modified)); err == nil {
				wb.modified = t
			}
		}
	}
	if data, err := wb.pkg.ReadFile(appPropsPath); err == nil {
		var app xmlAppProps
		if xml.Unmarshal(data, &app) == nil {
			wb.appVersion = strings.TrimSpace(app.AppVersion)
		}
	}
}

// loadSheets builds the ordered sheet list and resolves each sheet's
// worksheet part through the workbook relationships.
func (wb *Workbook) loadSheets() error {
	data, err := wb.pkg.ReadFile(workbookPath)
	if err != nil {
		return partErr(workbookPath, err)
	}
	var book xmlWorkbook
	if err := xml.Unmarshal(data, &book); err != nil {
		return partErr(workbookPath, err)
	}

	relsData, err := wb.pkg.ReadFile(workbookRelsPath)
	if err != nil {
		return partErr(workbookRelsPath, err)
	}
	rels, err := opc.ParseRelationships(relsData)
	if err != nil {
		return partErr(workbookRelsPath, err)
	}
	wb.rels = rels.Map()

	wb.sheetOrder = nil
	wb.sheetPaths = make(map[string]string, len(book.Sheets.Sheet))
	for _, sheet := range book.Sheets.Sheet {
		target, ok := wb.rels[sheet.RID]
		if !ok {
			return fmt.Errorf("%w: sheet %q has no relationship target", ErrCorruptArchive, sheet.Name)
		}
		wb.sheetOrder = append(wb.sheetOrder, sheet.Name)
		wb.sheetPaths[sheet.Name] = resolveTarget(target)
	}
	return nil
}

// resolveTarget turns a workbook-relative relationship target into a
// package part path.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	for strings.HasPrefix(target, "../") {
		target = strings.TrimPrefix(target, "../")
	}
	return "xl/" + target
}

// resolveSheet validates a sheet name and returns its worksheet part path.
func (wb *Workbook) resolveSheet(name string) (string, error) {
	path, ok := wb.sheetPaths[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return path, nil
}

// Sheet returns the snapshot cached by the last read or upload of the named
// sheet, or nil when the sheet has not been touched yet.
func (wb *Workbook) Sheet(name string) *models.Sheet {
	return wb.sheets[name]
}

// sheetNameAt validates a 0-based sheet index.
func (wb *Workbook) sheetNameAt(i int) (string, error) {
	if i < 0 || i >= len(wb.sheetOrder) {
		return "", fmt.Errorf("%w: index %d", ErrSheetNotFound, i)
	}
	return wb.sheetOrder[i], nil
}

// ReadSheet loads the named sheet into a table. The table is sized from the
// declared dimension and grown to cover any cell outside it; empty cells
// hold "". The returned snapshot replaces any previously cached one.
func (wb *Workbook) ReadSheet(name string, opts ...ReadOption) (*models.Sheet, error) {
	var cfg readConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	path, err := wb.resolveSheet(name)
	if err != nil {
		return nil, err
	}

	shared, err := wb.readSharedStrings()
	if err != nil {
		return nil, err
	}

	data, err := wb.pkg.ReadFile(path)
	if err != nil {
		return nil, partErr(path, err)
	}
	dimension, cells, err := parser.ParseSheetData(data)
	if err != nil {
		return nil, partErr(path, err)
	}

	rows, cols := 0, 0
	if dimension != "" {
		if r, c, err := parser.RefToCoords(parser.RangeEnd(dimension)); err == nil {
			rows, cols = r, c
		}
	}
	coords := make([][2]int, len(cells))
	for i, cell := range cells {
		r, c, err := parser.RefToCoords(cell.Ref)
		if err != nil {
			return nil, partErr(path, err)
		}
		coords[i] = [2]int{r, c}
		if r > rows {
			rows = r
		}
		if c > cols {
			cols = c
		}
	}

	table := models.NewTable(rows, cols)
	for i, cell := range cells {
		value, err := wb.cellValue(cell, shared)
		if err != nil {
			return nil, partErr(path, err)
		}
		table[coords[i][0]-1][coords[i][1]-1] = value
	}

	if cfg.headers != nil && len(table) > 0 && len(cfg.headers) == len(table[0]) {
		for i, h := range cfg.headers {
			table[0][i] = h
		}
	}

	sheet := &models.Sheet{Name: name, Table: table}
	wb.sheets[name] = sheet
	return sheet, nil
}

// ReadSheetAt loads the sheet at a 0-based index.
func (wb *Workbook) ReadSheetAt(i int, opts ...ReadOption) (*models.Sheet, error) {
	name, err := wb.sheetNameAt(i)
	if err != nil {
		return nil, err
	}
	return wb.ReadSheet(name, opts...)
}

// ReadAll loads every sheet in workbook order.
func (wb *Workbook) ReadAll() ([]*models.Sheet, error) {
	sheets := make([]*models.Sheet, 0, len(wb.sheetOrder))
	for _, name := range wb.sheetOrder {
		sheet, err := wb.ReadSheet(name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// cellValue resolves one parsed cell into its table value.
func (wb *Workbook) cellValue(cell parser.Cell, shared []string) (any, error) {
	switch cell.Type {
	case "s":
		idx, err := strconv.Atoi(cell.Value)
		if err != nil || idx < 0 || idx >= len(shared) {
			return nil, fmt.Errorf("cell %s: bad shared string index %q", cell.Ref, cell.Value)
		}
		return shared[idx], nil
	case "str", "inlineStr":
		return cell.Value, nil
	default:
		return parser.ParseValue(cell.Value), nil
	}
}

// readSharedStrings loads the shared string list, empty when the part is
// absent (a workbook that never held text has none).
func (wb *Workbook) readSharedStrings() ([]string, error) {
	if !wb.pkg.Has(sharedStringsPath) {
		return nil, nil
	}
	data, err := wb.pkg.ReadFile(sharedStringsPath)
	if err != nil {
		return nil, partErr(sharedStringsPath, err)
	}
	shared, err := parser.ParseSharedStrings(data)
	if err != nil {
		return nil, partErr(sharedStringsPath, err)
	}
	return shared, nil
}

// UploadSheet replaces the named sheet's entire content with table. Strings
// are deduplicated into the shared string part; when that part is missing it
// is created and registered in the workbook relationships and the package
// content types. The archive is rewritten as a whole.
func (wb *Workbook) UploadSheet(name string, table models.Table) error {
	path, err := wb.resolveSheet(name)
	if err != nil {
		return err
	}

	sstExists := wb.pkg.Has(sharedStringsPath)
	existing, err := wb.readSharedStrings()
	if err != nil {
		return err
	}
	shared := parser.NewStringTable(existing)

	sheetXML, err := parser.BuildWorksheet(table, shared)
	if err != nil {
		return err
	}
	sstXML, err := parser.BuildSharedStrings(shared.Items())
	if err != nil {
		return err
	}

	replace := map[string][]byte{path: sheetXML}
	add := make(map[string][]byte)
	if sstExists {
		replace[sharedStringsPath] = sstXML
	} else {
		add[sharedStringsPath] = sstXML
		if err := wb.registerSharedStrings(replace); err != nil {
			return err
		}
	}

	if err := wb.pkg.Rewrite(replace, add); err != nil {
		return fmt.Errorf("rewrite package: %w", err)
	}

	wb.sheets[name] = &models.Sheet{Name: name, Table: table}
	return nil
}

// UploadSheetAt replaces the content of the sheet at a 0-based index.
func (wb *Workbook) UploadSheetAt(i int, table models.Table) error {
	name, err := wb.sheetNameAt(i)
	if err != nil {
		return err
	}
	return wb.UploadSheet(name, table)
}

// registerSharedStrings adds the shared string part to the workbook
// relationships and the package content types.
func (wb *Workbook) registerSharedStrings(replace map[string][]byte) error {
	relsData, err := wb.pkg.ReadFile(workbookRelsPath)
	if err != nil {
		return partErr(workbookRelsPath, err)
	}
	rels, err := opc.ParseRelationships(relsData)
	if err != nil {
		return partErr(workbookRelsPath, err)
	}
	rels.Add(opc.RelTypeSharedStrings, "sharedStrings.xml")
	out, err := rels.Marshal()
	if err != nil {
		return partErr(workbookRelsPath, err)
	}
	replace[workbookRelsPath] = out
	wb.rels = rels.Map()

	ctData, err := wb.pkg.ReadFile(contentTypesPath)
	if err != nil {
		return partErr(contentTypesPath, err)
	}
	ct, err := opc.ParseContentTypes(ctData)
	if err != nil {
		return partErr(contentTypesPath, err)
	}
	if !ct.HasOverride("/" + sharedStringsPath) {
		ct.AddOverride("/"+sharedStringsPath, opc.ContentTypeSharedStrings)
	}
	out, err = ct.Marshal()
	if err != nil {
		return partErr(contentTypesPath, err)
	}
	replace[contentTypesPath] = out
	return nil
}
