package sheetpack

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the workbook file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrUnsupportedExtension indicates the path is not an .xlsx or .xlsm file.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// ErrCorruptArchive indicates the package is missing required folders or parts.
var ErrCorruptArchive = errors.New("corrupt workbook archive")

// ErrSheetNotFound indicates the requested sheet name or index does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// PartError represents a failure while reading or writing one package part.
type PartError struct {
	Part string
	Err  error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("part %s: %v", e.Part, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}

func partErr(part string, err error) *PartError {
	return &PartError{Part: part, Err: err}
}
