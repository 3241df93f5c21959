// Package importer decodes datasets from the JSON wire shape and from
// spreadsheet workbooks.
package importer

import (
	"errors"
	"fmt"
)

var (
	ErrNoData      = errors.New("no data rows")
	ErrNoSeries    = errors.New("no series columns")
	ErrBadValue    = errors.New("value is not a number")
	ErrSheetAbsent = errors.New("sheet not found")
)

// ImportError locates a decoding failure inside a source document.
type ImportError struct {
	Source string // "json" or "xlsx"
	Sheet  string
	Cell   string
	Err    error
}

func (e *ImportError) Error() string {
	switch {
	case e.Cell != "":
		return fmt.Sprintf("import error in %s sheet %q cell %s: %v", e.Source, e.Sheet, e.Cell, e.Err)
	case e.Sheet != "":
		return fmt.Sprintf("import error in %s sheet %q: %v", e.Source, e.Sheet, e.Err)
	}
	return fmt.Sprintf("import error in %s: %v", e.Source, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
