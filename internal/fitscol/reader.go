// Package fitscol defines the typed-column table reader seam between
// this pipeline and the event file on disk. spec.md treats the actual
// FITS/cfitsio binding as out of core scope; ColumnReader is the
// interface every table loader in internal/timetab and internal/skymask
// programs against, and MemTableReader is the in-memory implementation
// used by tests and by callers that have already loaded a table (e.g.
// a real cfitsio binding would satisfy the same interface).
package fitscol

import (
	"fmt"

	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// ColumnReader moves between named table extensions ("HDUs") and reads
// a typed column into a contiguous buffer. Implementations are
// single-threaded; concurrent table loads should open separate
// ColumnReaders.
type ColumnReader interface {
	// MoveHDU switches the reader's current extension to name.
	MoveHDU(name string) error
	// NumRows returns the row count of the current extension.
	NumRows() (int, error)
	// ReadColumn reads the named column of the current extension into
	// dst, which must be a pointer to a []int16, []int32, []float32,
	// []float64 or []string slice; the slice is replaced by one holding
	// NumRows() elements, so its prior length does not matter.
	ReadColumn(name string, dst any) error
}

// MemTableReader is an in-memory ColumnReader: a map of extension name
// to a map of column name to typed column data. It is the seam's
// reference implementation, exercised directly by tests and wrapped by
// internal/timetab's table loaders the same way a real binding would
// be.
type MemTableReader struct {
	tables  map[string]map[string]any
	current string
}

// NewMemTableReader builds a MemTableReader from the given extensions.
func NewMemTableReader(tables map[string]map[string]any) *MemTableReader {
	return &MemTableReader{tables: tables}
}

// MoveHDU implements ColumnReader.
func (r *MemTableReader) MoveHDU(name string) error {
	if _, ok := r.tables[name]; !ok {
		return pipeerr.IO(fmt.Sprintf("extension %q not found", name), nil)
	}
	r.current = name
	return nil
}

// NumRows implements ColumnReader.
func (r *MemTableReader) NumRows() (int, error) {
	cols, ok := r.tables[r.current]
	if !ok {
		return 0, pipeerr.IO("no current extension", nil)
	}
	for _, v := range cols {
		return columnLen(v), nil
	}
	return 0, nil
}

// ReadColumn implements ColumnReader.
func (r *MemTableReader) ReadColumn(name string, dst any) error {
	cols, ok := r.tables[r.current]
	if !ok {
		return pipeerr.IO("no current extension", nil)
	}
	src, ok := cols[name]
	if !ok {
		return pipeerr.IO(fmt.Sprintf("column %q not found in extension %q", name, r.current), nil)
	}
	if err := copyColumn(src, dst); err != nil {
		return pipeerr.IO(fmt.Sprintf("reading column %q", name), err)
	}
	return nil
}

func columnLen(v any) int {
	switch s := v.(type) {
	case []int16:
		return len(s)
	case []int32:
		return len(s)
	case []float32:
		return len(s)
	case []float64:
		return len(s)
	case []string:
		return len(s)
	default:
		return 0
	}
}

func copyColumn(src, dst any) error {
	switch s := src.(type) {
	case []int16:
		d, ok := dst.(*[]int16)
		if !ok {
			return fmt.Errorf("column type mismatch: src []int16, dst %T", dst)
		}
		*d = append((*d)[:0], s...)
	case []int32:
		d, ok := dst.(*[]int32)
		if !ok {
			return fmt.Errorf("column type mismatch: src []int32, dst %T", dst)
		}
		*d = append((*d)[:0], s...)
	case []float32:
		d, ok := dst.(*[]float32)
		if !ok {
			return fmt.Errorf("column type mismatch: src []float32, dst %T", dst)
		}
		*d = append((*d)[:0], s...)
	case []float64:
		d, ok := dst.(*[]float64)
		if !ok {
			return fmt.Errorf("column type mismatch: src []float64, dst %T", dst)
		}
		*d = append((*d)[:0], s...)
	case []string:
		d, ok := dst.(*[]string)
		if !ok {
			return fmt.Errorf("column type mismatch: src []string, dst %T", dst)
		}
		*d = append((*d)[:0], s...)
	default:
		return fmt.Errorf("unsupported column source type %T", src)
	}
	return nil
}
