// Package frame holds the single in-memory tabular representation shared by
// every pipeline stage. Cells are nil (missing), string, float64 or time.Time.
package frame

import (
	"errors"
	"fmt"
	"time"
)

var ErrColumnWidth = errors.New("row width does not match column count")

type Frame struct {
	cols  []string
	index map[string]int
	rows  [][]any
}

// New builds a frame from column names and row-major cells. Every row must
// have exactly one cell per column.
func New(cols []string, rows [][]any) (*Frame, error) {
	for i, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrColumnWidth, i, len(row), len(cols))
		}
	}
	f := &Frame{cols: append([]string(nil), cols...), rows: rows}
	f.reindex()
	return f, nil
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.cols))
	for i, c := range f.cols {
		// first-wins on duplicates; schema validation reports them
		if _, ok := f.index[c]; !ok {
			f.index[c] = i
		}
	}
}

func (f *Frame) NumRows() int { return len(f.rows) }
func (f *Frame) NumCols() int { return len(f.cols) }

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.cols...)
}

// SetColumns renames all columns at once, preserving cell data.
func (f *Frame) SetColumns(names []string) error {
	if len(names) != len(f.cols) {
		return fmt.Errorf("%w: got %d names, want %d", ErrColumnWidth, len(names), len(f.cols))
	}
	f.cols = append([]string(nil), names...)
	f.reindex()
	return nil
}

func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Value returns the cell at row i for the named column.
func (f *Frame) Value(i int, col string) (any, bool) {
	j, ok := f.index[col]
	if !ok || i < 0 || i >= len(f.rows) {
		return nil, false
	}
	return f.rows[i][j], true
}

// Set overwrites the cell at row i for the named column. Unknown columns are
// ignored.
func (f *Frame) Set(i int, col string, v any) {
	j, ok := f.index[col]
	if !ok || i < 0 || i >= len(f.rows) {
		return
	}
	f.rows[i][j] = v
}

// String returns the cell as a string; missing and non-string cells yield
// ("", false).
func (f *Frame) String(i int, col string) (string, bool) {
	v, ok := f.Value(i, col)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float returns the cell as a float64 if it is numeric.
func (f *Frame) Float(i int, col string) (float64, bool) {
	v, ok := f.Value(i, col)
	if !ok || v == nil {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// Time returns the cell as a time.Time if it has been resolved to a date.
func (f *Frame) Time(i int, col string) (time.Time, bool) {
	v, ok := f.Value(i, col)
	if !ok || v == nil {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}
