package frame

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrEmptyCSV = errors.New("csv bytes are empty")

// FromCSV parses UTF-8 comma-delimited bytes with a header row into a Frame.
// Cells are typed eagerly: parseable numbers become float64, empty cells
// become nil, everything else stays a string.
func FromCSV(b []byte) (*Frame, error) {
	if len(b) == 0 {
		return nil, ErrEmptyCSV
	}

	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCSV
		}
		return nil, fmt.Errorf("csv parsing error: %w", err)
	}

	var rows [][]any
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv parsing error: %w", err)
		}
		row := make([]any, len(header))
		for j := range header {
			if j < len(record) {
				row[j] = typeCell(record[j])
			}
		}
		rows = append(rows, row)
	}

	return New(header, rows)
}

func typeCell(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
