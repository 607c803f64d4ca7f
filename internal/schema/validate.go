package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/churnscope/internal/frame"
	"go.uber.org/zap"
)

const (
	// 7 identifiers + 12 aggregate + 3 trend + 50 category + 4 breadth
	ExpectedColumnCount = 76
	MinColumnCount      = 70
	MaxColumnCount      = 85
)

// RequiredColumns must all resolve after normalization.
var RequiredColumns = []string{
	"CustomerId",
	"AccountName",
	"Segment",
	"CostCenter",
	"SnapshotDate",
}

type Validator struct {
	log *zap.Logger
}

func NewValidator(log *zap.Logger) *Validator {
	return &Validator{log: log.Named("schema")}
}

// Validate checks a normalized frame against the snapshot contract. Too many
// columns is a warning only; every other violation is fatal.
func (v *Validator) Validate(f *frame.Frame) error {
	if f.NumRows() == 0 {
		return fmt.Errorf("%w: csv contains no data rows", ErrEmptyInput)
	}

	cols := f.Columns()

	if len(cols) < MinColumnCount {
		return fmt.Errorf("%w: csv has too few columns: %d, expected at least %d",
			ErrTooFewColumns, len(cols), MinColumnCount)
	}
	if len(cols) > MaxColumnCount {
		v.log.Warn("csv has more columns than expected",
			zap.Int("columns", len(cols)),
			zap.Int("expected", ExpectedColumnCount),
		)
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !f.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	seen := make(map[string]struct{}, len(cols))
	var dups []string
	for _, col := range cols {
		if _, ok := seen[col]; ok {
			dups = append(dups, col)
		}
		seen[col] = struct{}{}
	}
	if len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateColumns, strings.Join(dups, ", "))
	}

	return nil
}

// ExtractSnapshotDate pulls the first non-null snapshot date from a raw or
// normalized frame and formats it YYYY-MM-DD. The lookup tolerates bracketed
// column names because it runs before normalization.
func ExtractSnapshotDate(f *frame.Frame) (string, error) {
	var col string
	for _, c := range f.Columns() {
		if strings.Contains(c, "SnapshotDate") {
			col = c
			break
		}
	}
	if col == "" {
		return "", fmt.Errorf("%w: no SnapshotDate column", ErrNoSnapshotDate)
	}

	for i := 0; i < f.NumRows(); i++ {
		v, _ := f.Value(i, col)
		switch cell := v.(type) {
		case nil:
			continue
		case time.Time:
			return cell.Format("2006-01-02"), nil
		case float64:
			if d := resolveDate(cell); d != nil {
				return d.(time.Time).Format("2006-01-02"), nil
			}
		case string:
			if t, ok := parseDate(cell); ok {
				return t.Format("2006-01-02"), nil
			}
			if len(cell) >= 10 {
				return cell[:10], nil
			}
			return cell, nil
		}
	}
	return "", fmt.Errorf("%w: all SnapshotDate values are null", ErrNoSnapshotDate)
}
