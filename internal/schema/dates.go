package schema

import (
	"time"

	"github.com/smallbiznis/churnscope/internal/frame"
)

// DateColumns are resolved to calendar dates during normalization.
var DateColumns = []string{"SnapshotDate", "FirstPurchaseDate", "LastPurchaseDate"}

// Values above this threshold in a date column are Excel serial dates.
const excelSerialThreshold = 40000

// Excel day zero. 1899-12-30 rather than -31 because Excel treats 1900 as a
// leap year.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
}

func convertDates(f *frame.Frame) {
	for _, col := range DateColumns {
		if !f.Has(col) {
			continue
		}
		for i := 0; i < f.NumRows(); i++ {
			v, _ := f.Value(i, col)
			f.Set(i, col, resolveDate(v))
		}
	}
}

// resolveDate interprets one date cell. Numeric values above the serial
// threshold are days since the Excel epoch; everything else goes through the
// generic parser. Unparsable values become nil, never an error.
func resolveDate(v any) any {
	switch cell := v.(type) {
	case nil:
		return nil
	case time.Time:
		return cell
	case float64:
		if cell > excelSerialThreshold {
			return excelEpoch.Add(time.Duration(cell * float64(24*time.Hour)))
		}
		return nil
	case string:
		if t, ok := parseDate(cell); ok {
			return t
		}
		return nil
	default:
		return nil
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
