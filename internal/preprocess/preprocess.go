// Package preprocess builds the numeric feature matrix consumed by the model.
package preprocess

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/smallbiznis/churnscope/internal/frame"
)

// Sentinel substituted for missing Segment and CostCenter values.
const Unknown = "UNKNOWN"

// DropColumns never enter the feature matrix. WillChurn90 is the training
// label and is dropped when a historical extract still carries it.
var DropColumns = []string{
	"CustomerId", "AccountName", "Segment", "CostCenter",
	"SnapshotDate", "FirstPurchaseDate", "LastPurchaseDate",
	"WillChurn90",
}

// Build derives the feature matrix: identifier and date columns dropped,
// remaining columns coerced to float64 (NaN when missing or non-numeric), and
// Segment/CostCenter exploded into one-hot indicator columns. The result is
// not yet aligned to the model's column list; that is the scoring engine's job.
func Build(f *frame.Frame) *frame.Matrix {
	dropped := make(map[string]struct{}, len(DropColumns))
	for _, c := range DropColumns {
		dropped[c] = struct{}{}
	}

	var numericCols []string
	for _, col := range f.Columns() {
		if _, ok := dropped[col]; ok {
			continue
		}
		numericCols = append(numericCols, col)
	}

	segments := categoricalValues(f, "Segment")
	costCenters := categoricalValues(f, "CostCenter")

	segCols := indicatorColumns("Segment_", segments)
	ccCols := indicatorColumns("CostCenter_", costCenters)

	cols := make([]string, 0, len(numericCols)+len(segCols)+len(ccCols))
	cols = append(cols, numericCols...)
	cols = append(cols, segCols...)
	cols = append(cols, ccCols...)

	m := frame.NewMatrix(cols, f.NumRows())
	for i := 0; i < f.NumRows(); i++ {
		j := 0
		for _, col := range numericCols {
			m.Data[i][j] = numericCell(f, i, col)
			j++
		}
		for _, col := range segCols {
			m.Data[i][j] = indicator(col, "Segment_", segments[i])
			j++
		}
		for _, col := range ccCols {
			m.Data[i][j] = indicator(col, "CostCenter_", costCenters[i])
			j++
		}
	}
	return m
}

// categoricalValues reads one categorical column with the sentinel applied.
// An absent source column means every row is UNKNOWN.
func categoricalValues(f *frame.Frame, col string) []string {
	out := make([]string, f.NumRows())
	for i := range out {
		out[i] = Unknown
		if !f.Has(col) {
			continue
		}
		v, _ := f.Value(i, col)
		if s := stringifyCell(v); s != "" {
			out[i] = s
		}
	}
	return out
}

func stringifyCell(v any) string {
	switch cell := v.(type) {
	case string:
		return strings.TrimSpace(cell)
	case float64:
		return strconv.FormatFloat(cell, 'g', -1, 64)
	default:
		return ""
	}
}

func indicatorColumns(prefix string, values []string) []string {
	distinct := make(map[string]struct{})
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	cols := make([]string, 0, len(distinct))
	for v := range distinct {
		cols = append(cols, prefix+v)
	}
	sort.Strings(cols)
	return cols
}

func indicator(col, prefix, value string) float64 {
	if col == prefix+value {
		return 1
	}
	return 0
}

func numericCell(f *frame.Frame, i int, col string) float64 {
	v, _ := f.Value(i, col)
	switch cell := v.(type) {
	case float64:
		return cell
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return n
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}
