// Package schema normalizes raw snapshot exports to the canonical flat column
// scheme and validates them before scoring.
package schema

import (
	"strings"

	"github.com/smallbiznis/churnscope/internal/frame"
)

const customerPrefix = "Customers["

// Remaps applied to the inner name of a Customers[...] column.
var customerRemaps = map[string]string{
	"account_Order": "CustomerId",
	"account_Name":  "AccountName",
	"Cost Center":   "CostCenter",
}

// Normalize rewrites column names in place: whitespace trimmed, the
// Customers[...] wrapper removed with its three specific remaps, and the bare
// [...] wrapper stripped from every other bracketed name. Applying it to an
// already-normalized frame is a no-op.
func Normalize(f *frame.Frame) {
	cols := f.Columns()
	for i, col := range cols {
		cols[i] = normalizeName(col)
	}
	// width unchanged, so SetColumns cannot fail
	_ = f.SetColumns(cols)

	convertDates(f)
}

func normalizeName(col string) string {
	name := strings.TrimSpace(col)

	if strings.HasPrefix(name, customerPrefix) && strings.HasSuffix(name, "]") {
		inner := name[len(customerPrefix) : len(name)-1]
		if mapped, ok := customerRemaps[inner]; ok {
			return mapped
		}
		return inner
	}

	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		return name[1 : len(name)-1]
	}

	return name
}
