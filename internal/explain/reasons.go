// Package explain turns per-feature model contributions into the three
// human-readable reasons attached to each scored row.
package explain

import (
	"sort"
	"strings"
)

// Risk band labels and their fixed probability thresholds
// (inclusive lower bounds).
const (
	BandHigh   = "A - High Risk"
	BandMedium = "B - Medium Risk"
	BandLow    = "C - Low Risk"

	highThreshold = 0.7
	lowThreshold  = 0.3

	// ReasonCount reasons are produced for every row.
	ReasonCount = 3
)

type mode int

const (
	modeRisk mode = iota // drivers of churn
	modeSafe             // protective factors
)

// RiskBand maps a probability to its band label.
func RiskBand(prob float64) string {
	switch {
	case prob >= highThreshold:
		return BandHigh
	case prob >= lowThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// reasonText renders one feature in risk or safe mode. Segment and cost-center
// indicators carry no polarity wording.
func reasonText(feature string, m mode) string {
	base := featurePhrase(feature)

	if strings.HasPrefix(feature, "Segment_") || strings.HasPrefix(feature, "CostCenter_") {
		return base
	}

	_, protective := highIsProtective[feature]
	_, risky := highIsRisky[feature]

	if m == modeRisk {
		switch {
		case protective:
			return "Low " + base
		case risky:
			return "High " + base
		default:
			return "Unfavorable " + base
		}
	}
	switch {
	case protective:
		return "High " + base
	case risky:
		return "Low " + base
	default:
		return "Favorable " + base
	}
}

// TopReasons selects the reasons for one row from its contribution vector.
// cols is the canonical feature column list; contrib has one value per column
// plus a trailing bias term, which never becomes a reason.
//
// High risk takes the three largest positive contributions in risk wording,
// low risk the three most negative in safe wording, and medium risk two
// drivers plus one protective factor. Equal contributions keep their original
// column order (stable sort).
func TopReasons(cols []string, contrib []float64, prob float64) []string {
	n := len(cols)
	if len(contrib) < n {
		n = len(contrib)
	}

	desc := sortedIndexes(contrib[:n], false)
	asc := sortedIndexes(contrib[:n], true)

	reasons := make([]string, 0, ReasonCount)
	switch {
	case prob >= highThreshold:
		for _, i := range head(desc, ReasonCount) {
			reasons = append(reasons, reasonText(cols[i], modeRisk))
		}
	case prob < lowThreshold:
		for _, i := range head(asc, ReasonCount) {
			reasons = append(reasons, reasonText(cols[i], modeSafe))
		}
	default:
		for _, i := range head(desc, 2) {
			reasons = append(reasons, reasonText(cols[i], modeRisk))
		}
		for _, i := range head(asc, 1) {
			reasons = append(reasons, reasonText(cols[i], modeSafe))
		}
		if len(reasons) > ReasonCount {
			reasons = reasons[:ReasonCount]
		}
	}
	return reasons
}

func sortedIndexes(values []float64, ascending bool) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if ascending {
			return values[idx[a]] < values[idx[b]]
		}
		return values[idx[a]] > values[idx[b]]
	})
	return idx
}

func head(idx []int, n int) []int {
	if len(idx) < n {
		return idx
	}
	return idx[:n]
}
