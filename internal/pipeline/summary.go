package pipeline

import (
	"sort"

	"github.com/smallbiznis/churnscope/internal/explain"
	"github.com/smallbiznis/churnscope/internal/notify"
	scoringdomain "github.com/smallbiznis/churnscope/internal/scoring/domain"
)

const topReasonLimit = 10

// placeholder reason strings excluded from aggregation
var ignoredReasons = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
}

// Summary aggregates a scored batch for notifications and metrics.
type Summary struct {
	RowCount         int
	RiskDistribution map[string]int
	MeanRisk         *float64
	MedianRisk       *float64
	TopReasons       []notify.ReasonCount
}

func Summarize(rows []scoringdomain.ScoredRow) Summary {
	s := Summary{
		RowCount: len(rows),
		RiskDistribution: map[string]int{
			explain.BandHigh:   0,
			explain.BandMedium: 0,
			explain.BandLow:    0,
		},
	}
	if len(rows) == 0 {
		return s
	}

	risks := make([]float64, 0, len(rows))
	reasonCounts := make(map[string]int)
	for _, row := range rows {
		s.RiskDistribution[row.RiskBand]++
		risks = append(risks, row.ChurnRiskPct)
		for _, reason := range []string{row.Reason1, row.Reason2, row.Reason3} {
			if _, skip := ignoredReasons[reason]; skip {
				continue
			}
			reasonCounts[reason]++
		}
	}

	mean := 0.0
	for _, r := range risks {
		mean += r
	}
	mean /= float64(len(risks))
	s.MeanRisk = &mean

	sort.Float64s(risks)
	median := risks[len(risks)/2]
	if len(risks)%2 == 0 {
		median = (risks[len(risks)/2-1] + risks[len(risks)/2]) / 2
	}
	s.MedianRisk = &median

	reasons := make([]notify.ReasonCount, 0, len(reasonCounts))
	for reason, count := range reasonCounts {
		reasons = append(reasons, notify.ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(reasons, func(i, j int) bool {
		if reasons[i].Count != reasons[j].Count {
			return reasons[i].Count > reasons[j].Count
		}
		return reasons[i].Reason < reasons[j].Reason
	})
	if len(reasons) > topReasonLimit {
		reasons = reasons[:topReasonLimit]
	}
	s.TopReasons = reasons

	return s
}
