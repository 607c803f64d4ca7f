package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/churnscope/internal/clock"
	"github.com/smallbiznis/churnscope/internal/explain"
	"github.com/smallbiznis/churnscope/internal/frame"
	"github.com/smallbiznis/churnscope/internal/model"
	"github.com/smallbiznis/churnscope/internal/preprocess"
	scoringdomain "github.com/smallbiznis/churnscope/internal/scoring/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Provider *model.Provider
	Clock    clock.Clock
}

type Service struct {
	log      *zap.Logger
	provider *model.Provider
	clock    clock.Clock
}

func NewService(p ServiceParam) scoringdomain.Service {
	return &Service{
		log:      p.Log.Named("scoring.service"),
		provider: p.Provider,
		clock:    p.Clock,
	}
}

// Score runs preprocess, alignment, prediction and explanation over a
// normalized frame and assembles one immutable ScoredRow per input row.
func (s *Service) Score(ctx context.Context, f *frame.Frame) ([]scoringdomain.ScoredRow, error) {
	_ = ctx

	matrix := preprocess.Build(f)

	ens, modelCols, err := s.provider.Get()
	if err != nil {
		return nil, err
	}

	aligned := matrix.Align(modelCols)

	probs, err := ens.Predict(aligned)
	if err != nil {
		return nil, err
	}
	contribs, err := ens.Contributions(aligned)
	if err != nil {
		return nil, err
	}

	scoredAt := s.clock.Now()
	rows := make([]scoringdomain.ScoredRow, f.NumRows())
	for i := range rows {
		reasons := explain.TopReasons(aligned.Cols, contribs[i], probs[i])
		for len(reasons) < explain.ReasonCount {
			reasons = append(reasons, "")
		}

		row := scoringdomain.ScoredRow{
			CustomerID:        stringCell(f, i, "CustomerId"),
			AccountName:       stringPtr(f, i, "AccountName"),
			Segment:           stringPtr(f, i, "Segment"),
			CostCenter:        stringPtr(f, i, "CostCenter"),
			SnapshotDate:      dateCell(f, i, "SnapshotDate"),
			FirstPurchaseDate: datePtr(f, i, "FirstPurchaseDate"),
			LastPurchaseDate:  datePtr(f, i, "LastPurchaseDate"),
			ChurnRiskPct:      probs[i],
			RiskBand:          explain.RiskBand(probs[i]),
			Reason1:           reasons[0],
			Reason2:           reasons[1],
			Reason3:           reasons[2],
			ScoredAt:          scoredAt,
			Features:          featureValues(f, i),
		}
		rows[i] = row
	}

	s.log.Info("scored customers", zap.Int("rows", len(rows)))
	return rows, nil
}

func stringCell(f *frame.Frame, i int, col string) string {
	p := stringPtr(f, i, col)
	if p == nil {
		return ""
	}
	return *p
}

func stringPtr(f *frame.Frame, i int, col string) *string {
	v, ok := f.Value(i, col)
	if !ok || v == nil {
		return nil
	}
	var s string
	switch cell := v.(type) {
	case string:
		s = strings.TrimSpace(cell)
	case float64:
		s = strconv.FormatFloat(cell, 'g', -1, 64)
	case time.Time:
		s = cell.Format("2006-01-02")
	default:
		return nil
	}
	return &s
}

func dateCell(f *frame.Frame, i int, col string) time.Time {
	if t, ok := f.Time(i, col); ok {
		return t.Truncate(24 * time.Hour)
	}
	return time.Time{}
}

func datePtr(f *frame.Frame, i int, col string) *time.Time {
	if t, ok := f.Time(i, col); ok {
		d := t.Truncate(24 * time.Hour)
		return &d
	}
	return nil
}

func floatPtr(f *frame.Frame, i int, col string) *float64 {
	v, ok := f.Value(i, col)
	if !ok || v == nil {
		return nil
	}
	switch cell := v.(type) {
	case float64:
		n := cell
		return &n
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return &n
		}
		return nil
	default:
		return nil
	}
}

// featureValues maps the canonical snapshot columns onto the statically-typed
// feature record. Absent or non-numeric cells stay nil.
func featureValues(f *frame.Frame, i int) scoringdomain.FeatureValues {
	return scoringdomain.FeatureValues{
		OrdersCY:       floatPtr(f, i, "Orders_CY"),
		OrdersPY:       floatPtr(f, i, "Orders_PY"),
		OrdersLifetime: floatPtr(f, i, "Orders_Lifetime"),
		SpendCY:        floatPtr(f, i, "Spend_CY"),
		SpendPY:        floatPtr(f, i, "Spend_PY"),
		SpendLifetime:  floatPtr(f, i, "Spend_Lifetime"),
		UnitsCY:        floatPtr(f, i, "Units_CY"),
		UnitsPY:        floatPtr(f, i, "Units_PY"),
		UnitsLifetime:  floatPtr(f, i, "Units_Lifetime"),
		AOVCY:          floatPtr(f, i, "AOV_CY"),
		DaysSinceLast:  floatPtr(f, i, "DaysSinceLast"),
		TenureDays:     floatPtr(f, i, "TenureDays"),
		SpendTrend:     floatPtr(f, i, "Spend_Trend"),
		OrdersTrend:    floatPtr(f, i, "Orders_Trend"),
		UnitsTrend:     floatPtr(f, i, "Units_Trend"),

		UniformsUnitsCY:        floatPtr(f, i, "Uniforms_Units_CY"),
		UniformsUnitsPY:        floatPtr(f, i, "Uniforms_Units_PY"),
		UniformsUnitsLifetime:  floatPtr(f, i, "Uniforms_Units_Lifetime"),
		UniformsSpendCY:        floatPtr(f, i, "Uniforms_Spend_CY"),
		UniformsSpendPY:        floatPtr(f, i, "Uniforms_Spend_PY"),
		UniformsSpendLifetime:  floatPtr(f, i, "Uniforms_Spend_Lifetime"),
		UniformsOrdersCY:       floatPtr(f, i, "Uniforms_Orders_CY"),
		UniformsOrdersLifetime: floatPtr(f, i, "Uniforms_Orders_Lifetime"),
		UniformsDaysSinceLast:  floatPtr(f, i, "Uniforms_DaysSinceLast"),
		UniformsPctOfTotalCY:   floatPtr(f, i, "Uniforms_Pct_of_Total_CY"),

		SparringUnitsCY:        floatPtr(f, i, "Sparring_Units_CY"),
		SparringUnitsPY:        floatPtr(f, i, "Sparring_Units_PY"),
		SparringUnitsLifetime:  floatPtr(f, i, "Sparring_Units_Lifetime"),
		SparringSpendCY:        floatPtr(f, i, "Sparring_Spend_CY"),
		SparringSpendPY:        floatPtr(f, i, "Sparring_Spend_PY"),
		SparringSpendLifetime:  floatPtr(f, i, "Sparring_Spend_Lifetime"),
		SparringOrdersCY:       floatPtr(f, i, "Sparring_Orders_CY"),
		SparringOrdersLifetime: floatPtr(f, i, "Sparring_Orders_Lifetime"),
		SparringDaysSinceLast:  floatPtr(f, i, "Sparring_DaysSinceLast"),
		SparringPctOfTotalCY:   floatPtr(f, i, "Sparring_Pct_of_Total_CY"),

		BeltsUnitsCY:        floatPtr(f, i, "Belts_Units_CY"),
		BeltsUnitsPY:        floatPtr(f, i, "Belts_Units_PY"),
		BeltsUnitsLifetime:  floatPtr(f, i, "Belts_Units_Lifetime"),
		BeltsSpendCY:        floatPtr(f, i, "Belts_Spend_CY"),
		BeltsSpendPY:        floatPtr(f, i, "Belts_Spend_PY"),
		BeltsSpendLifetime:  floatPtr(f, i, "Belts_Spend_Lifetime"),
		BeltsOrdersCY:       floatPtr(f, i, "Belts_Orders_CY"),
		BeltsOrdersLifetime: floatPtr(f, i, "Belts_Orders_Lifetime"),
		BeltsDaysSinceLast:  floatPtr(f, i, "Belts_DaysSinceLast"),
		BeltsPctOfTotalCY:   floatPtr(f, i, "Belts_Pct_of_Total_CY"),

		BagsUnitsCY:        floatPtr(f, i, "Bags_Units_CY"),
		BagsUnitsPY:        floatPtr(f, i, "Bags_Units_PY"),
		BagsUnitsLifetime:  floatPtr(f, i, "Bags_Units_Lifetime"),
		BagsSpendCY:        floatPtr(f, i, "Bags_Spend_CY"),
		BagsSpendPY:        floatPtr(f, i, "Bags_Spend_PY"),
		BagsSpendLifetime:  floatPtr(f, i, "Bags_Spend_Lifetime"),
		BagsOrdersCY:       floatPtr(f, i, "Bags_Orders_CY"),
		BagsOrdersLifetime: floatPtr(f, i, "Bags_Orders_Lifetime"),
		BagsDaysSinceLast:  floatPtr(f, i, "Bags_DaysSinceLast"),
		BagsPctOfTotalCY:   floatPtr(f, i, "Bags_Pct_of_Total_CY"),

		CustomsUnitsCY:        floatPtr(f, i, "Customs_Units_CY"),
		CustomsUnitsPY:        floatPtr(f, i, "Customs_Units_PY"),
		CustomsUnitsLifetime:  floatPtr(f, i, "Customs_Units_Lifetime"),
		CustomsSpendCY:        floatPtr(f, i, "Customs_Spend_CY"),
		CustomsSpendPY:        floatPtr(f, i, "Customs_Spend_PY"),
		CustomsSpendLifetime:  floatPtr(f, i, "Customs_Spend_Lifetime"),
		CustomsOrdersCY:       floatPtr(f, i, "Customs_Orders_CY"),
		CustomsOrdersLifetime: floatPtr(f, i, "Customs_Orders_Lifetime"),
		CustomsDaysSinceLast:  floatPtr(f, i, "Customs_DaysSinceLast"),
		CustomsPctOfTotalCY:   floatPtr(f, i, "Customs_Pct_of_Total_CY"),

		CUBSCategoriesActiveCY: floatPtr(f, i, "CUBS_Categories_Active_CY"),
		CUBSCategoriesActivePY: floatPtr(f, i, "CUBS_Categories_Active_PY"),
		CUBSCategoriesEver:     floatPtr(f, i, "CUBS_Categories_Ever"),
		CUBSCategoriesTrend:    floatPtr(f, i, "CUBS_Categories_Trend"),
	}
}
