package domain

import (
	"math"
	"time"

	scoringdomain "github.com/smallbiznis/churnscope/internal/scoring/domain"
)

// ChurnScore is the historical store record, keyed by
// (customer_id, snapshot_date). The merge from staging is its sole write path.
type ChurnScore struct {
	CustomerID   string    `gorm:"column:customer_id;primaryKey"`
	SnapshotDate time.Time `gorm:"column:snapshot_date;primaryKey"`

	AccountName       *string    `gorm:"column:account_name"`
	Segment           *string    `gorm:"column:segment"`
	CostCenter        *string    `gorm:"column:cost_center"`
	FirstPurchaseDate *time.Time `gorm:"column:first_purchase_date"`
	LastPurchaseDate  *time.Time `gorm:"column:last_purchase_date"`

	ChurnRiskPct float64   `gorm:"column:churn_risk_pct"`
	RiskBand     string    `gorm:"column:risk_band"`
	Reason1      string    `gorm:"column:reason_1"`
	Reason2      string    `gorm:"column:reason_2"`
	Reason3      string    `gorm:"column:reason_3"`
	ScoredAt     time.Time `gorm:"column:scored_at"`

	Features scoringdomain.FeatureValues `gorm:"embedded"`
}

func (ChurnScore) TableName() string { return "churn_scores" }

// ChurnScoreStaging rows exist only within one persistence transaction; the
// table is cleared in the same transaction that performs the merge.
type ChurnScoreStaging struct {
	ChurnScore `gorm:"embedded"`
}

func (ChurnScoreStaging) TableName() string { return "churn_score_staging" }

// FromScoredRow maps a scored row onto the staging record. Timestamps become
// plain calendar dates and NaN collapses to NULL.
func FromScoredRow(r scoringdomain.ScoredRow) ChurnScoreStaging {
	score := ChurnScore{
		CustomerID:        r.CustomerID,
		SnapshotDate:      dateOnly(r.SnapshotDate),
		AccountName:       r.AccountName,
		Segment:           r.Segment,
		CostCenter:        r.CostCenter,
		FirstPurchaseDate: dateOnlyPtr(r.FirstPurchaseDate),
		LastPurchaseDate:  dateOnlyPtr(r.LastPurchaseDate),
		ChurnRiskPct:      r.ChurnRiskPct,
		RiskBand:          r.RiskBand,
		Reason1:           r.Reason1,
		Reason2:           r.Reason2,
		Reason3:           r.Reason3,
		ScoredAt:          r.ScoredAt,
		Features:          dropNaN(r.Features),
	}
	return ChurnScoreStaging{ChurnScore: score}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dateOnly(*t)
	return &d
}

func dropNaN(fv scoringdomain.FeatureValues) scoringdomain.FeatureValues {
	for _, p := range []**float64{
		&fv.OrdersCY, &fv.OrdersPY, &fv.OrdersLifetime,
		&fv.SpendCY, &fv.SpendPY, &fv.SpendLifetime,
		&fv.UnitsCY, &fv.UnitsPY, &fv.UnitsLifetime,
		&fv.AOVCY, &fv.DaysSinceLast, &fv.TenureDays,
		&fv.SpendTrend, &fv.OrdersTrend, &fv.UnitsTrend,
		&fv.UniformsUnitsCY, &fv.UniformsUnitsPY, &fv.UniformsUnitsLifetime,
		&fv.UniformsSpendCY, &fv.UniformsSpendPY, &fv.UniformsSpendLifetime,
		&fv.UniformsOrdersCY, &fv.UniformsOrdersLifetime,
		&fv.UniformsDaysSinceLast, &fv.UniformsPctOfTotalCY,
		&fv.SparringUnitsCY, &fv.SparringUnitsPY, &fv.SparringUnitsLifetime,
		&fv.SparringSpendCY, &fv.SparringSpendPY, &fv.SparringSpendLifetime,
		&fv.SparringOrdersCY, &fv.SparringOrdersLifetime,
		&fv.SparringDaysSinceLast, &fv.SparringPctOfTotalCY,
		&fv.BeltsUnitsCY, &fv.BeltsUnitsPY, &fv.BeltsUnitsLifetime,
		&fv.BeltsSpendCY, &fv.BeltsSpendPY, &fv.BeltsSpendLifetime,
		&fv.BeltsOrdersCY, &fv.BeltsOrdersLifetime,
		&fv.BeltsDaysSinceLast, &fv.BeltsPctOfTotalCY,
		&fv.BagsUnitsCY, &fv.BagsUnitsPY, &fv.BagsUnitsLifetime,
		&fv.BagsSpendCY, &fv.BagsSpendPY, &fv.BagsSpendLifetime,
		&fv.BagsOrdersCY, &fv.BagsOrdersLifetime,
		&fv.BagsDaysSinceLast, &fv.BagsPctOfTotalCY,
		&fv.CustomsUnitsCY, &fv.CustomsUnitsPY, &fv.CustomsUnitsLifetime,
		&fv.CustomsSpendCY, &fv.CustomsSpendPY, &fv.CustomsSpendLifetime,
		&fv.CustomsOrdersCY, &fv.CustomsOrdersLifetime,
		&fv.CustomsDaysSinceLast, &fv.CustomsPctOfTotalCY,
		&fv.CUBSCategoriesActiveCY, &fv.CUBSCategoriesActivePY,
		&fv.CUBSCategoriesEver, &fv.CUBSCategoriesTrend,
	} {
		if *p != nil && math.IsNaN(**p) {
			*p = nil
		}
	}
	return fv
}
