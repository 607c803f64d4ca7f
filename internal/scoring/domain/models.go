package domain

import "time"

// ScoredRow is one customer snapshot with its scoring outputs. Rows are
// immutable once built: written to staging exactly once, then merged into the
// historical store keyed by (CustomerId, SnapshotDate).
type ScoredRow struct {
	CustomerID        string
	AccountName       *string
	Segment           *string
	CostCenter        *string
	SnapshotDate      time.Time
	FirstPurchaseDate *time.Time
	LastPurchaseDate  *time.Time

	ChurnRiskPct float64
	RiskBand     string
	Reason1      string
	Reason2      string
	Reason3      string
	ScoredAt     time.Time

	Features FeatureValues
}

// FeatureValues enumerates every persisted feature column at compile time.
// Nil means the source cell was missing or non-numeric and maps to SQL NULL.
type FeatureValues struct {
	OrdersCY       *float64 `gorm:"column:orders_cy"`
	OrdersPY       *float64 `gorm:"column:orders_py"`
	OrdersLifetime *float64 `gorm:"column:orders_lifetime"`
	SpendCY        *float64 `gorm:"column:spend_cy"`
	SpendPY        *float64 `gorm:"column:spend_py"`
	SpendLifetime  *float64 `gorm:"column:spend_lifetime"`
	UnitsCY        *float64 `gorm:"column:units_cy"`
	UnitsPY        *float64 `gorm:"column:units_py"`
	UnitsLifetime  *float64 `gorm:"column:units_lifetime"`
	AOVCY          *float64 `gorm:"column:aov_cy"`
	DaysSinceLast  *float64 `gorm:"column:days_since_last"`
	TenureDays     *float64 `gorm:"column:tenure_days"`
	SpendTrend     *float64 `gorm:"column:spend_trend"`
	OrdersTrend    *float64 `gorm:"column:orders_trend"`
	UnitsTrend     *float64 `gorm:"column:units_trend"`

	UniformsUnitsCY       *float64 `gorm:"column:uniforms_units_cy"`
	UniformsUnitsPY       *float64 `gorm:"column:uniforms_units_py"`
	UniformsUnitsLifetime *float64 `gorm:"column:uniforms_units_lifetime"`
	UniformsSpendCY       *float64 `gorm:"column:uniforms_spend_cy"`
	UniformsSpendPY       *float64 `gorm:"column:uniforms_spend_py"`
	UniformsSpendLifetime *float64 `gorm:"column:uniforms_spend_lifetime"`
	UniformsOrdersCY      *float64 `gorm:"column:uniforms_orders_cy"`
	UniformsOrdersLifetime *float64 `gorm:"column:uniforms_orders_lifetime"`
	UniformsDaysSinceLast  *float64 `gorm:"column:uniforms_days_since_last"`
	UniformsPctOfTotalCY   *float64 `gorm:"column:uniforms_pct_of_total_cy"`

	SparringUnitsCY        *float64 `gorm:"column:sparring_units_cy"`
	SparringUnitsPY        *float64 `gorm:"column:sparring_units_py"`
	SparringUnitsLifetime  *float64 `gorm:"column:sparring_units_lifetime"`
	SparringSpendCY        *float64 `gorm:"column:sparring_spend_cy"`
	SparringSpendPY        *float64 `gorm:"column:sparring_spend_py"`
	SparringSpendLifetime  *float64 `gorm:"column:sparring_spend_lifetime"`
	SparringOrdersCY       *float64 `gorm:"column:sparring_orders_cy"`
	SparringOrdersLifetime *float64 `gorm:"column:sparring_orders_lifetime"`
	SparringDaysSinceLast  *float64 `gorm:"column:sparring_days_since_last"`
	SparringPctOfTotalCY   *float64 `gorm:"column:sparring_pct_of_total_cy"`

	BeltsUnitsCY        *float64 `gorm:"column:belts_units_cy"`
	BeltsUnitsPY        *float64 `gorm:"column:belts_units_py"`
	BeltsUnitsLifetime  *float64 `gorm:"column:belts_units_lifetime"`
	BeltsSpendCY        *float64 `gorm:"column:belts_spend_cy"`
	BeltsSpendPY        *float64 `gorm:"column:belts_spend_py"`
	BeltsSpendLifetime  *float64 `gorm:"column:belts_spend_lifetime"`
	BeltsOrdersCY       *float64 `gorm:"column:belts_orders_cy"`
	BeltsOrdersLifetime *float64 `gorm:"column:belts_orders_lifetime"`
	BeltsDaysSinceLast  *float64 `gorm:"column:belts_days_since_last"`
	BeltsPctOfTotalCY   *float64 `gorm:"column:belts_pct_of_total_cy"`

	BagsUnitsCY        *float64 `gorm:"column:bags_units_cy"`
	BagsUnitsPY        *float64 `gorm:"column:bags_units_py"`
	BagsUnitsLifetime  *float64 `gorm:"column:bags_units_lifetime"`
	BagsSpendCY        *float64 `gorm:"column:bags_spend_cy"`
	BagsSpendPY        *float64 `gorm:"column:bags_spend_py"`
	BagsSpendLifetime  *float64 `gorm:"column:bags_spend_lifetime"`
	BagsOrdersCY       *float64 `gorm:"column:bags_orders_cy"`
	BagsOrdersLifetime *float64 `gorm:"column:bags_orders_lifetime"`
	BagsDaysSinceLast  *float64 `gorm:"column:bags_days_since_last"`
	BagsPctOfTotalCY   *float64 `gorm:"column:bags_pct_of_total_cy"`

	CustomsUnitsCY        *float64 `gorm:"column:customs_units_cy"`
	CustomsUnitsPY        *float64 `gorm:"column:customs_units_py"`
	CustomsUnitsLifetime  *float64 `gorm:"column:customs_units_lifetime"`
	CustomsSpendCY        *float64 `gorm:"column:customs_spend_cy"`
	CustomsSpendPY        *float64 `gorm:"column:customs_spend_py"`
	CustomsSpendLifetime  *float64 `gorm:"column:customs_spend_lifetime"`
	CustomsOrdersCY       *float64 `gorm:"column:customs_orders_cy"`
	CustomsOrdersLifetime *float64 `gorm:"column:customs_orders_lifetime"`
	CustomsDaysSinceLast  *float64 `gorm:"column:customs_days_since_last"`
	CustomsPctOfTotalCY   *float64 `gorm:"column:customs_pct_of_total_cy"`

	CUBSCategoriesActiveCY *float64 `gorm:"column:cubs_categories_active_cy"`
	CUBSCategoriesActivePY *float64 `gorm:"column:cubs_categories_active_py"`
	CUBSCategoriesEver     *float64 `gorm:"column:cubs_categories_ever"`
	CUBSCategoriesTrend    *float64 `gorm:"column:cubs_categories_trend"`
}
