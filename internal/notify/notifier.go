// Package notify delivers run outcome notifications. Delivery is fire and
// forget: the pipeline logs failures here but never fails a run over them.
package notify

import "context"

type SuccessNotice struct {
	RowCount         int            `json:"row_count"`
	SnapshotDate     string         `json:"snapshot_date"`
	DurationSeconds  float64        `json:"duration_seconds"`
	RiskDistribution map[string]int `json:"risk_distribution"`
	MeanRisk         *float64       `json:"mean_risk,omitempty"`
	MedianRisk       *float64       `json:"median_risk,omitempty"`
	TopReasons       []ReasonCount  `json:"top_reasons,omitempty"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type FailureNotice struct {
	Step         string `json:"step"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

type Notifier interface {
	Success(ctx context.Context, n SuccessNotice) error
	Failure(ctx context.Context, n FailureNotice) error
}

type NoOpNotifier struct{}

func (NoOpNotifier) Success(ctx context.Context, n SuccessNotice) error { return nil }
func (NoOpNotifier) Failure(ctx context.Context, n FailureNotice) error { return nil }
