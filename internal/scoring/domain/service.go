package domain

import (
	"context"

	"github.com/smallbiznis/churnscope/internal/frame"
)

// Service scores a normalized customer snapshot table.
type Service interface {
	Score(ctx context.Context, f *frame.Frame) ([]ScoredRow, error)
}
