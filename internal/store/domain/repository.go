package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	scoringdomain "github.com/smallbiznis/churnscope/internal/scoring/domain"
	"github.com/smallbiznis/churnscope/pkg/db/pagination"
)

var (
	// ErrMissingKeys means a row lacks CustomerId or SnapshotDate. Raised
	// before any write is attempted.
	ErrMissingKeys = errors.New("missing_persistence_keys")
)

// PersistError wraps any failure during staged load, merge or truncate.
// RowsLoaded counts rows that had reached staging before the failure; the
// transaction was rolled back, so none of them were committed.
type PersistError struct {
	RowsLoaded int
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist churn scores failed after loading %d staging rows: %v", e.RowsLoaded, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// ScoreFilter narrows a listing of historical scores. Zero values mean no
// constraint.
type ScoreFilter struct {
	SnapshotDate *time.Time
	RiskBand     string
	Cursor       *pagination.Cursor
	Limit        int
}

// Repository persists scored rows through the staging/merge protocol and
// serves reads over the historical table.
type Repository interface {
	// Persist loads rows into staging in bounded batches, merges them into
	// the historical store keyed by (CustomerId, SnapshotDate) and clears
	// staging, all in one transaction. It returns the number of rows written.
	// Replaying the same rows updates rather than duplicates.
	Persist(ctx context.Context, rows []scoringdomain.ScoredRow) (int, error)

	// List pages through persisted scores ordered by the merge key.
	List(ctx context.Context, filter ScoreFilter) ([]ChurnScore, *pagination.PageInfo, error)
}
