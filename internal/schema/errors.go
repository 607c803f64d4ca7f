package schema

import "errors"

var (
	ErrEmptyInput       = errors.New("empty_input")
	ErrTooFewColumns    = errors.New("too_few_columns")
	ErrMissingColumns   = errors.New("missing_required_columns")
	ErrDuplicateColumns = errors.New("duplicate_columns")
	ErrNoSnapshotDate   = errors.New("snapshot_date_not_found")
)
