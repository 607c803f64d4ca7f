// Package pipeline orchestrates a scoring run: read a snapshot file, shape
// and validate it, score every customer, merge the results into the scores
// table and relocate the file. Failures are attributed to the step that
// raised them so alerts point at the broken stage.
package pipeline

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/churnscope/internal/clock"
	"github.com/smallbiznis/churnscope/internal/filestore"
	"github.com/smallbiznis/churnscope/internal/frame"
	"github.com/smallbiznis/churnscope/internal/metrics"
	"github.com/smallbiznis/churnscope/internal/model"
	"github.com/smallbiznis/churnscope/internal/notify"
	"github.com/smallbiznis/churnscope/internal/schema"
	scoringdomain "github.com/smallbiznis/churnscope/internal/scoring/domain"
	storedomain "github.com/smallbiznis/churnscope/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	StepReadFile       = "read_file"
	StepParseCSV       = "parse_csv"
	StepNormalize      = "normalize_schema"
	StepValidateSchema = "validate_schema"
	StepScore          = "score"
	StepPersist        = "persist"
	StepMoveFile       = "move_file"
)

// unknownSnapshotDate marks runs whose snapshot date could not be determined.
// The run still proceeds; only file naming and the notification degrade.
const unknownSnapshotDate = "unknown"

type RunResult struct {
	RunID        string
	Object       string
	SnapshotDate string
	RowsScored   int
	RowsLoaded   int
	Duration     time.Duration
	Summary      Summary
}

type RunnerParam struct {
	fx.In

	Log       *zap.Logger
	Store     filestore.Store
	Validator *schema.Validator
	Scorer    scoringdomain.Service
	Repo      storedomain.Repository
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
	Clock     clock.Clock
	Node      *snowflake.Node
}

type Runner struct {
	log       *zap.Logger
	store     filestore.Store
	validator *schema.Validator
	scorer    scoringdomain.Service
	repo      storedomain.Repository
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	clock     clock.Clock
	node      *snowflake.Node
}

func NewRunner(p RunnerParam) *Runner {
	return &Runner{
		log:       p.Log.Named("pipeline"),
		store:     p.Store,
		validator: p.Validator,
		scorer:    p.Scorer,
		repo:      p.Repo,
		notifier:  p.Notifier,
		metrics:   p.Metrics,
		clock:     p.Clock,
		node:      p.Node,
	}
}

// Run executes one scoring run over the named inbox object.
func (r *Runner) Run(ctx context.Context, object string) (*RunResult, error) {
	runID := r.node.Generate().String()
	log := r.log.With(zap.String("run_id", runID), zap.String("object", object))
	started := r.clock.Now()
	log.Info("scoring run started")

	raw, err := r.store.Read(ctx, object)
	if err != nil {
		return nil, r.failed(ctx, log, object, StepReadFile, started, err)
	}

	f, err := frame.FromCSV(raw)
	if err != nil {
		return nil, r.failed(ctx, log, object, StepParseCSV, started, err)
	}

	// extraction runs on the raw frame so a later validation failure still
	// knows which snapshot the file carried
	snapshotDate, err := schema.ExtractSnapshotDate(f)
	if err != nil {
		log.Warn("snapshot date not found, continuing with unknown", zap.Error(err))
		snapshotDate = unknownSnapshotDate
	}

	schema.Normalize(f)

	if err := r.validator.Validate(f); err != nil {
		return nil, r.failed(ctx, log, object, StepValidateSchema, started, err)
	}

	rows, err := r.scorer.Score(ctx, f)
	if err != nil {
		return nil, r.failed(ctx, log, object, StepScore, started, err)
	}
	r.metrics.AddRowsScored(len(rows))

	loaded, err := r.repo.Persist(ctx, rows)
	if err != nil {
		return nil, r.failed(ctx, log, object, StepPersist, started, err)
	}
	r.metrics.AddRowsPersisted(loaded)

	if err := r.store.Move(ctx, object, filestore.ProcessedName(object, snapshotDate)); err != nil {
		return nil, r.failed(ctx, log, object, StepMoveFile, started, err)
	}

	duration := r.clock.Now().Sub(started)
	summary := Summarize(rows)
	r.metrics.ObserveRun("success", duration)
	r.metrics.SetRiskBandRows(summary.RiskDistribution)

	notice := notify.SuccessNotice{
		RowCount:         summary.RowCount,
		SnapshotDate:     snapshotDate,
		DurationSeconds:  duration.Seconds(),
		RiskDistribution: summary.RiskDistribution,
		MeanRisk:         summary.MeanRisk,
		MedianRisk:       summary.MedianRisk,
		TopReasons:       summary.TopReasons,
	}
	if err := r.notifier.Success(ctx, notice); err != nil {
		log.Warn("success notification failed", zap.Error(err))
	}

	log.Info("scoring run completed",
		zap.String("snapshot_date", snapshotDate),
		zap.Int("rows_scored", len(rows)),
		zap.Int("rows_loaded", loaded),
		zap.Duration("duration", duration),
	)
	return &RunResult{
		RunID:        runID,
		Object:       object,
		SnapshotDate: snapshotDate,
		RowsScored:   len(rows),
		RowsLoaded:   loaded,
		Duration:     duration,
		Summary:      summary,
	}, nil
}

// failed records the failure, relocates the file best effort and sends the
// failure notification. The original error is always returned unchanged.
func (r *Runner) failed(ctx context.Context, log *zap.Logger, object, step string, started time.Time, err error) error {
	duration := r.clock.Now().Sub(started)
	log.Error("scoring run failed",
		zap.String("step", step),
		zap.String("error_type", errorKind(err)),
		zap.Duration("duration", duration),
		zap.Error(err),
	)
	r.metrics.IncStepError(step)
	r.metrics.ObserveRun("failure", duration)

	if step != StepReadFile {
		if moveErr := r.store.Move(ctx, object, filestore.ErrorName(object)); moveErr != nil {
			log.Warn("could not move file to error location", zap.Error(moveErr))
		}
	}

	notice := notify.FailureNotice{
		Step:         step,
		ErrorType:    errorKind(err),
		ErrorMessage: err.Error(),
	}
	if notifyErr := r.notifier.Failure(ctx, notice); notifyErr != nil {
		log.Warn("failure notification failed", zap.Error(notifyErr))
	}
	return err
}

func errorKind(err error) string {
	var persistErr *storedomain.PersistError
	switch {
	case errors.Is(err, frame.ErrEmptyCSV), errors.Is(err, schema.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, schema.ErrTooFewColumns):
		return "too_few_columns"
	case errors.Is(err, schema.ErrMissingColumns):
		return "missing_columns"
	case errors.Is(err, schema.ErrDuplicateColumns):
		return "duplicate_columns"
	case errors.Is(err, model.ErrModelNotFound):
		return "model_not_found"
	case errors.Is(err, model.ErrBadArtifact):
		return "bad_model_artifact"
	case errors.Is(err, model.ErrScoring):
		return "scoring"
	case errors.Is(err, storedomain.ErrMissingKeys):
		return "missing_keys"
	case errors.As(err, &persistErr):
		return "persist"
	case os.IsNotExist(err):
		return "file_not_found"
	default:
		return "unknown"
	}
}
