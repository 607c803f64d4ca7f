package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/churnscope/internal/clock"
	"github.com/smallbiznis/churnscope/internal/config"
	"github.com/smallbiznis/churnscope/internal/filestore"
	"github.com/smallbiznis/churnscope/internal/metrics"
	"github.com/smallbiznis/churnscope/internal/model"
	"github.com/smallbiznis/churnscope/internal/notify"
	"github.com/smallbiznis/churnscope/internal/schema"
	"github.com/smallbiznis/churnscope/internal/scoring/service"
	storedomain "github.com/smallbiznis/churnscope/internal/store/domain"
	"github.com/smallbiznis/churnscope/internal/store/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testModelJSON = `{
	"version": "test",
	"base_score": 0,
	"trees": [
		{"nodes": [
			{"feature": 0, "threshold": 60, "left": 1, "right": 2, "missing": 2, "cover": 100},
			{"feature": -1, "value": -2, "cover": 50},
			{"feature": -1, "value": 2, "cover": 50}
		]}
	]
}`

const testColumnsJSON = `["DaysSinceLast", "Orders_CY", "Segment_Gyms"]`

type fakeNotifier struct {
	successes []notify.SuccessNotice
	failures  []notify.FailureNotice
}

func (f *fakeNotifier) Success(ctx context.Context, n notify.SuccessNotice) error {
	f.successes = append(f.successes, n)
	return nil
}

func (f *fakeNotifier) Failure(ctx context.Context, n notify.FailureNotice) error {
	f.failures = append(f.failures, n)
	return nil
}

type testHarness struct {
	runner   *Runner
	store    filestore.Store
	db       *gorm.DB
	notifier *fakeNotifier
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "churn_model.json")
	colsPath := filepath.Join(dir, "model_columns.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(testModelJSON), 0o644))
	require.NoError(t, os.WriteFile(colsPath, []byte(testColumnsJSON), 0o644))

	cfg := config.Config{
		ModelPath:        modelPath,
		ModelColumnsPath: colsPath,
		StagingBatchSize: 100,
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&storedomain.ChurnScore{},
		&storedomain.ChurnScoreStaging{},
	))

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store := filestore.NewLocal(filepath.Join(dir, "data"))
	notifier := &fakeNotifier{}

	runner := NewRunner(RunnerParam{
		Log:       log,
		Store:     store,
		Validator: schema.NewValidator(log),
		Scorer: service.NewService(service.ServiceParam{
			Log:      log,
			Provider: model.NewProvider(cfg, log),
			Clock:    fake,
		}),
		Repo: repository.Provide(repository.RepositoryParam{
			DB:     db,
			Log:    log,
			Config: cfg,
		}),
		Notifier: notifier,
		Metrics:  metrics.NewWithRegisterer(prometheus.NewRegistry()),
		Clock:    fake,
		Node:     node,
	})

	return &testHarness{runner: runner, store: store, db: db, notifier: notifier}
}

// snapshotCSV renders a full-width snapshot export: the five required columns,
// the two model features and enough filler columns to clear schema validation.
func snapshotCSV(t *testing.T) []byte {
	t.Helper()
	header := []string{
		"Customers[account_Order]", "Customers[account_Name]",
		"Customers[Segment]", "Customers[Cost Center]",
		"[SnapshotDate]", "[DaysSinceLast]", "[Orders_CY]",
	}
	for i := len(header); i < schema.ExpectedColumnCount; i++ {
		header = append(header, fmt.Sprintf("[Feature_%02d]", i))
	}

	row := func(id, name, segment, days, orders string) string {
		cells := []string{id, name, segment, "North", "2025-06-30", days, orders}
		for len(cells) < len(header) {
			cells = append(cells, "1")
		}
		return strings.Join(cells, ",")
	}

	return []byte(strings.Join([]string{
		strings.Join(header, ","),
		row("C001", "Tiger Dojo", "Gyms", "10", "8"),
		row("C002", "Crane Gym", "Schools", "200", "1"),
		row("C003", "Lotus Dojo", "Gyms", "95", "2"),
	}, "\n") + "\n")
}

func TestRunSuccess(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.store.Write(ctx, "inbox/snapshot.csv", snapshotCSV(t)))

	result, err := h.runner.Run(ctx, "inbox/snapshot.csv")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "2025-06-30", result.SnapshotDate)
	assert.Equal(t, 3, result.RowsScored)
	assert.Equal(t, 3, result.RowsLoaded)

	// all rows merged into the historical store
	var count int64
	h.db.Model(&storedomain.ChurnScore{}).Count(&count)
	assert.EqualValues(t, 3, count)

	var stale storedomain.ChurnScore
	require.NoError(t, h.db.Where("customer_id = ?", "C002").First(&stale).Error)
	assert.Equal(t, "A - High Risk", stale.RiskBand)
	assert.Equal(t, "High days since last order", stale.Reason1)

	// the file moved to processed/ with the snapshot date suffix
	_, err = h.store.Read(ctx, "inbox/snapshot.csv")
	assert.True(t, os.IsNotExist(err))
	moved, err := h.store.Read(ctx, "processed/snapshot-2025-06-30.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, moved)

	// success notification carries the batch summary
	require.Len(t, h.notifier.successes, 1)
	notice := h.notifier.successes[0]
	assert.Equal(t, 3, notice.RowCount)
	assert.Equal(t, "2025-06-30", notice.SnapshotDate)
	assert.Equal(t, 2, notice.RiskDistribution["A - High Risk"])
	assert.Equal(t, 1, notice.RiskDistribution["C - Low Risk"])
	require.NotNil(t, notice.MeanRisk)
	assert.Empty(t, h.notifier.failures)
}

func TestRunIsIdempotentPerSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.store.Write(ctx, "inbox/snapshot.csv", snapshotCSV(t)))
	_, err := h.runner.Run(ctx, "inbox/snapshot.csv")
	require.NoError(t, err)

	// same snapshot delivered again: scores are replaced, not duplicated
	require.NoError(t, h.store.Write(ctx, "inbox/snapshot2.csv", snapshotCSV(t)))
	_, err = h.runner.Run(ctx, "inbox/snapshot2.csv")
	require.NoError(t, err)

	var count int64
	h.db.Model(&storedomain.ChurnScore{}).Count(&count)
	assert.EqualValues(t, 3, count)
}

func TestRunValidationFailureMovesFileToError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	narrow := []byte("CustomerId,Segment\nC001,Gyms\n")
	require.NoError(t, h.store.Write(ctx, "inbox/narrow.csv", narrow))

	_, err := h.runner.Run(ctx, "inbox/narrow.csv")
	require.ErrorIs(t, err, schema.ErrTooFewColumns)

	// file relocated to error/, nothing persisted
	_, err = h.store.Read(ctx, "inbox/narrow.csv")
	assert.True(t, os.IsNotExist(err))
	_, err = h.store.Read(ctx, "error/narrow.csv")
	assert.NoError(t, err)

	var count int64
	h.db.Model(&storedomain.ChurnScore{}).Count(&count)
	assert.Zero(t, count)

	require.Len(t, h.notifier.failures, 1)
	failure := h.notifier.failures[0]
	assert.Equal(t, StepValidateSchema, failure.Step)
	assert.Equal(t, "too_few_columns", failure.ErrorType)
	assert.Contains(t, failure.ErrorMessage, "too few columns")
	assert.Empty(t, h.notifier.successes)
}

func TestRunMissingFileFailsWithoutMove(t *testing.T) {
	h := newHarness(t)

	_, err := h.runner.Run(context.Background(), "inbox/nope.csv")
	require.Error(t, err)

	require.Len(t, h.notifier.failures, 1)
	assert.Equal(t, StepReadFile, h.notifier.failures[0].Step)
	assert.Equal(t, "file_not_found", h.notifier.failures[0].ErrorType)
}

func TestRunEmptyFile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.store.Write(ctx, "inbox/empty.csv", []byte{}))

	_, err := h.runner.Run(ctx, "inbox/empty.csv")
	require.Error(t, err)

	require.Len(t, h.notifier.failures, 1)
	assert.Equal(t, StepParseCSV, h.notifier.failures[0].Step)
	assert.Equal(t, "empty_input", h.notifier.failures[0].ErrorType)
}
