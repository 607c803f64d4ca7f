package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/churnscope/internal/config"
	scoringdomain "github.com/smallbiznis/churnscope/internal/scoring/domain"
	storedomain "github.com/smallbiznis/churnscope/internal/store/domain"
	"github.com/smallbiznis/churnscope/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (*gorm.DB, storedomain.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&storedomain.ChurnScore{},
		&storedomain.ChurnScoreStaging{},
	))

	repo := Provide(RepositoryParam{
		DB:     db,
		Log:    zap.NewNop(),
		Config: config.Config{StagingBatchSize: 2},
	})
	return db, repo
}

func floatp(v float64) *float64 { return &v }
func strp(s string) *string     { return &s }

func scoredRow(customerID string, snapshot time.Time, risk float64) scoringdomain.ScoredRow {
	return scoringdomain.ScoredRow{
		CustomerID:   customerID,
		Segment:      strp("Gyms"),
		SnapshotDate: snapshot,
		ChurnRiskPct: risk,
		RiskBand:     "A - High Risk",
		Reason1:      "High days since last order",
		Reason2:      "Low order count (current year)",
		Reason3:      "Low spend (current year)",
		ScoredAt:     time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		Features: scoringdomain.FeatureValues{
			OrdersCY: floatp(3),
			SpendCY:  floatp(1200.5),
		},
	}
}

func TestPersistInsertsAndClearsStaging(t *testing.T) {
	db, repo := setupRepo(t)
	snapshot := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	// three rows with batch size two exercises the chunked staging load
	rows := []scoringdomain.ScoredRow{
		scoredRow("C001", snapshot, 0.9),
		scoredRow("C002", snapshot, 0.8),
		scoredRow("C003", snapshot, 0.7),
	}

	loaded, err := repo.Persist(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded)

	var count int64
	db.Model(&storedomain.ChurnScore{}).Count(&count)
	assert.EqualValues(t, 3, count)

	db.Model(&storedomain.ChurnScoreStaging{}).Count(&count)
	assert.Zero(t, count, "staging must be cleared after the merge")

	var got storedomain.ChurnScore
	require.NoError(t, db.Where("customer_id = ?", "C001").First(&got).Error)
	assert.Equal(t, 0.9, got.ChurnRiskPct)
	assert.Equal(t, "A - High Risk", got.RiskBand)
	require.NotNil(t, got.Features.SpendCY)
	assert.Equal(t, 1200.5, *got.Features.SpendCY)
}

func TestPersistLargeBatchAtDefaultSize(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&storedomain.ChurnScore{},
		&storedomain.ChurnScoreStaging{},
	))

	// zero config falls back to the 5000-row default; with ~86 bound columns
	// per row the staging inserts must still stay under the store's
	// per-statement variable limit
	repo := Provide(RepositoryParam{DB: db, Log: zap.NewNop(), Config: config.Config{}})

	snapshot := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	rows := make([]scoringdomain.ScoredRow, 1000)
	for i := range rows {
		rows[i] = scoredRow(fmt.Sprintf("C%04d", i), snapshot, 0.5)
	}

	loaded, err := repo.Persist(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1000, loaded)

	var count int64
	db.Model(&storedomain.ChurnScore{}).Count(&count)
	assert.EqualValues(t, 1000, count)
}

func TestPersistIsIdempotentForSameKey(t *testing.T) {
	db, repo := setupRepo(t)
	snapshot := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	_, err := repo.Persist(context.Background(), []scoringdomain.ScoredRow{
		scoredRow("C001", snapshot, 0.9),
	})
	require.NoError(t, err)

	// same key again with a new score: updated in place, no second row
	updated := scoredRow("C001", snapshot, 0.2)
	updated.RiskBand = "C - Low Risk"
	_, err = repo.Persist(context.Background(), []scoringdomain.ScoredRow{updated})
	require.NoError(t, err)

	var count int64
	db.Model(&storedomain.ChurnScore{}).Count(&count)
	assert.EqualValues(t, 1, count)

	var got storedomain.ChurnScore
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, 0.2, got.ChurnRiskPct)
	assert.Equal(t, "C - Low Risk", got.RiskBand)
}

func TestPersistKeepsHistoryAcrossSnapshots(t *testing.T) {
	db, repo := setupRepo(t)

	_, err := repo.Persist(context.Background(), []scoringdomain.ScoredRow{
		scoredRow("C001", time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), 0.4),
	})
	require.NoError(t, err)
	_, err = repo.Persist(context.Background(), []scoringdomain.ScoredRow{
		scoredRow("C001", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), 0.9),
	})
	require.NoError(t, err)

	var count int64
	db.Model(&storedomain.ChurnScore{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestPersistEmptyBatchIsNoOp(t *testing.T) {
	_, repo := setupRepo(t)

	loaded, err := repo.Persist(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, loaded)
}

func TestPersistRejectsMissingKeys(t *testing.T) {
	db, repo := setupRepo(t)

	missingID := scoredRow("", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), 0.5)
	_, err := repo.Persist(context.Background(), []scoringdomain.ScoredRow{missingID})
	assert.ErrorIs(t, err, storedomain.ErrMissingKeys)

	missingDate := scoredRow("C001", time.Time{}, 0.5)
	_, err = repo.Persist(context.Background(), []scoringdomain.ScoredRow{missingDate})
	assert.ErrorIs(t, err, storedomain.ErrMissingKeys)

	var count int64
	db.Model(&storedomain.ChurnScore{}).Count(&count)
	assert.Zero(t, count, "fail-fast before any staging write")
}

func TestPersistRejectsDuplicateKeysInBatch(t *testing.T) {
	db, repo := setupRepo(t)
	snapshot := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	_, err := repo.Persist(context.Background(), []scoringdomain.ScoredRow{
		scoredRow("C001", snapshot, 0.9),
		scoredRow("C001", snapshot, 0.2),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repeats a (CustomerId, SnapshotDate) pair")

	var count int64
	db.Model(&storedomain.ChurnScore{}).Count(&count)
	assert.Zero(t, count)
}

func TestPersistRollsBackOnMergeFailure(t *testing.T) {
	db, repo := setupRepo(t)

	// dropping the target table makes the merge fail after staging loads
	require.NoError(t, db.Migrator().DropTable(&storedomain.ChurnScore{}))

	_, err := repo.Persist(context.Background(), []scoringdomain.ScoredRow{
		scoredRow("C001", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), 0.9),
	})
	require.Error(t, err)

	var persistErr *storedomain.PersistError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, 1, persistErr.RowsLoaded)

	// the transaction rolled the staging load back
	var count int64
	db.Model(&storedomain.ChurnScoreStaging{}).Count(&count)
	assert.Zero(t, count)
}

func TestPersistNaNFeatureBecomesNull(t *testing.T) {
	db, repo := setupRepo(t)

	row := scoredRow("C001", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), 0.9)
	row.Features.SpendCY = floatp(math.NaN())

	_, err := repo.Persist(context.Background(), []scoringdomain.ScoredRow{row})
	require.NoError(t, err)

	var got storedomain.ChurnScore
	require.NoError(t, db.First(&got).Error)
	assert.Nil(t, got.Features.SpendCY)
	require.NotNil(t, got.Features.OrdersCY)
	assert.Equal(t, float64(3), *got.Features.OrdersCY)
}

func TestListPagesByKeyset(t *testing.T) {
	_, repo := setupRepo(t)
	snapshot := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	_, err := repo.Persist(context.Background(), []scoringdomain.ScoredRow{
		scoredRow("C001", snapshot, 0.9),
		scoredRow("C002", snapshot, 0.8),
		scoredRow("C003", snapshot, 0.7),
	})
	require.NoError(t, err)

	first, info, err := repo.List(context.Background(), storedomain.ScoreFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, info.HasMore)
	require.NotEmpty(t, info.NextPageToken)
	assert.Equal(t, "C001", first[0].CustomerID)
	assert.Equal(t, "C002", first[1].CustomerID)

	cursor, err := pagination.DecodeCursor(info.NextPageToken)
	require.NoError(t, err)

	second, info, err := repo.List(context.Background(), storedomain.ScoreFilter{
		Limit:  2,
		Cursor: cursor,
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.False(t, info.HasMore)
	assert.Equal(t, "C003", second[0].CustomerID)
}

func TestListFilters(t *testing.T) {
	_, repo := setupRepo(t)
	june := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	may := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	low := scoredRow("C002", june, 0.1)
	low.RiskBand = "C - Low Risk"
	_, err := repo.Persist(context.Background(), []scoringdomain.ScoredRow{
		scoredRow("C001", june, 0.9),
		low,
		scoredRow("C001", may, 0.8),
	})
	require.NoError(t, err)

	got, _, err := repo.List(context.Background(), storedomain.ScoreFilter{
		SnapshotDate: &june,
		RiskBand:     "A - High Risk",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C001", got[0].CustomerID)
}

func TestMergeSQLDialects(t *testing.T) {
	pg := mergeSQL("postgres")
	assert.Contains(t, pg, "ON CONFLICT (customer_id, snapshot_date) DO UPDATE SET")
	assert.Contains(t, pg, "churn_risk_pct = excluded.churn_risk_pct")

	my := mergeSQL("mysql")
	assert.Contains(t, my, "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, my, "churn_risk_pct = VALUES(churn_risk_pct)")

	// merge key columns are never in the update list
	assert.NotContains(t, pg, "customer_id = excluded")
	assert.NotContains(t, my, "customer_id = VALUES")
}
