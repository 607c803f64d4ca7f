package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/churnscope/internal/config"
	scoringdomain "github.com/smallbiznis/churnscope/internal/scoring/domain"
	storedomain "github.com/smallbiznis/churnscope/internal/store/domain"
	"github.com/smallbiznis/churnscope/pkg/db"
	"github.com/smallbiznis/churnscope/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultBatchSize = 5000

// maxBindVariables is the lowest single-statement placeholder limit across
// the supported stores (sqlite's 32766; postgres and mysql allow 65535).
// Each staged row binds one variable per column, so inserts are capped at
// maxBindVariables / len(scoreColumns) rows regardless of the configured
// batch size.
const maxBindVariables = 32766

// scoreColumns is the canonical persisted column order, shared by the staging
// load and the merge statement. The first two entries are the merge key.
var scoreColumns = []string{
	"customer_id", "snapshot_date",
	"account_name", "segment", "cost_center",
	"first_purchase_date", "last_purchase_date",
	"churn_risk_pct", "risk_band", "reason_1", "reason_2", "reason_3", "scored_at",
	"orders_cy", "orders_py", "orders_lifetime",
	"spend_cy", "spend_py", "spend_lifetime",
	"units_cy", "units_py", "units_lifetime",
	"aov_cy", "days_since_last", "tenure_days",
	"spend_trend", "orders_trend", "units_trend",
	"uniforms_units_cy", "uniforms_units_py", "uniforms_units_lifetime",
	"uniforms_spend_cy", "uniforms_spend_py", "uniforms_spend_lifetime",
	"uniforms_orders_cy", "uniforms_orders_lifetime",
	"uniforms_days_since_last", "uniforms_pct_of_total_cy",
	"sparring_units_cy", "sparring_units_py", "sparring_units_lifetime",
	"sparring_spend_cy", "sparring_spend_py", "sparring_spend_lifetime",
	"sparring_orders_cy", "sparring_orders_lifetime",
	"sparring_days_since_last", "sparring_pct_of_total_cy",
	"belts_units_cy", "belts_units_py", "belts_units_lifetime",
	"belts_spend_cy", "belts_spend_py", "belts_spend_lifetime",
	"belts_orders_cy", "belts_orders_lifetime",
	"belts_days_since_last", "belts_pct_of_total_cy",
	"bags_units_cy", "bags_units_py", "bags_units_lifetime",
	"bags_spend_cy", "bags_spend_py", "bags_spend_lifetime",
	"bags_orders_cy", "bags_orders_lifetime",
	"bags_days_since_last", "bags_pct_of_total_cy",
	"customs_units_cy", "customs_units_py", "customs_units_lifetime",
	"customs_spend_cy", "customs_spend_py", "customs_spend_lifetime",
	"customs_orders_cy", "customs_orders_lifetime",
	"customs_days_since_last", "customs_pct_of_total_cy",
	"cubs_categories_active_cy", "cubs_categories_active_py",
	"cubs_categories_ever", "cubs_categories_trend",
}

type RepositoryParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config config.Config
}

type repo struct {
	db        *gorm.DB
	log       *zap.Logger
	batchSize int
}

func Provide(p RepositoryParam) storedomain.Repository {
	batch := p.Config.StagingBatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &repo{
		db:        p.DB,
		log:       p.Log.Named("store.repository"),
		batchSize: batch,
	}
}

func (r *repo) Persist(ctx context.Context, rows []scoringdomain.ScoredRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	for i, row := range rows {
		if row.CustomerID == "" || row.SnapshotDate.IsZero() {
			return 0, fmt.Errorf("%w: row %d lacks CustomerId or SnapshotDate",
				storedomain.ErrMissingKeys, i)
		}
	}

	staged := make([]storedomain.ChurnScoreStaging, len(rows))
	for i, row := range rows {
		staged[i] = storedomain.FromScoredRow(row)
	}

	loaded := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Batching bounds statement and parameter-count limits of the
		// underlying store; it does not split the transaction.
		batch := r.batchSize
		if rowsPerInsert := maxBindVariables / len(scoreColumns); batch > rowsPerInsert {
			batch = rowsPerInsert
		}
		for start := 0; start < len(staged); start += batch {
			end := start + batch
			if end > len(staged) {
				end = len(staged)
			}
			if err := tx.Create(staged[start:end]).Error; err != nil {
				if db.IsDuplicateKeyErr(err) {
					return fmt.Errorf("input repeats a (CustomerId, SnapshotDate) pair: %w", err)
				}
				return err
			}
			loaded += end - start
		}

		if err := tx.Exec(mergeSQL(tx.Dialector.Name())).Error; err != nil {
			return err
		}

		return tx.Exec("DELETE FROM churn_score_staging").Error
	})
	if err != nil {
		return 0, &storedomain.PersistError{RowsLoaded: loaded, Err: err}
	}

	r.log.Info("persisted churn scores",
		zap.Int("rows", loaded),
		zap.Int("batch_size", r.batchSize),
	)
	return loaded, nil
}

// List pages over churn_scores by keyset on (customer_id, snapshot_date).
func (r *repo) List(ctx context.Context, filter storedomain.ScoreFilter) ([]storedomain.ChurnScore, *pagination.PageInfo, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = pagination.DefaultPageSize
	}

	q := r.db.WithContext(ctx).
		Model(&storedomain.ChurnScore{}).
		Order("customer_id, snapshot_date")

	if filter.SnapshotDate != nil {
		q = q.Where("snapshot_date = ?", *filter.SnapshotDate)
	}
	if filter.RiskBand != "" {
		q = q.Where("risk_band = ?", filter.RiskBand)
	}
	if c := filter.Cursor; c != nil {
		after, err := time.Parse("2006-01-02", c.SnapshotDate)
		if err != nil {
			return nil, nil, fmt.Errorf("bad page cursor: %w", err)
		}
		q = q.Where("(customer_id, snapshot_date) > (?, ?)", c.CustomerID, after)
	}

	// one extra row decides has_more
	var scores []storedomain.ChurnScore
	if err := q.Limit(limit + 1).Find(&scores).Error; err != nil {
		return nil, nil, err
	}

	info := &pagination.PageInfo{}
	if len(scores) > limit {
		scores = scores[:limit]
		info.HasMore = true
		last := scores[len(scores)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			CustomerID:   last.CustomerID,
			SnapshotDate: last.SnapshotDate.Format("2006-01-02"),
		})
		if err != nil {
			return nil, nil, err
		}
		info.NextPageToken = token
	}
	return scores, info, nil
}

// mergeSQL reconciles staging into the historical table: insert when the
// (customer_id, snapshot_date) key is absent, update when present. The upsert
// makes the whole persist call idempotent under replay.
func mergeSQL(dialect string) string {
	cols := strings.Join(scoreColumns, ", ")

	if dialect == "mysql" {
		assigns := make([]string, 0, len(scoreColumns)-2)
		for _, col := range scoreColumns[2:] {
			assigns = append(assigns, fmt.Sprintf("%s = VALUES(%s)", col, col))
		}
		return fmt.Sprintf(
			"INSERT INTO churn_scores (%s) SELECT %s FROM churn_score_staging ON DUPLICATE KEY UPDATE %s",
			cols, cols, strings.Join(assigns, ", "),
		)
	}

	assigns := make([]string, 0, len(scoreColumns)-2)
	for _, col := range scoreColumns[2:] {
		assigns = append(assigns, fmt.Sprintf("%s = excluded.%s", col, col))
	}
	// WHERE true disambiguates the upsert clause for sqlite's parser
	return fmt.Sprintf(
		"INSERT INTO churn_scores (%s) SELECT %s FROM churn_score_staging WHERE true ON CONFLICT (customer_id, snapshot_date) DO UPDATE SET %s",
		cols, cols, strings.Join(assigns, ", "),
	)
}
