package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingTableCarriesMergeKey(t *testing.T) {
	up, err := embeddedMigrations.ReadFile("migrations/0001_churn_scores.up.sql")
	require.NoError(t, err)

	ddl := string(up)
	assert.Contains(t, ddl, "PRIMARY KEY (customer_id, snapshot_date)")
	// staging inherits the key so an in-batch duplicate pair fails during the
	// staging load rather than inside the merge statement
	assert.Contains(t, ddl, "LIKE churn_scores INCLUDING DEFAULTS INCLUDING INDEXES")
}
