package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/subhanali/invoice-summarizer/pkg/database"
	"go.uber.org/zap"
)

// newTestDB opens an in-memory database with the full migrated schema.
// A single connection keeps the memory database alive for the test.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations())
	return db
}
