// Package testutil provides shared fixtures for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"murmur/internal/config"
	"murmur/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in a per-test temporary directory.
// A file is used rather than :memory: so every pooled connection sees the same data.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Env:          "test",
		DBDriver:     database.DriverSQLite,
		DBPath:       filepath.Join(t.TempDir(), "tweets.db"),
		DBSchemaMode: database.SchemaModeSQL,
	}

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.ApplySchema(context.Background(), db, cfg))
	return db
}
