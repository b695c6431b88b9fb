package database

import (
	"context"
	"path/filepath"
	"testing"

	"murmur/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:          "test",
		DBDriver:     DriverSQLite,
		DBPath:       filepath.Join(t.TempDir(), "nested", "tweets.db"),
		DBSchemaMode: SchemaModeSQL,
	}
}

func openTestDB(t *testing.T) (*gorm.DB, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db, cfg
}

func TestConnect_SQLiteCreatesDirectoryAndPings(t *testing.T) {
	db, _ := openTestDB(t)

	assert.Equal(t, DriverSQLite, db.Dialector.Name())
	assert.NoError(t, Ping(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestLoadMigrations(t *testing.T) {
	for _, dialect := range []string{DriverSQLite, DriverPostgres} {
		migrations, err := LoadMigrations(dialect)
		require.NoError(t, err, dialect)
		require.NotEmpty(t, migrations, dialect)
		assert.Equal(t, 1, migrations[0].Version)
		assert.Equal(t, "init", migrations[0].Name)
		assert.Contains(t, migrations[0].UpScript, "CREATE TABLE IF NOT EXISTS tweets")
		assert.Contains(t, migrations[0].DownScript, "DROP TABLE IF EXISTS tweets")
		assert.Equal(t, "000001_init", migrations[0].String())
	}

	_, err := LoadMigrations("oracle")
	assert.Error(t, err)
}

func TestApplySchema_SQLIsIdempotentAndRollsBack(t *testing.T) {
	db, cfg := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, ApplySchema(ctx, db, cfg))
	require.NoError(t, ApplySchema(ctx, db, cfg))

	for _, table := range []string{"users", "tweets", "likes", "subscriptions", "migration_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	status, err := GetSchemaStatus(ctx, db, cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, status.AppliedVersions)
	assert.Empty(t, status.PendingMigrations)

	require.NoError(t, RollbackMigration(ctx, db, 1))
	assert.False(t, db.Migrator().HasTable("tweets"))

	status, err = GetSchemaStatus(ctx, db, cfg)
	require.NoError(t, err)
	assert.Empty(t, status.AppliedVersions)
	assert.Len(t, status.PendingMigrations, 1)

	assert.Error(t, RollbackMigration(ctx, db, 1), "already rolled back")
	assert.Error(t, RollbackMigration(ctx, db, 99), "unknown version")
}

func TestRunMigrations_RejectsUnknownAppliedVersion(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, db.Create(&MigrationLog{Version: 42, Name: "from_the_future"}).Error)

	err := RunMigrations(ctx, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestApplySchema_Modes(t *testing.T) {
	db, cfg := openTestDB(t)
	ctx := context.Background()

	cfg.DBSchemaMode = SchemaModeAuto
	require.NoError(t, ApplySchema(ctx, db, cfg))
	assert.True(t, db.Migrator().HasTable("subscriptions"))

	cfg.DBSchemaMode = "hybrid"
	assert.Error(t, ApplySchema(ctx, db, cfg))

	cfg.DBSchemaMode = SchemaModeAuto
	cfg.Env = "production"
	assert.Error(t, ApplySchema(ctx, db, cfg))
}
