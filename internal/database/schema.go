package database

import (
	"context"
	"fmt"
	"log/slog"

	"murmur/internal/config"
	"murmur/internal/middleware"
	"murmur/internal/models"

	"gorm.io/gorm"
)

const (
	SchemaModeSQL  = "sql"
	SchemaModeAuto = "auto"
)

// SchemaStatus describes what ApplySchema would do against the current database.
type SchemaStatus struct {
	Mode              string
	Dialect           string
	AppliedVersions   []int
	PendingMigrations []Migration
}

// PersistentModels returns the schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tweet{},
		&models.Like{},
		&models.Subscription{},
	}
}

func schemaMode(cfg *config.Config) (string, error) {
	switch cfg.DBSchemaMode {
	case "", SchemaModeSQL:
		return SchemaModeSQL, nil
	case SchemaModeAuto:
		if cfg.IsProduction() {
			return "", fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		return SchemaModeAuto, nil
	default:
		return "", fmt.Errorf("unsupported DB_SCHEMA_MODE %q", cfg.DBSchemaMode)
	}
}

// ApplySchema brings the database schema up to date. The default mode runs the
// versioned SQL migrations; auto mode uses GORM AutoMigrate for local experiments.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	mode, err := schemaMode(cfg)
	if err != nil {
		return err
	}

	if mode == SchemaModeAuto {
		middleware.Logger.Warn("Running GORM AutoMigrate", slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		return nil
	}

	if err := RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("run sql migrations: %w", err)
	}
	return nil
}

// GetSchemaStatus reports applied and pending migrations.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	mode, err := schemaMode(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{Mode: mode, Dialect: db.Dialector.Name()}

	migrations, err := LoadMigrations(status.Dialect)
	if err != nil {
		return nil, err
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	appliedSet := make(map[int]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}
	for _, m := range migrations {
		if !appliedSet[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}

	return status, nil
}
