// Package postgres opens a PostgreSQL database for the GORM store.
package postgres

import (
	"context"
	"fmt"
	"time"

	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aanand-mishra/crud-api/internal/config"
	"github.com/aanand-mishra/crud-api/internal/storage/gormstore"
)

// New connects using cfg.Storage.DSN, verifies the connection and
// migrates the schema.
func New(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.Open(cfg.Storage.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres.New: pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	if err := gormstore.Migrate(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	return db, nil
}
