// Package sqlite opens a SQLite database for the GORM store.
//
// The connection pool is created with database/sql through the mattn
// driver and then handed to GORM, so pool settings stay under our
// control while GORM does the mapping.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aanand-mishra/crud-api/internal/config"
	"github.com/aanand-mishra/crud-api/internal/storage/gormstore"
)

// MemoryDSN is an in-process database that lives as long as the pool.
const MemoryDSN = ":memory:"

// New opens the SQLite database at cfg.Storage.DSN and migrates the
// schema.
func New(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	return Open(ctx, cfg.Storage.DSN)
}

// Open opens the SQLite database at dsn and migrates the schema.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn != MemoryDSN && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.Open: create dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	// Every connection to ":memory:" gets its own empty database, so the
	// pool must never grow past one.
	if dsn == MemoryDSN {
		sqlDB.SetMaxOpenConns(1)
	}

	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{
		DriverName: "sqlite3",
		Conn:       sqlDB,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite.Open: gorm: %w", err)
	}

	if err := gormstore.Migrate(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}

	return db, nil
}
