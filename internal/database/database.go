// Package database centralises sqlx connection helpers.  Two drivers are
// registered: go-sql-driver/mysql for production (also works with MariaDB
// when configured for the MySQL wire protocol) and modernc.org/sqlite, a
// pure-Go SQLite, for local work and single-node installs.
//
// Public entry points:
//
//	Open(driver, dsn)                              – conservative pool sizes.
//	OpenWithOptions(driver, dsn, maxOpen, maxIdle) – fine-grained control.
//	Migrate(ctx, db, stmts)                        – run idempotent DDL.
//
// Both open helpers Ping the database before returning so callers can fail
// fast during bootstrap.  Callers should Close() the returned *sqlx.DB when
// no longer needed.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	MySQL  = "mysql"
	SQLite = "sqlite"
)

// Open returns a *sqlx.DB with sane defaults: 15 max open, 5 idle, and a
// 30-minute connection lifetime.
func Open(driver, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(driver, dsn, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle.  SQLite is always
// capped at one open connection because it serialises writers.
func OpenWithOptions(driver, dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	switch driver {
	case MySQL:
	case SQLite:
		maxOpen, maxIdle = 1, 1
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping %s: %w", driver, err)
	}
	zap.S().Infow("database online", "driver", driver, "max_open", maxOpen)
	return db, nil
}

// Migrate executes stmts in order.  Statements must be idempotent
// (CREATE … IF NOT EXISTS) because Migrate runs on every boot.
func Migrate(ctx context.Context, db *sqlx.DB, stmts []string) error {
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("database: migration %d: %w", i+1, err)
		}
	}
	zap.S().Infow("migrations applied", "count", len(stmts))
	return nil
}
