package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"surfsup-server/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

// Open returns a pooled, read-only handle on the climate dataset and verifies
// the file is reachable. The handle is shared by every request.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	dsn := BuildDSN(cfg)

	var db *sql.DB
	if cfg.SQLiteLogStatements {
		db = sql.OpenDB(NewLoggingConnector(dsn, logger))
	} else {
		var err error
		db, err = sql.Open(driverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.SQLiteMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.SQLiteMaxOpenConns)
	}
	if cfg.SQLiteMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.SQLiteMaxIdleConns)
	}
	if cfg.SQLiteConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.SQLiteConnMaxLifetime)
	}

	if err := Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Ping runs a trivial query so a missing or unreadable file is reported
// instead of only checking that a connection can be opened.
func Ping(ctx context.Context, db *sql.DB) error {
	var ok int
	if err := db.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if ok != 1 {
		return fmt.Errorf("db ping: unexpected result %d", ok)
	}
	return nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// BuildDSN opens the dataset read-only: the server never writes, and mode=ro
// makes the store reject writes instead of relying on discipline.
func BuildDSN(cfg config.Config) string {
	if cfg.SQLiteDSN != "" {
		return cfg.SQLiteDSN
	}

	params := []string{
		"mode=ro",
		"_query_only=true",
		"_busy_timeout=5000",
	}

	path := cfg.SQLitePath
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&")
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&"))
}
