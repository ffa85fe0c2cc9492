// Command migrate creates the climate dataset schema in a SQLite file and can
// load the sample observations used in development and end-to-end tests.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"surfsup-server/internal/migrate"

	_ "github.com/mattn/go-sqlite3"
)

const usage = `usage: %s <command>
  migrate  apply pending schema migrations
  seed     apply migrations and load the sample dataset
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "Resources/hawaii.sqlite"
	}
	dbPath = filepath.Clean(dbPath)

	if err := run(context.Background(), os.Args[1], dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, dbPath string) error {
	var apply func(context.Context, *sql.DB) error
	switch command {
	case "migrate":
		apply = migrate.Run
	case "seed":
		apply = migrate.Seed
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	conn, err := open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	if err := apply(ctx, conn); err != nil {
		return err
	}
	fmt.Printf("%s applied to %s\n", command, dbPath)
	return nil
}

func open(ctx context.Context, dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", buildDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

// buildDSN opens the file read-write, creating it if needed. The rollback
// journal is kept because the server opens the same file with mode=ro, which
// cannot create the shared-memory file WAL needs.
func buildDSN(dbPath string) string {
	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
	}

	if strings.HasPrefix(dbPath, "file:") {
		sep := "?"
		if strings.Contains(dbPath, "?") {
			sep = "&"
		}
		return dbPath + sep + strings.Join(params, "&")
	}

	return fmt.Sprintf("file:%s?%s", dbPath, strings.Join(params, "&"))
}
