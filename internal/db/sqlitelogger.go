package db

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// loggingConnector opens sqlite3 connections whose queries are logged at
// debug level together with their arguments, duration and error.
type loggingConnector struct {
	driver *sqlite3.SQLiteDriver
	dsn    string
	logger *slog.Logger
}

// loggingConn is a sqlite3 connection with ExecContext and QueryContext
// wrapped. database/sql calls those directly for every non-prepared
// statement, which covers every query the repository issues.
type loggingConn struct {
	*sqlite3.SQLiteConn
	logger *slog.Logger
}

// NewLoggingConnector returns a driver.Connector for sql.OpenDB. A nil logger
// falls back to slog.Default().
func NewLoggingConnector(dsn string, logger *slog.Logger) driver.Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingConnector{driver: &sqlite3.SQLiteDriver{}, dsn: dsn, logger: logger}
}

func (c *loggingConnector) Driver() driver.Driver {
	return c.driver
}

func (c *loggingConnector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	sc, ok := conn.(*sqlite3.SQLiteConn)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("sqlite3 driver returned %T", conn)
	}
	return &loggingConn{SQLiteConn: sc, logger: c.logger}, nil
}

func (c *loggingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	res, err := c.SQLiteConn.ExecContext(ctx, query, args)
	c.log(ctx, "exec", query, args, start, err)
	return res, err
}

func (c *loggingConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	rows, err := c.SQLiteConn.QueryContext(ctx, query, args)
	c.log(ctx, "query", query, args, start, err)
	return rows, err
}

func (c *loggingConn) log(ctx context.Context, op string, query string, args []driver.NamedValue, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("sql", query),
		slog.Any("args", formatArgs(args)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "sql", attrs...)
}

func formatArgs(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = formatArg(a.Value)
		if a.Name != "" {
			out[i] = a.Name + "=" + out[i]
		}
	}
	return out
}

func formatArg(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
