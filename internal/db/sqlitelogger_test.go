package db

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// openLogged returns a single-connection in-memory database whose statements
// are logged as JSON lines into the returned buffer.
func openLogged(t *testing.T) (*sql.DB, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	db := sql.OpenDB(NewLoggingConnector(":memory:", logger))
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db, &buf
}

type sqlLogLine struct {
	Msg        string   `json:"msg"`
	Op         string   `json:"op"`
	SQL        string   `json:"sql"`
	Args       []string `json:"args"`
	DurationMS *int64   `json:"duration_ms"`
	Error      string   `json:"error"`
}

func logLines(t *testing.T, buf *bytes.Buffer) []sqlLogLine {
	t.Helper()
	var out []sqlLogLine
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var l sqlLogLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		out = append(out, l)
	}
	return out
}

func TestLoggingConnector_logsExecAndQueryWithArgs(t *testing.T) {
	db, buf := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE measurement (station TEXT, date TEXT, prcp FLOAT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO measurement VALUES (?, ?, ?)`, "USC00519281", "2017-08-01", nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	buf.Reset()

	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM measurement WHERE station = ? AND date >= ?`, "USC00519281", "2016-08-23").Scan(&n)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}

	lines := logLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %s", len(lines), buf.String())
	}
	got := lines[0]
	if got.Msg != "sql" || got.Op != "query" {
		t.Errorf("msg/op = %q/%q", got.Msg, got.Op)
	}
	if len(got.Args) != 2 || got.Args[0] != "USC00519281" || got.Args[1] != "2016-08-23" {
		t.Errorf("args = %v", got.Args)
	}
	if got.DurationMS == nil {
		t.Error("missing duration_ms")
	}
	if got.Error != "" {
		t.Errorf("unexpected error attribute %q", got.Error)
	}
}

func TestLoggingConnector_nullArgument(t *testing.T) {
	db, buf := openLogged(t)

	if _, err := db.Exec(`SELECT ?`, nil); err != nil {
		t.Fatalf("exec: %v", err)
	}
	lines := logLines(t, buf)
	if len(lines) != 1 || lines[0].Op != "exec" || len(lines[0].Args) != 1 || lines[0].Args[0] != "NULL" {
		t.Errorf("lines = %+v", lines)
	}
}

func TestLoggingConnector_failedQueryLogsError(t *testing.T) {
	db, buf := openLogged(t)

	if _, err := db.Query(`SELECT * FROM missing_table`); err == nil {
		t.Fatal("expected error querying a missing table")
	}
	lines := logLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0].Error, "missing_table") {
		t.Errorf("error = %q", lines[0].Error)
	}
}

func TestLoggingConnector_execRunsEveryStatement(t *testing.T) {
	db, _ := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER); INSERT INTO t VALUES (1); INSERT INTO t VALUES (2);`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestLoggingConnector_ping(t *testing.T) {
	db := sql.OpenDB(NewLoggingConnector(":memory:", nil))
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestFormatArg(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: "NULL"},
		{in: []byte("abc"), want: "abc"},
		{in: int64(7), want: "7"},
		{in: 0.08, want: "0.08"},
		{in: "2017-08-23", want: "2017-08-23"},
	}
	for _, tt := range tests {
		if got := formatArg(tt.in); got != tt.want {
			t.Errorf("formatArg(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
