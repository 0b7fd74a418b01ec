package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"bookswap/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all SQLite stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to log slow statements and record them to a collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection; collector may be nil
// POST: Returns a TimedDB that logs statements slower than slowQuery
func NewTimedDB(db *sql.DB, collector *perf.Collector, slowQuery time.Duration) *TimedDB {
	if slowQuery <= 0 {
		slowQuery = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: slowQuery}
}

// RawDB returns the underlying *sql.DB (needed for migrations and health checks).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// observe logs and records a statement timing.
func (t *TimedDB) observe(query string, start time.Time, err error) {
	elapsed := time.Since(start)
	label := queryLabel(query)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	if elapsed >= t.threshold {
		slog.Warn("slow_query", "statement", label, "duration_ms", durationMs)
	} else {
		slog.Debug("query", "statement", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Failed:     err != nil,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(query, start, err)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(query, start, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
// Row errors surface on Scan, so the entry is never marked failed here.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(query, start, nil)
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing.
// Statements run on the returned *sql.Tx are not instrumented.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("BEGIN", start, err)
	return tx, err
}

// PingContext verifies the database connection.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// queryLabel reduces a statement to "VERB table" for aggregation,
// e.g. "SELECT message" or "INSERT user_block".
func queryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "?"
	}
	verb := strings.ToUpper(fields[0])
	var marker string
	switch verb {
	case "SELECT":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		return verb + " " + tableAt(fields, 1)
	case "DELETE":
		marker = "FROM"
	default:
		return verb
	}
	// Scan from the end so "FROM (SELECT ... FROM message)" labels as message.
	for i := len(fields) - 2; i >= 0; i-- {
		if strings.EqualFold(fields[i], marker) {
			if next := tableAt(fields, i+1); next != "(" && next != "" {
				return verb + " " + next
			}
		}
	}
	return verb
}

func tableAt(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.Trim(fields[i], "();,")
}
