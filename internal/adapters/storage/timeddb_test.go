package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"bookswap/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "timed.db"), 5000, 4)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const insertBlock = `INSERT INTO user_block (blocker_id, blocked_id, created_at) VALUES (?, ?, ?)`

// TestTimedDB_RecordsEachStatement verifies every call lands in the collector with its label.
func TestTimedDB_RecordsEachStatement(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, insertBlock, "1", "2", "t"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, `SELECT blocker_id FROM user_block`)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var n int
	if err := tdb.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_block`).Scan(&n); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	if collector.TotalRecorded() != 3 {
		t.Fatalf("TotalRecorded = %d, want 3", collector.TotalRecorded())
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	labels := map[string]int{}
	for _, p := range snap.Queries.Slowest {
		labels[p.Path] = p.Count
	}
	if labels["INSERT user_block"] != 1 || labels["SELECT user_block"] != 2 {
		t.Errorf("labels = %v", labels)
	}
}

// TestTimedDB_BeginTx verifies transactions work through the wrapper.
func TestTimedDB_BeginTx(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)

	tx, err := tdb.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := tx.Exec(insertBlock, "1", "2", "t"); err != nil {
		t.Fatalf("tx exec: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

// TestTimedDB_NilCollector verifies TimedDB works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), nil, time.Millisecond)
	if _, err := tdb.ExecContext(context.Background(), insertBlock, "1", "2", "t"); err != nil {
		t.Fatalf("ExecContext with nil collector: %v", err)
	}
}

// TestTimedDB_ErrorPassthrough verifies SQL errors are returned unchanged and marked failed.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, `INSERT INTO no_such_table (x) VALUES (1)`); err == nil {
		t.Error("expected ExecContext error")
	}
	if _, err := tdb.QueryContext(ctx, `SELECT x FROM no_such_table`); err == nil {
		t.Error("expected QueryContext error")
	}
	var x int
	if err := tdb.QueryRowContext(ctx, `SELECT x FROM no_such_table`).Scan(&x); err == nil {
		t.Error("expected QueryRowContext scan error")
	}

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if snap.Queries.Failed != 2 {
		t.Errorf("Failed = %d, want 2 (QueryRow errors surface on Scan)", snap.Queries.Failed)
	}
}

// TestTimedDB_CancelledContext verifies a cancelled context classifies as transient.
func TestTimedDB_CancelledContext(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tdb.ExecContext(ctx, insertBlock, "1", "2", "t")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !IsTransient(err) {
		t.Errorf("IsTransient(%v) = false, want true", err)
	}
}

// TestTimedDB_ConcurrentMixedOps verifies the wrapper is safe under concurrent use.
func TestTimedDB_ConcurrentMixedOps(t *testing.T) {
	collector := perf.NewCollector(1000)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				blocked := string(rune('a'+g)) + string(rune('a'+i))
				if _, err := tdb.ExecContext(ctx, insertBlock, "u", blocked, "t"); err != nil {
					t.Errorf("ExecContext: %v", err)
					return
				}
				var n int
				if err := tdb.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_block`).Scan(&n); err != nil {
					t.Errorf("QueryRowContext: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if collector.TotalRecorded() != 80 {
		t.Errorf("TotalRecorded = %d, want 80", collector.TotalRecorded())
	}
}

// TestQueryLabel verifies statements reduce to VERB table.
func TestQueryLabel(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT id FROM message WHERE id = ?", "SELECT message"},
		{"select count(*) from user_block", "SELECT user_block"},
		{"INSERT INTO message (a) VALUES (?)", "INSERT message"},
		{"UPDATE message SET read_at = ?", "UPDATE message"},
		{"DELETE FROM user_block WHERE blocker_id = ?", "DELETE user_block"},
		{"SELECT a FROM (SELECT a FROM message) WHERE rn = 1", "SELECT message"},
		{"SELECT EXISTS (SELECT 1 FROM message WHERE x)", "SELECT message"},
		{"BEGIN", "BEGIN"},
		{"   ", "?"},
	}
	for _, tt := range tests {
		if got := queryLabel(tt.query); got != tt.want {
			t.Errorf("queryLabel(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
