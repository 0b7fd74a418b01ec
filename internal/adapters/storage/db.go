package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
)

// migrations are applied in order; PRAGMA user_version records how many ran.
// Append only: never edit a migration that has shipped.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS app_user (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS book (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		price_cents INTEGER NOT NULL DEFAULT 0
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS message (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		user_low TEXT NOT NULL,
		user_high TEXT NOT NULL,
		book_id TEXT,
		body TEXT NOT NULL,
		sent_at TEXT NOT NULL,
		read_at TEXT,
		hidden_for_sender INTEGER NOT NULL DEFAULT 0,
		hidden_for_receiver INTEGER NOT NULL DEFAULT 0,
		CHECK (sender_id <> receiver_id),
		CHECK (user_low < user_high)
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_message_pair_time
	ON message (user_low, user_high, sent_at, id);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_message_receiver_unread
	ON message (receiver_id, read_at, sender_id);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_message_sender
	ON message (sender_id, sent_at);
	`,
	`
	CREATE TABLE IF NOT EXISTS user_block (
		blocker_id TEXT NOT NULL,
		blocked_id TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL,
		PRIMARY KEY (blocker_id, blocked_id),
		CHECK (blocker_id <> blocked_id)
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_user_block_blocker_time
	ON user_block (blocker_id, created_at DESC);
	`,
}

// LatestSchemaVersion returns the schema version after all migrations.
func LatestSchemaVersion() int {
	return len(migrations)
}

// SQLiteDSN builds the connection string used for every SQLite connection.
// Write transactions take the lock up front (_txlock=immediate) so a
// read-then-write transaction waits on busy_timeout instead of failing
// with a stale snapshot. SQLite has one writer per database, so writes on
// different conversations queue behind each other; use Postgres when that
// matters.
func SQLiteDSN(path string, busyTimeoutMs int) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		filepath.ToSlash(path), busyTimeoutMs)
}

// OpenSQLite opens the database at path and applies migrations.
// PRE: path is a writable file location
// POST: Returns a pinged, migrated database in WAL mode
func OpenSQLite(path string, busyTimeoutMs, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(path, busyTimeoutMs))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if err := MigrateDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// MigrateDB brings the schema up to LatestSchemaVersion.
// PRE: db is a valid database connection
// POST: All pending migrations applied in one transaction, WAL mode enabled
func MigrateDB(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	// In-memory databases report "memory" and cannot use WAL.
	if !strings.EqualFold(journalMode, "wal") && !strings.EqualFold(journalMode, "memory") {
		return fmt.Errorf("enable WAL mode: unexpected journal mode %q", journalMode)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= len(migrations) {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i := version; i < len(migrations); i++ {
		if _, err := tx.Exec(migrations[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("set schema version %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration transaction: %w", err)
	}
	return nil
}

// SchemaVersion reports how many migrations have been applied.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
