package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"bookswap/internal/domain/failure"
)

// Postgres SQLSTATE codes worth a client retry.
var pgTransientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"53300": true, // too_many_connections
	"57P01": true, // admin_shutdown
	"57P03": true, // cannot_connect_now
	"57014": true, // query_canceled (statement_timeout)
}

// Classify maps a driver error onto the failure taxonomy.
// Errors already carrying a failure kind pass through unchanged.
// PRE: op names the store operation, e.g. "message.append"
// POST: infrastructure faults become failure.Transient; others are wrapped with op
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *failure.Error
	if errors.As(err, &fe) {
		return err
	}
	if IsTransient(err) {
		return failure.Transient(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsTransient reports whether err is an infrastructure fault the caller
// may retry: deadlines, dropped connections, lock contention.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR:
			return true
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgTransientCodes[pgErr.Code]
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return pgconn.Timeout(err)
}
