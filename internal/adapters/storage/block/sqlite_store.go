package block

import (
	"context"
	"database/sql"
	"time"

	"bookswap/internal/adapters/storage"
	domain "bookswap/internal/domain/block"
	"bookswap/internal/domain/failure"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Block inserts the relationship unless one already exists for the ordered pair.
// PRE: rel has been validated
// POST: Exactly one row exists for (BlockerID, BlockedID)
// INVARIANT: an existing row is never modified
func (s *SQLiteStore) Block(ctx context.Context, rel domain.Relationship) (domain.Relationship, bool, error) {
	if err := rel.Validate(); err != nil {
		return domain.Relationship{}, false, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_block (blocker_id, blocked_id, reason, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(blocker_id, blocked_id) DO NOTHING`,
		rel.BlockerID, rel.BlockedID, nullStr(rel.Reason), rel.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return domain.Relationship{}, false, storage.Classify("block.create", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Relationship{}, false, storage.Classify("block.create", err)
	}

	stored, err := s.get(ctx, rel.BlockerID, rel.BlockedID)
	if err != nil {
		return domain.Relationship{}, false, err
	}
	return stored, n == 1, nil
}

// Unblock deletes the relationship row.
// PRE: blockerID and blockedID are non-empty
// POST: Row removed, or failure.NotFound("block") if there was none
func (s *SQLiteStore) Unblock(ctx context.Context, blockerID, blockedID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_block WHERE blocker_id = ? AND blocked_id = ?`,
		blockerID, blockedID)
	if err != nil {
		return storage.Classify("block.delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storage.Classify("block.delete", err)
	}
	if n == 0 {
		return failure.NotFound("block")
	}
	return nil
}

// Status reports whether userA blocks userB and whether userB blocks userA.
func (s *SQLiteStore) Status(ctx context.Context, userA, userB string) (domain.Status, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT blocker_id FROM user_block
		 WHERE (blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)`,
		userA, userB, userB, userA)
	if err != nil {
		return domain.Status{}, storage.Classify("block.status", err)
	}
	defer rows.Close()

	var st domain.Status
	for rows.Next() {
		var blocker string
		if err := rows.Scan(&blocker); err != nil {
			return domain.Status{}, storage.Classify("block.status", err)
		}
		if blocker == userA {
			st.ABlocksB = true
		} else {
			st.BBlocksA = true
		}
	}
	return st, storage.Classify("block.status", rows.Err())
}

// ListBlockedBy lists the users blockerID has blocked, newest first.
func (s *SQLiteStore) ListBlockedBy(ctx context.Context, blockerID string) ([]domain.Relationship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT blocker_id, blocked_id, reason, created_at FROM user_block
		 WHERE blocker_id = ?
		 ORDER BY created_at DESC, blocked_id ASC`,
		blockerID)
	if err != nil {
		return nil, storage.Classify("block.list", err)
	}
	defer rows.Close()

	var list []domain.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, storage.Classify("block.list", err)
		}
		list = append(list, rel)
	}
	return list, storage.Classify("block.list", rows.Err())
}

func (s *SQLiteStore) get(ctx context.Context, blockerID, blockedID string) (domain.Relationship, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT blocker_id, blocked_id, reason, created_at FROM user_block
		 WHERE blocker_id = ? AND blocked_id = ?`,
		blockerID, blockedID)
	rel, err := scanRelationship(row)
	if err == sql.ErrNoRows {
		// Unblocked concurrently between insert and read.
		return domain.Relationship{}, failure.Transient("block.create", err)
	}
	if err != nil {
		return domain.Relationship{}, storage.Classify("block.get", err)
	}
	return rel, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelationship(row rowScanner) (domain.Relationship, error) {
	var rel domain.Relationship
	var reason sql.NullString
	var createdAt string
	if err := row.Scan(&rel.BlockerID, &rel.BlockedID, &reason, &createdAt); err != nil {
		return domain.Relationship{}, err
	}
	rel.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if reason.Valid {
		rel.Reason = reason.String
	}
	return rel, nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
