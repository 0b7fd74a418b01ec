package block

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bookswap/internal/adapters/storage"
	domain "bookswap/internal/domain/block"
	"bookswap/internal/domain/failure"
)

// PgStore implements Store using Postgres.
type PgStore struct {
	db storage.PgxDB
}

// NewPgStore creates a new PgStore.
func NewPgStore(db storage.PgxDB) *PgStore {
	return &PgStore{db: db}
}

// Block inserts the relationship unless one already exists for the ordered pair.
// INVARIANT: an existing row is never modified
func (s *PgStore) Block(ctx context.Context, rel domain.Relationship) (domain.Relationship, bool, error) {
	if err := rel.Validate(); err != nil {
		return domain.Relationship{}, false, err
	}
	tag, err := s.db.Exec(ctx,
		`INSERT INTO user_block (blocker_id, blocked_id, reason, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (blocker_id, blocked_id) DO NOTHING`,
		rel.BlockerID, rel.BlockedID, pgNullStr(rel.Reason), rel.CreatedAt.UTC())
	if err != nil {
		return domain.Relationship{}, false, storage.Classify("block.create", err)
	}

	row := s.db.QueryRow(ctx,
		`SELECT blocker_id, blocked_id, reason, created_at FROM user_block
		 WHERE blocker_id = $1 AND blocked_id = $2`,
		rel.BlockerID, rel.BlockedID)
	stored, err := scanPgRelationship(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Relationship{}, false, failure.Transient("block.create", err)
	}
	if err != nil {
		return domain.Relationship{}, false, storage.Classify("block.get", err)
	}
	return stored, tag.RowsAffected() == 1, nil
}

// Unblock deletes the relationship row.
func (s *PgStore) Unblock(ctx context.Context, blockerID, blockedID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM user_block WHERE blocker_id = $1 AND blocked_id = $2`,
		blockerID, blockedID)
	if err != nil {
		return storage.Classify("block.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return failure.NotFound("block")
	}
	return nil
}

// Status reports whether userA blocks userB and whether userB blocks userA.
func (s *PgStore) Status(ctx context.Context, userA, userB string) (domain.Status, error) {
	var st domain.Status
	err := s.db.QueryRow(ctx,
		`SELECT
			EXISTS (SELECT 1 FROM user_block WHERE blocker_id = $1 AND blocked_id = $2),
			EXISTS (SELECT 1 FROM user_block WHERE blocker_id = $2 AND blocked_id = $1)`,
		userA, userB).Scan(&st.ABlocksB, &st.BBlocksA)
	if err != nil {
		return domain.Status{}, storage.Classify("block.status", err)
	}
	return st, nil
}

// ListBlockedBy lists the users blockerID has blocked, newest first.
func (s *PgStore) ListBlockedBy(ctx context.Context, blockerID string) ([]domain.Relationship, error) {
	rows, err := s.db.Query(ctx,
		`SELECT blocker_id, blocked_id, reason, created_at FROM user_block
		 WHERE blocker_id = $1
		 ORDER BY created_at DESC, blocked_id ASC`,
		blockerID)
	if err != nil {
		return nil, storage.Classify("block.list", err)
	}
	defer rows.Close()

	var list []domain.Relationship
	for rows.Next() {
		rel, err := scanPgRelationship(rows)
		if err != nil {
			return nil, storage.Classify("block.list", err)
		}
		list = append(list, rel)
	}
	return list, storage.Classify("block.list", rows.Err())
}

func scanPgRelationship(row pgx.Row) (domain.Relationship, error) {
	var rel domain.Relationship
	var reason *string
	if err := row.Scan(&rel.BlockerID, &rel.BlockedID, &reason, &rel.CreatedAt); err != nil {
		return domain.Relationship{}, err
	}
	rel.CreatedAt = rel.CreatedAt.UTC()
	if reason != nil {
		rel.Reason = *reason
	}
	return rel, nil
}

func pgNullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
