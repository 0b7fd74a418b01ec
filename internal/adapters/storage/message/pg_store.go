package message

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"bookswap/internal/adapters/storage"
	"bookswap/internal/domain/failure"
	domain "bookswap/internal/domain/message"
)

const pgVisibleToViewer = `((sender_id = $1 AND NOT hidden_for_sender) OR (receiver_id = $1 AND NOT hidden_for_receiver))`

// PgStore implements Store using Postgres. Concurrent writers on different
// pairs never contend; updates lock only the rows they touch.
type PgStore struct {
	db storage.PgxDB
}

// NewPgStore creates a new PgStore.
func NewPgStore(db storage.PgxDB) *PgStore {
	return &PgStore{db: db}
}

// Append inserts a message and returns the assigned ID.
func (s *PgStore) Append(ctx context.Context, m domain.Message) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	low, high := domain.PairKey(m.SenderID, m.ReceiverID)
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO message (sender_id, receiver_id, user_low, user_high, book_id, body, sent_at, read_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		m.SenderID, m.ReceiverID, low, high, pgNullStr(m.BookID), m.Body,
		m.SentAt.UTC(), pgNullTime(m.ReadAt)).Scan(&id)
	if err != nil {
		return 0, storage.Classify("message.append", err)
	}
	return id, nil
}

// GetByID retrieves a Message by its ID.
func (s *PgStore) GetByID(ctx context.Context, id int64) (domain.Message, error) {
	row := s.db.QueryRow(ctx, `SELECT `+messageColumns+` FROM message WHERE id = $1`, id)
	m, err := scanPgMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, failure.NotFound("message")
	}
	if err != nil {
		return domain.Message{}, storage.Classify("message.get", err)
	}
	return m, nil
}

// ListBetween lists the pair's messages visible to viewerID.
func (s *PgStore) ListBetween(ctx context.Context, viewerID, counterpartID string, filter ListFilter) ([]domain.Message, error) {
	low, high := domain.PairKey(viewerID, counterpartID)
	rows, err := s.db.Query(ctx,
		`SELECT `+messageColumns+` FROM message
		 WHERE user_low = $2 AND user_high = $3 AND `+pgVisibleToViewer+`
		 ORDER BY sent_at ASC, id ASC
		 LIMIT $4 OFFSET $5`,
		viewerID, low, high, filter.Limit, filter.Offset)
	if err != nil {
		return nil, storage.Classify("message.list_between", err)
	}
	msgs, err := collectPgMessages(rows)
	return msgs, storage.Classify("message.list_between", err)
}

// CountBetween counts the pair's messages visible to viewerID.
func (s *PgStore) CountBetween(ctx context.Context, viewerID, counterpartID string) (int, error) {
	low, high := domain.PairKey(viewerID, counterpartID)
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM message WHERE user_low = $2 AND user_high = $3 AND `+pgVisibleToViewer,
		viewerID, low, high).Scan(&count)
	return count, storage.Classify("message.count_between", err)
}

// MarkRead marks the counterpart's unread messages to viewerID as read.
// INVARIANT: read_at is never overwritten once set
func (s *PgStore) MarkRead(ctx context.Context, viewerID, counterpartID string, at time.Time) (int, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE message SET read_at = $1
		 WHERE receiver_id = $2 AND sender_id = $3 AND read_at IS NULL`,
		at.UTC(), viewerID, counterpartID)
	if err != nil {
		return 0, storage.Classify("message.mark_read", err)
	}
	return int(tag.RowsAffected()), nil
}

// CountUnread counts unread messages received by viewerID that are not hidden for them.
func (s *PgStore) CountUnread(ctx context.Context, viewerID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM message
		 WHERE receiver_id = $1 AND read_at IS NULL AND NOT hidden_for_receiver`,
		viewerID).Scan(&count)
	return count, storage.Classify("message.count_unread", err)
}

// CountUnreadFrom counts unread messages from counterpartID to viewerID.
func (s *PgStore) CountUnreadFrom(ctx context.Context, viewerID, counterpartID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM message
		 WHERE receiver_id = $1 AND sender_id = $2 AND read_at IS NULL AND NOT hidden_for_receiver`,
		viewerID, counterpartID).Scan(&count)
	return count, storage.Classify("message.count_unread", err)
}

// CountUnreadByCounterpart groups the unread count by sender.
func (s *PgStore) CountUnreadByCounterpart(ctx context.Context, viewerID string) (map[string]int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT sender_id, COUNT(*) FROM message
		 WHERE receiver_id = $1 AND read_at IS NULL AND NOT hidden_for_receiver
		 GROUP BY sender_id`,
		viewerID)
	if err != nil {
		return nil, storage.Classify("message.count_unread", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var senderID string
		var n int
		if err := rows.Scan(&senderID, &n); err != nil {
			return nil, storage.Classify("message.count_unread", err)
		}
		counts[senderID] = n
	}
	return counts, storage.Classify("message.count_unread", rows.Err())
}

// HideConversation hides the pair conversation for viewerID in one transaction.
func (s *PgStore) HideConversation(ctx context.Context, viewerID, counterpartID string) (int, error) {
	const op = "message.hide_conversation"
	low, high := domain.PairKey(viewerID, counterpartID)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, storage.Classify(op, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM message WHERE user_low = $1 AND user_high = $2)`,
		low, high).Scan(&exists)
	if err != nil {
		return 0, storage.Classify(op, err)
	}
	if !exists {
		return 0, failure.NotFound("conversation")
	}

	asSender, err := tx.Exec(ctx,
		`UPDATE message SET hidden_for_sender = TRUE
		 WHERE sender_id = $1 AND receiver_id = $2 AND NOT hidden_for_sender`,
		viewerID, counterpartID)
	if err != nil {
		return 0, storage.Classify(op, err)
	}
	asReceiver, err := tx.Exec(ctx,
		`UPDATE message SET hidden_for_receiver = TRUE
		 WHERE receiver_id = $1 AND sender_id = $2 AND NOT hidden_for_receiver`,
		viewerID, counterpartID)
	if err != nil {
		return 0, storage.Classify(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, storage.Classify(op, err)
	}
	return int(asSender.RowsAffected() + asReceiver.RowsAffected()), nil
}

// ListLatestPerCounterpart returns the latest visible message per counterpart.
func (s *PgStore) ListLatestPerCounterpart(ctx context.Context, viewerID string) ([]domain.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT ON (CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END)
			`+messageColumns+`
		 FROM message
		 WHERE `+pgVisibleToViewer+`
		 ORDER BY CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END, sent_at DESC, id DESC`,
		viewerID)
	if err != nil {
		return nil, storage.Classify("message.list_latest", err)
	}
	msgs, err := collectPgMessages(rows)
	if err != nil {
		return nil, storage.Classify("message.list_latest", err)
	}
	domain.SortNewestFirst(msgs)
	return msgs, nil
}

func scanPgMessage(row pgx.Row) (domain.Message, error) {
	var m domain.Message
	var bookID *string
	var readAt *time.Time
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &bookID, &m.Body, &m.SentAt, &readAt,
		&m.HiddenForSender, &m.HiddenForReceiver)
	if err != nil {
		return domain.Message{}, err
	}
	m.SentAt = m.SentAt.UTC()
	if bookID != nil {
		m.BookID = *bookID
	}
	if readAt != nil {
		m.ReadAt = readAt.UTC()
	}
	return m, nil
}

func collectPgMessages(rows pgx.Rows) ([]domain.Message, error) {
	defer rows.Close()
	var messages []domain.Message
	for rows.Next() {
		m, err := scanPgMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func pgNullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func pgNullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
