package message

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookswap/internal/adapters/storage"
	"bookswap/internal/domain/failure"
	domain "bookswap/internal/domain/message"
)

// timeLayout is fixed width so lexical order equals chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const messageColumns = `id, sender_id, receiver_id, book_id, body, sent_at, read_at, hidden_for_sender, hidden_for_receiver`

// visibleToViewer filters out rows the viewer (bound twice) has hidden.
const visibleToViewer = `((sender_id = ? AND hidden_for_sender = 0) OR (receiver_id = ? AND hidden_for_receiver = 0))`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append inserts a message.
// PRE: m has been validated
// POST: Row persisted with pair key columns; returns the assigned ID
func (s *SQLiteStore) Append(ctx context.Context, m domain.Message) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	low, high := domain.PairKey(m.SenderID, m.ReceiverID)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO message (sender_id, receiver_id, user_low, user_high, book_id, body, sent_at, read_at, hidden_for_sender, hidden_for_receiver)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0)`,
		m.SenderID, m.ReceiverID, low, high, nullStr(m.BookID), m.Body,
		formatTime(m.SentAt), nullTime(m.ReadAt))
	if err != nil {
		return 0, storage.Classify("message.append", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storage.Classify("message.append", err)
	}
	return id, nil
}

// GetByID retrieves a Message by its ID.
// PRE: id > 0
// POST: Returns the message or failure.NotFound("message")
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM message WHERE id = ?`, id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, failure.NotFound("message")
	}
	if err != nil {
		return domain.Message{}, storage.Classify("message.get", err)
	}
	return m, nil
}

// ListBetween lists the pair's messages visible to viewerID.
// PRE: filter.Limit > 0, filter.Offset >= 0
// POST: Ascending by (sent_at, id); stable across pages absent new writes
func (s *SQLiteStore) ListBetween(ctx context.Context, viewerID, counterpartID string, filter ListFilter) ([]domain.Message, error) {
	low, high := domain.PairKey(viewerID, counterpartID)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM message
		 WHERE user_low = ? AND user_high = ? AND `+visibleToViewer+`
		 ORDER BY sent_at ASC, id ASC
		 LIMIT ? OFFSET ?`,
		low, high, viewerID, viewerID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, storage.Classify("message.list_between", err)
	}
	defer rows.Close()
	msgs, err := scanMessages(rows)
	return msgs, storage.Classify("message.list_between", err)
}

// CountBetween counts the pair's messages visible to viewerID.
func (s *SQLiteStore) CountBetween(ctx context.Context, viewerID, counterpartID string) (int, error) {
	low, high := domain.PairKey(viewerID, counterpartID)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM message WHERE user_low = ? AND user_high = ? AND `+visibleToViewer,
		low, high, viewerID, viewerID).Scan(&count)
	return count, storage.Classify("message.count_between", err)
}

// MarkRead marks the counterpart's unread messages to viewerID as read.
// PRE: viewerID != counterpartID
// POST: Only rows with read_at IS NULL change; returns the number updated
// INVARIANT: read_at is never overwritten once set
func (s *SQLiteStore) MarkRead(ctx context.Context, viewerID, counterpartID string, at time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE message SET read_at = ?
		 WHERE receiver_id = ? AND sender_id = ? AND read_at IS NULL`,
		formatTime(at), viewerID, counterpartID)
	if err != nil {
		return 0, storage.Classify("message.mark_read", err)
	}
	n, err := res.RowsAffected()
	return int(n), storage.Classify("message.mark_read", err)
}

// CountUnread counts unread messages received by viewerID that are not hidden for them.
func (s *SQLiteStore) CountUnread(ctx context.Context, viewerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM message
		 WHERE receiver_id = ? AND read_at IS NULL AND hidden_for_receiver = 0`,
		viewerID).Scan(&count)
	return count, storage.Classify("message.count_unread", err)
}

// CountUnreadFrom counts unread messages from counterpartID to viewerID.
func (s *SQLiteStore) CountUnreadFrom(ctx context.Context, viewerID, counterpartID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM message
		 WHERE receiver_id = ? AND sender_id = ? AND read_at IS NULL AND hidden_for_receiver = 0`,
		viewerID, counterpartID).Scan(&count)
	return count, storage.Classify("message.count_unread", err)
}

// CountUnreadByCounterpart groups the unread count by sender.
func (s *SQLiteStore) CountUnreadByCounterpart(ctx context.Context, viewerID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sender_id, COUNT(*) FROM message
		 WHERE receiver_id = ? AND read_at IS NULL AND hidden_for_receiver = 0
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

// HideConversation hides the whole pair conversation for viewerID.
// PRE: viewerID != counterpartID
// POST: Both flag updates commit together or not at all
func (s *SQLiteStore) HideConversation(ctx context.Context, viewerID, counterpartID string) (int, error) {
	const op = "message.hide_conversation"
	low, high := domain.PairKey(viewerID, counterpartID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storage.Classify(op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM message WHERE user_low = ? AND user_high = ?)`,
		low, high).Scan(&exists)
	if err != nil {
		return 0, storage.Classify(op, err)
	}
	if exists == 0 {
		return 0, failure.NotFound("conversation")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE message SET hidden_for_sender = 1
		 WHERE sender_id = ? AND receiver_id = ? AND hidden_for_sender = 0`,
		viewerID, counterpartID)
	if err != nil {
		return 0, storage.Classify(op, err)
	}
	asSender, err := res.RowsAffected()
	if err != nil {
		return 0, storage.Classify(op, err)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE message SET hidden_for_receiver = 1
		 WHERE receiver_id = ? AND sender_id = ? AND hidden_for_receiver = 0`,
		viewerID, counterpartID)
	if err != nil {
		return 0, storage.Classify(op, err)
	}
	asReceiver, err := res.RowsAffected()
	if err != nil {
		return 0, storage.Classify(op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storage.Classify(op, err)
	}
	return int(asSender + asReceiver), nil
}

// ListLatestPerCounterpart returns the latest visible message per counterpart.
// POST: One row per counterpart, newest first, ties broken by higher id
func (s *SQLiteStore) ListLatestPerCounterpart(ctx context.Context, viewerID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM (
			SELECT `+messageColumns+`,
				ROW_NUMBER() OVER (
					PARTITION BY CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END
					ORDER BY sent_at DESC, id DESC
				) AS rn
			FROM message
			WHERE `+visibleToViewer+`
		 )
		 WHERE rn = 1
		 ORDER BY sent_at DESC, id DESC`,
		viewerID, viewerID, viewerID)
	if err != nil {
		return nil, storage.Classify("message.list_latest", err)
	}
	defer rows.Close()
	msgs, err := scanMessages(rows)
	return msgs, storage.Classify("message.list_latest", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (domain.Message, error) {
	var m domain.Message
	var bookID, readAt sql.NullString
	var sentAt string
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &bookID, &m.Body, &sentAt, &readAt,
		&m.HiddenForSender, &m.HiddenForReceiver)
	if err != nil {
		return domain.Message{}, err
	}
	m.SentAt, _ = time.Parse(timeLayout, sentAt)
	if bookID.Valid {
		m.BookID = bookID.String
	}
	if readAt.Valid {
		m.ReadAt, _ = time.Parse(timeLayout, readAt.String)
	}
	return m, nil
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}
