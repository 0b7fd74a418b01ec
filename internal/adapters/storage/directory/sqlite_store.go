package directory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"bookswap/internal/adapters/storage"
	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/listing"
	"bookswap/internal/domain/user"
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

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, created_at FROM app_user WHERE id = ?`, id,
	).Scan(&u.ID, &u.DisplayName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, failure.NotFound("user")
	}
	if err != nil {
		return user.User{}, storage.Classify("directory.get_user", err)
	}
	u.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return u, nil
}

// GetUsers resolves ids in a single query.
// POST: Map keyed by user ID; unknown and duplicate IDs are tolerated
func (s *SQLiteStore) GetUsers(ctx context.Context, ids []string) (map[string]user.User, error) {
	users := make(map[string]user.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, created_at FROM app_user WHERE id IN (`+strings.Join(placeholders, ",")+`)`,
		args...)
	if err != nil {
		return nil, storage.Classify("directory.get_users", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u user.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.DisplayName, &createdAt); err != nil {
			return nil, storage.Classify("directory.get_users", err)
		}
		u.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		users[u.ID] = u
	}
	return users, storage.Classify("directory.get_users", rows.Err())
}

// GetBook retrieves a listing by ID.
func (s *SQLiteStore) GetBook(ctx context.Context, id string) (listing.Book, error) {
	var b listing.Book
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, price_cents FROM book WHERE id = ?`, id,
	).Scan(&b.ID, &b.OwnerID, &b.Name, &b.PriceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return listing.Book{}, failure.NotFound("book")
	}
	if err != nil {
		return listing.Book{}, storage.Classify("directory.get_book", err)
	}
	return b, nil
}

// SaveUser upserts a user.
// PRE: u has been validated
func (s *SQLiteStore) SaveUser(ctx context.Context, u user.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_user (id, display_name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name`,
		u.ID, u.DisplayName, u.CreatedAt.UTC().Format(timeLayout))
	return storage.Classify("directory.save_user", err)
}

// SaveBook upserts a book listing.
// PRE: b has been validated
func (s *SQLiteStore) SaveBook(ctx context.Context, b listing.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO book (id, owner_id, name, price_cents) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id, name = excluded.name, price_cents = excluded.price_cents`,
		b.ID, b.OwnerID, b.Name, b.PriceCents)
	return storage.Classify("directory.save_book", err)
}
