package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bookswap/internal/adapters/storage"
	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/listing"
	"bookswap/internal/domain/user"
)

// PgStore implements Store using Postgres.
type PgStore struct {
	db storage.PgxDB
}

// NewPgStore creates a new PgStore.
func NewPgStore(db storage.PgxDB) *PgStore {
	return &PgStore{db: db}
}

// GetUser retrieves a user by ID.
func (s *PgStore) GetUser(ctx context.Context, id string) (user.User, error) {
	var u user.User
	err := s.db.QueryRow(ctx,
		`SELECT id, display_name, created_at FROM app_user WHERE id = $1`, id,
	).Scan(&u.ID, &u.DisplayName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, failure.NotFound("user")
	}
	if err != nil {
		return user.User{}, storage.Classify("directory.get_user", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// GetUsers resolves ids with a single ANY($1) query.
func (s *PgStore) GetUsers(ctx context.Context, ids []string) (map[string]user.User, error) {
	users := make(map[string]user.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, display_name, created_at FROM app_user WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, storage.Classify("directory.get_users", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.CreatedAt); err != nil {
			return nil, storage.Classify("directory.get_users", err)
		}
		u.CreatedAt = u.CreatedAt.UTC()
		users[u.ID] = u
	}
	return users, storage.Classify("directory.get_users", rows.Err())
}

// GetBook retrieves a listing by ID.
func (s *PgStore) GetBook(ctx context.Context, id string) (listing.Book, error) {
	var b listing.Book
	err := s.db.QueryRow(ctx,
		`SELECT id, owner_id, name, price_cents FROM book WHERE id = $1`, id,
	).Scan(&b.ID, &b.OwnerID, &b.Name, &b.PriceCents)
	if errors.Is(err, pgx.ErrNoRows) {
		return listing.Book{}, failure.NotFound("book")
	}
	if err != nil {
		return listing.Book{}, storage.Classify("directory.get_book", err)
	}
	return b, nil
}

// SaveUser upserts a user.
func (s *PgStore) SaveUser(ctx context.Context, u user.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO app_user (id, display_name, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name`,
		u.ID, u.DisplayName, u.CreatedAt.UTC())
	return storage.Classify("directory.save_user", err)
}

// SaveBook upserts a book listing.
func (s *PgStore) SaveBook(ctx context.Context, b listing.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO book (id, owner_id, name, price_cents) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET owner_id = EXCLUDED.owner_id, name = EXCLUDED.name, price_cents = EXCLUDED.price_cents`,
		b.ID, b.OwnerID, b.Name, b.PriceCents)
	return storage.Classify("directory.save_book", err)
}
