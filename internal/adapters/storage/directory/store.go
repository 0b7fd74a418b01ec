// Package directory resolves users and book listings for the messaging
// subsystem. It stands in for the marketplace's identity and catalog services.
package directory

import (
	"context"

	"bookswap/internal/domain/listing"
	"bookswap/internal/domain/user"
)

// Store persists the user and book rows messaging reads from.
type Store interface {
	// GetUser returns failure.NotFound("user") if absent.
	GetUser(ctx context.Context, id string) (user.User, error)

	// GetUsers resolves many IDs at once. Unknown IDs are omitted from the map.
	GetUsers(ctx context.Context, ids []string) (map[string]user.User, error)

	// GetBook returns failure.NotFound("book") if absent.
	GetBook(ctx context.Context, id string) (listing.Book, error)

	// SaveUser inserts or updates a user.
	SaveUser(ctx context.Context, u user.User) error

	// SaveBook inserts or updates a book.
	SaveBook(ctx context.Context, b listing.Book) error
}
