// Package listing holds the read-only view of a marketplace listing as
// resolved through the Book Catalog.
package listing

import (
	"strings"

	"bookswap/internal/domain/failure"
)

// Validation errors.
var (
	ErrEmptyID       = failure.Validation("book ID cannot be empty")
	ErrEmptyOwnerID  = failure.Validation("book owner cannot be empty")
	ErrEmptyName     = failure.Validation("book name cannot be empty")
	ErrNegativePrice = failure.Validation("book price cannot be negative")
)

// Book is a listing as the messaging subsystem sees it.
type Book struct {
	ID         string
	OwnerID    string
	Name       string
	PriceCents int64
}

// Validate checks the listing fields the messaging subsystem relies on.
func (b Book) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(b.OwnerID) == "" {
		return ErrEmptyOwnerID
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.PriceCents < 0 {
		return ErrNegativePrice
	}
	return nil
}
