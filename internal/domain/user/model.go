// Package user holds the read-only view of a user as resolved through the
// User Directory.
package user

import (
	"strings"
	"time"

	"bookswap/internal/domain/failure"
)

// Validation errors.
var (
	ErrEmptyID          = failure.Validation("user ID cannot be empty")
	ErrEmptyDisplayName = failure.Validation("display name cannot be empty")
)

// User is a directory entry.
type User struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
}

// Validate checks that the user has an identity and a name to show.
func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(u.DisplayName) == "" {
		return ErrEmptyDisplayName
	}
	return nil
}
