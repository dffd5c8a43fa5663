package ports

import (
	"context"

	"github.com/userplatform/user-api/internal/core/domain"
)

// UserRepository defines persistence operations for user records.
//
// Implementations must enforce uniqueness of UserID (e.g. with a unique
// index): concurrent first-seen requests for the same external id may race to
// create the record, and the losing insert must surface domain.ErrUserExists.
type UserRepository interface {
	// GetByUserID retrieves a record by external user id.
	// Returns domain.ErrUserNotFound when no record exists.
	GetByUserID(ctx context.Context, userID string) (*domain.User, error)
	// List returns one page of records (page is 1-based) and the total count.
	List(ctx context.Context, page, pageSize int) ([]*domain.User, int64, error)
	// Create inserts a new record and returns it with the internal id
	// assigned. Returns domain.ErrUserExists on a duplicate external id.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update replaces the mutable fields of the record identified by userID.
	// Returns domain.ErrUserNotFound when no record exists.
	Update(ctx context.Context, userID string, user *domain.User) error
	// Delete removes the record identified by userID.
	// Returns domain.ErrUserNotFound when no record exists.
	Delete(ctx context.Context, userID string) error
}
