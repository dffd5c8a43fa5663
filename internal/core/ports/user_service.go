package ports

import (
	"context"

	"github.com/userplatform/user-api/internal/core/domain"
)

// UserService implements the request-enrichment and role-gated CRUD logic.
type UserService interface {
	// Enrich resolves the caller's record from the claims map, lazily
	// creating it on first touch. created reports whether a new record was
	// persisted. Returns domain.ErrMissingSubject when the sub claim is
	// absent or empty (the store is never called in that case), and
	// domain.ErrLockedOut when the resolved record is locked out.
	Enrich(ctx context.Context, claims map[string]string) (user *domain.User, created bool, err error)

	// The operations below require caller.IsAdmin and return
	// domain.ErrForbidden otherwise, before any store access.
	GetUser(ctx context.Context, caller *domain.User, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, caller *domain.User, page, pageSize int) ([]*domain.User, int64, error)
	CreateUser(ctx context.Context, caller *domain.User, user *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, caller *domain.User, userID string, user *domain.User) error
	DeleteUser(ctx context.Context, caller *domain.User, userID string) error
}
