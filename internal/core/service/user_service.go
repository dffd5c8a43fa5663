package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/userplatform/user-api/internal/core/domain"
	"github.com/userplatform/user-api/internal/core/ports"
)

// UserService resolves callers to user records and implements the admin-gated
// CRUD operations over them.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// Enrich looks up the caller's record by the sub claim, creating it on first
// touch with all flags false and the display name taken from the name claim
// (falling back to the external id).
func (s *UserService) Enrich(ctx context.Context, claims map[string]string) (*domain.User, bool, error) {
	sub := claims[domain.ClaimSubject]
	if sub == "" {
		return nil, false, domain.ErrMissingSubject
	}

	user, err := s.repo.GetByUserID(ctx, sub)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		name := claims[domain.ClaimName]
		if name == "" {
			name = sub
		}
		created, cerr := s.repo.Create(ctx, &domain.User{
			UserID:      sub,
			UserName:    name,
			IsAdmin:     false,
			IsRoot:      false,
			IsLockedOut: false,
		})
		if errors.Is(cerr, domain.ErrUserExists) {
			// Lost a first-touch race against a concurrent request; the
			// winner's record is authoritative.
			existing, gerr := s.repo.GetByUserID(ctx, sub)
			if gerr != nil {
				return nil, false, gerr
			}
			return s.checkLockout(existing, false)
		}
		if cerr != nil {
			return nil, false, cerr
		}
		s.log.Info().Str("user_id", sub).Str("user_name", name).Msg("created user on first authenticated request")
		return s.checkLockout(created, true)
	case err != nil:
		return nil, false, err
	}

	return s.checkLockout(user, false)
}

func (s *UserService) checkLockout(user *domain.User, created bool) (*domain.User, bool, error) {
	if user.IsLockedOut {
		return nil, created, domain.ErrLockedOut
	}
	return user, created, nil
}

func (s *UserService) GetUser(ctx context.Context, caller *domain.User, userID string) (*domain.User, error) {
	if !isAdmin(caller) {
		return nil, domain.ErrForbidden
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context, caller *domain.User, page, pageSize int) ([]*domain.User, int64, error) {
	if !isAdmin(caller) {
		return nil, 0, domain.ErrForbidden
	}
	if page < 1 || pageSize < 1 {
		return nil, 0, domain.ErrInvalidPagination
	}
	return s.repo.List(ctx, page, pageSize)
}

// CreateUser checks admin rights before existence so that non-admins cannot
// probe which external ids are taken through conflict responses.
func (s *UserService) CreateUser(ctx context.Context, caller *domain.User, user *domain.User) (*domain.User, error) {
	if !isAdmin(caller) {
		return nil, domain.ErrForbidden
	}

	_, err := s.repo.GetByUserID(ctx, user.UserID)
	if err == nil {
		return nil, domain.ErrUserExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	return s.repo.Create(ctx, user)
}

// UpdateUser replaces the mutable fields of an existing record. IsRoot is
// always carried over from the stored record, whatever the caller supplied.
func (s *UserService) UpdateUser(ctx context.Context, caller *domain.User, userID string, user *domain.User) error {
	if !isAdmin(caller) {
		return domain.ErrForbidden
	}

	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	return s.repo.Update(ctx, userID, &domain.User{
		UserID:      userID,
		UserName:    user.UserName,
		IsAdmin:     user.IsAdmin,
		IsRoot:      existing.IsRoot,
		IsLockedOut: user.IsLockedOut,
	})
}

func (s *UserService) DeleteUser(ctx context.Context, caller *domain.User, userID string) error {
	if !isAdmin(caller) {
		return domain.ErrForbidden
	}

	if _, err := s.repo.GetByUserID(ctx, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID)
}

func isAdmin(caller *domain.User) bool {
	return caller != nil && caller.IsAdmin
}
