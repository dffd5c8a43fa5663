package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/userplatform/user-api/internal/api/metrics"
	"github.com/userplatform/user-api/internal/core/domain"
	"github.com/userplatform/user-api/internal/core/ports"
)

const (
	userKeyPrefix = "user:"
	userCacheTTL  = 30 * time.Second
)

// CachedUserRepository is a read-through cache over a UserRepository.
// Key format: user:<external_user_id>, value: JSON-encoded record.
//
// Every write invalidates the cached record so lockout and role changes take
// effect on the caller's next request. Cache faults are logged and degrade to
// the underlying store; they never surface to the client.
type CachedUserRepository struct {
	client *redis.Client
	next   ports.UserRepository
	log    zerolog.Logger
}

func NewCachedUserRepository(client *redis.Client, next ports.UserRepository, log zerolog.Logger) *CachedUserRepository {
	return &CachedUserRepository{client: client, next: next, log: log}
}

func (r *CachedUserRepository) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Result()
	if err == nil {
		var user domain.User
		if jerr := json.Unmarshal([]byte(raw), &user); jerr == nil {
			metrics.UserCacheTotal.WithLabelValues("hit").Inc()
			return &user, nil
		}
		// A corrupt entry falls through to the store and gets rewritten.
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("user cache read failed")
	}
	metrics.UserCacheTotal.WithLabelValues("miss").Inc()

	user, err := r.next.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if raw, jerr := json.Marshal(user); jerr == nil {
		if serr := r.client.Set(ctx, r.key(userID), raw, userCacheTTL).Err(); serr != nil {
			r.log.Warn().Err(serr).Str("user_id", userID).Msg("user cache write failed")
		}
	}
	return user, nil
}

// List always hits the store: pages are cheap to query and expensive to keep
// coherent.
func (r *CachedUserRepository) List(ctx context.Context, page, pageSize int) ([]*domain.User, int64, error) {
	return r.next.List(ctx, page, pageSize)
}

func (r *CachedUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	created, err := r.next.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, created.UserID)
	return created, nil
}

func (r *CachedUserRepository) Update(ctx context.Context, userID string, user *domain.User) error {
	if err := r.next.Update(ctx, userID, user); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedUserRepository) Delete(ctx context.Context, userID string) error {
	if err := r.next.Delete(ctx, userID); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedUserRepository) invalidate(ctx context.Context, userID string) {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("user cache invalidation failed")
	}
}

func (r *CachedUserRepository) key(userID string) string {
	return userKeyPrefix + userID
}
