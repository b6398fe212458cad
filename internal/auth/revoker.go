package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

// Revoker remembers revoked token ids until they expire
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker keeps revoked ids in process memory
type MemoryRevoker struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (r *MemoryRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, id)
		}
	}
	if expiresAt.After(now) {
		r.revoked[tokenID] = expiresAt
	}
	return nil
}

func (r *MemoryRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exp, ok := r.revoked[tokenID]
	return ok && exp.After(r.now()), nil
}

// RedisRevoker stores revoked ids as keys that expire with the token
type RedisRevoker struct {
	client *redis.Client
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		return apperrors.NewExternalAPIError(err, "redis")
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, revokedKey(tokenID)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, apperrors.NewExternalAPIError(err, "redis")
	}
}
