package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

// stateTTL clears abandoned conversations
const stateTTL = 24 * time.Hour

// RedisManager manages user states using Redis
type RedisManager struct {
	client *redis.Client
}

// NewRedisManager wraps an already connected client
func NewRedisManager(client *redis.Client) *RedisManager {
	return &RedisManager{client: client}
}

// Connect creates a Redis client and checks the connection
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func stateKey(userID int64) string {
	return fmt.Sprintf("user:%d:state", userID)
}

func tempKey(userID int64) string {
	return fmt.Sprintf("user:%d:temp", userID)
}

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	if err := m.client.Set(context.Background(), stateKey(userID), state, stateTTL).Err(); err != nil {
		logger.Warn("Failed to save user state", "telegram_id", userID, "error", err)
	}
}

// GetUserState gets the state for a user
func (m *RedisManager) GetUserState(userID int64) string {
	state, err := m.client.Get(context.Background(), stateKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Failed to load user state", "telegram_id", userID, "error", err)
		}
		return None
	}
	return state
}

// ClearUserState clears the state for a user
func (m *RedisManager) ClearUserState(userID int64) {
	m.client.Del(context.Background(), stateKey(userID))
}

// SetTempData stores one field of the user's temporary data hash
func (m *RedisManager) SetTempData(userID int64, key, value string) {
	ctx := context.Background()
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, tempKey(userID), key, value)
		pipe.Expire(ctx, tempKey(userID), stateTTL)
		return nil
	})
	if err != nil {
		logger.Warn("Failed to save temp data", "telegram_id", userID, "key", key, "error", err)
	}
}

// GetTempData gets temporary data for a user
func (m *RedisManager) GetTempData(userID int64, key string) (string, bool) {
	value, err := m.client.HGet(context.Background(), tempKey(userID), key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Failed to load temp data", "telegram_id", userID, "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

// ClearTempData clears all temporary data for a user
func (m *RedisManager) ClearTempData(userID int64) {
	m.client.Del(context.Background(), tempKey(userID))
}

// Close closes the Redis connection
func (m *RedisManager) Close() error {
	return m.client.Close()
}
