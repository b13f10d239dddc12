package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/pkg/logger"
)

const sessionKeyPrefix = "member_session:"

// SessionCache maps member tokens to member ids in Redis. Keys hold a hash
// of the token, never the token itself.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// Connect opens a Redis client from cfg and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewSessionCache wraps client. A zero ttl keeps entries for ten minutes.
func NewSessionCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SessionCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SessionCache{client: client, ttl: ttl, log: log}
}

// Get returns the member id cached for token.
func (c *SessionCache) Get(ctx context.Context, token string) (string, bool, error) {
	id, err := c.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read member session: %w", err)
	}
	return id, true, nil
}

// Set caches the member id for token.
func (c *SessionCache) Set(ctx context.Context, token, memberID string) error {
	if err := c.client.Set(ctx, sessionKey(token), memberID, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache member session: %w", err)
	}
	c.log.With("member_id", memberID).Debug("Member session cached")
	return nil
}

// Delete evicts token.
func (c *SessionCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to evict member session: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *SessionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}
