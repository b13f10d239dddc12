package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setlistr/setlistr/internal/pkg/logger"
)

func newTestCache(t *testing.T, ttl time.Duration) (*SessionCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewSessionCache(rdb, ttl, logger.Nop()), mr
}

func TestSessionCache_SetGetDelete(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "tok", "member-1"))

	id, ok, err := c.Get(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "member-1", id)

	require.NoError(t, c.Delete(ctx, "tok"))
	_, ok, err = c.Get(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionCache_KeysDoNotHoldToken(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, c.Set(context.Background(), "secret-token", "m"))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], sessionKeyPrefix))
	assert.NotContains(t, keys[0], "secret-token")
}

func TestSessionCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "tok", "m"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), "tok")
	assert.Error(t, err)
}
