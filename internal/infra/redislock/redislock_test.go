package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestTryLockIsExclusive(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	unlock, ok, err := c.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = c.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	unlock()
	assert.False(t, mr.Exists("sweep"))

	again, ok, err := c.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	again()
}

func TestUnlockKeepsLockTakenByAnotherOwner(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	staleUnlock, ok, err := c.TryLock(ctx, "sweep", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = c.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	staleUnlock()
	assert.True(t, mr.Exists("sweep"))
}

func TestClaimDeduplicatesUntilForgotten(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	fresh, err := c.Claim(ctx, "n-1")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, dedupeTTL, mr.TTL(dedupeKey("n-1")))

	fresh, err = c.Claim(ctx, "n-1")
	require.NoError(t, err)
	assert.False(t, fresh)

	require.NoError(t, c.Forget(ctx, "n-1"))

	fresh, err = c.Claim(ctx, "n-1")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestClaimExpiresAfterTTL(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	_, err := c.Claim(ctx, "n-2")
	require.NoError(t, err)

	mr.FastForward(dedupeTTL + time.Second)

	fresh, err := c.Claim(ctx, "n-2")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestPingFailsWhenServerIsDown(t *testing.T) {
	c, mr := newTestClient(t)
	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
