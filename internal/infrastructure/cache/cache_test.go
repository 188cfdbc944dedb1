package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// =============================================================================
// MemoryKeyedLock
// =============================================================================

func TestMemoryKeyedLock_AcquireRelease(t *testing.T) {
	l := NewMemoryKeyedLock(5 * time.Millisecond)
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "T1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, l.Held("T1"))

	_, ok, err = l.Acquire(ctx, "T1", 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must time out")

	other, ok, err := l.Acquire(ctx, "T2", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "locks are per key")
	other()

	release()
	release()
	assert.False(t, l.Held("T1"))
}

func TestMemoryKeyedLock_WaitsForRelease(t *testing.T) {
	l := NewMemoryKeyedLock(5 * time.Millisecond)
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "T1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	go func() {
		time.Sleep(30 * time.Millisecond)
		release()
	}()

	release2, ok, err := l.Acquire(ctx, "T1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}

func TestMemoryKeyedLock_MutualExclusion(t *testing.T) {
	l := NewMemoryKeyedLock(time.Millisecond)
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, ok, err := l.Acquire(context.Background(), "same", 5*time.Second)
			if err != nil || !ok {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestMemoryKeyedLock_ContextCancelled(t *testing.T) {
	l := NewMemoryKeyedLock(5 * time.Millisecond)
	release, _, _ := l.Acquire(context.Background(), "T1", time.Second)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := l.Acquire(ctx, "T1", time.Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// RedisKeyedLock
// =============================================================================

func TestRedisKeyedLock_AcquireRelease(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := NewRedisKeyedLock(client, time.Minute, 5*time.Millisecond, logger.NewNopLogger())
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "T1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists(lockKeyPrefix+"T1"))

	_, ok, err = l.Acquire(ctx, "T1", 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.False(t, mr.Exists(lockKeyPrefix+"T1"))
}

func TestRedisKeyedLock_ReleaseKeepsForeignLock(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := NewRedisKeyedLock(client, time.Minute, 5*time.Millisecond, logger.NewNopLogger())

	release, ok, err := l.Acquire(context.Background(), "T1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate TTL expiry followed by another instance taking the lock.
	require.NoError(t, mr.Set(lockKeyPrefix+"T1", "someone-else"))
	release()

	got, err := mr.Get(lockKeyPrefix + "T1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisKeyedLock_ExpiresAfterTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := NewRedisKeyedLock(client, 10*time.Second, 5*time.Millisecond, logger.NewNopLogger())
	ctx := context.Background()

	_, ok, err := l.Acquire(ctx, "T1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(11 * time.Second)

	_, ok, err = l.Acquire(ctx, "T1", 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
}

// =============================================================================
// RedisVerificationCache
// =============================================================================

func TestRedisVerificationCache_PutGetInvalidate(t *testing.T) {
	client, _ := setupTestRedis(t)
	clock := biztime.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewRedisVerificationCache(client, time.Minute, clock)
	ctx := context.Background()

	miss, err := c.Get(ctx, "code", "d1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	grant := &license.VerifiedGrant{LicenseID: "lic_1", PlanID: "pro", DeviceCount: 1}
	require.NoError(t, c.Put(ctx, "code", "d1", 0, grant))
	require.NoError(t, c.Put(ctx, "code", "d2", 0, grant))

	hit, err := c.Get(ctx, "code", "d1")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "lic_1", hit.LicenseID)

	require.NoError(t, c.Invalidate(ctx, "code"))

	for _, device := range []string{"d1", "d2"} {
		got, err := c.Get(ctx, "code", device)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestRedisVerificationCache_StalePutIsDropped(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewRedisVerificationCache(client, time.Minute, nil)
	ctx := context.Background()
	grant := &license.VerifiedGrant{LicenseID: "lic_1", DeviceCount: 1}

	gen, err := c.Generation(ctx, "code")
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.Invalidate(ctx, "code"))
	require.NoError(t, c.Put(ctx, "code", "d1", gen, grant))

	got, err := c.Get(ctx, "code", "d1")
	require.NoError(t, err)
	assert.Nil(t, got, "a grant read before the invalidation must not be cached")

	gen, err = c.Generation(ctx, "code")
	require.NoError(t, err)
	assert.EqualValues(t, 1, gen)

	require.NoError(t, c.Put(ctx, "code", "d1", gen, grant))
	got, err = c.Get(ctx, "code", "d1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "lic_1", got.LicenseID)
}

func TestRedisVerificationCache_DoesNotStoreRawCode(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisVerificationCache(client, time.Minute, nil)

	require.NoError(t, c.Put(context.Background(), "secret-code", "d1", 0, &license.VerifiedGrant{LicenseID: "lic_1"}))

	for _, k := range mr.Keys() {
		assert.NotContains(t, k, "secret-code")
	}
}

func TestRedisVerificationCache_TTLCappedByExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := biztime.NewFakeClock(now)
	c := NewRedisVerificationCache(client, time.Hour, clock)
	ctx := context.Background()

	expires := now.Add(10 * time.Second)
	require.NoError(t, c.Put(ctx, "code", "d1", 0, &license.VerifiedGrant{LicenseID: "lic_1", ExpiresAt: &expires}))
	assert.Equal(t, 10*time.Second, mr.TTL(c.key("code")))

	clock.Advance(11 * time.Second)
	got, err := c.Get(ctx, "code", "d1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisVerificationCache_ExpiredLicenseNotCached(t *testing.T) {
	client, mr := setupTestRedis(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewRedisVerificationCache(client, time.Hour, biztime.NewFakeClock(now))

	past := now.Add(-time.Second)
	require.NoError(t, c.Put(context.Background(), "code", "d1", 0, &license.VerifiedGrant{ExpiresAt: &past}))
	assert.Empty(t, mr.Keys())
}
