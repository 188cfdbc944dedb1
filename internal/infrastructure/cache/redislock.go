package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/licensor/internal/shared/logger"
)

const (
	lockKeyPrefix      = "licensor:lock:"
	defaultLockTTL     = 60 * time.Second
	lockReleaseTimeout = 2 * time.Second
)

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisKeyedLock is a SET NX advisory lock shared by every instance that
// talks to the same Redis. ttl bounds how long a crashed holder blocks others.
type RedisKeyedLock struct {
	client       *redis.Client
	ttl          time.Duration
	pollInterval time.Duration
	logger       logger.Interface
}

func NewRedisKeyedLock(client *redis.Client, ttl, pollInterval time.Duration, logger logger.Interface) *RedisKeyedLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if pollInterval <= 0 {
		pollInterval = defaultLockPollInterval
	}
	return &RedisKeyedLock{
		client:       client,
		ttl:          ttl,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

func (l *RedisKeyedLock) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), bool, error) {
	redisKey := lockKeyPrefix + key
	owner := uuid.NewString()
	deadline := time.Now().Add(timeout)

	for {
		acquired, err := l.client.SetNX(ctx, redisKey, owner, l.ttl).Result()
		if err != nil {
			return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if acquired {
			var once sync.Once
			return func() { once.Do(func() { l.release(redisKey, owner) }) }, true, nil
		}
		if !time.Now().Before(deadline) {
			return nil, false, nil
		}

		timer := time.NewTimer(l.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, false, ctx.Err()
		case <-timer.C:
		}
	}
}

// release runs detached from the request context so a cancelled request
// still frees the lock.
func (l *RedisKeyedLock) release(redisKey, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{redisKey}, owner).Err(); err != nil {
		l.logger.Warnw("failed to release redis lock", "key", redisKey, "error", err)
	}
}
