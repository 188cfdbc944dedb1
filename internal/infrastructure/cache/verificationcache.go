package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/shared/biztime"
)

const (
	verificationKeyPrefix = "licensor:verified:"
	generationKeyPrefix   = "licensor:verified:gen:"

	// generationTTL only has to outlive an in-flight verification.
	generationTTL = 24 * time.Hour
)

// putIfCurrentScript writes a grant only while the code's generation still
// equals ARGV[1]. A missing generation key reads as 0.
var putIfCurrentScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current ~= tonumber(ARGV[1]) then
	return 0
end
redis.call("HSET", KEYS[2], ARGV[2], ARGV[3])
redis.call("PEXPIRE", KEYS[2], ARGV[4])
return 1
`)

// RedisVerificationCache stores granted verifications in one hash per code,
// field = device id, so a revoke drops every device of a code in one DEL.
// Keys use a digest of the code so raw codes never reach Redis.
type RedisVerificationCache struct {
	client *redis.Client
	ttl    time.Duration
	clock  biztime.Clock
}

func NewRedisVerificationCache(client *redis.Client, ttl time.Duration, clock biztime.Clock) *RedisVerificationCache {
	if clock == nil {
		clock = biztime.SystemClock{}
	}
	return &RedisVerificationCache{
		client: client,
		ttl:    ttl,
		clock:  clock,
	}
}

func digest(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func (c *RedisVerificationCache) key(code string) string {
	return verificationKeyPrefix + digest(code)
}

func (c *RedisVerificationCache) generationKey(code string) string {
	return generationKeyPrefix + digest(code)
}

func (c *RedisVerificationCache) Generation(ctx context.Context, code string) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(code)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read verification cache generation: %w", err)
	}
	return gen, nil
}

func (c *RedisVerificationCache) Get(ctx context.Context, code, deviceID string) (*license.VerifiedGrant, error) {
	data, err := c.client.HGet(ctx, c.key(code), deviceID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read verification cache: %w", err)
	}

	var grant license.VerifiedGrant
	if err := json.Unmarshal(data, &grant); err != nil {
		return nil, fmt.Errorf("failed to decode verification cache entry: %w", err)
	}

	// A grant never outlives the license it describes.
	if grant.ExpiresAt != nil && c.clock.Now().After(*grant.ExpiresAt) {
		return nil, nil
	}
	return &grant, nil
}

// Put caches grant for the configured TTL, shortened to the license expiry.
// The write is dropped when code was invalidated after generation gen.
func (c *RedisVerificationCache) Put(ctx context.Context, code, deviceID string, gen int64, grant *license.VerifiedGrant) error {
	ttl := c.ttl
	if grant.ExpiresAt != nil {
		if remaining := grant.ExpiresAt.Sub(c.clock.Now()); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to encode verification cache entry: %w", err)
	}

	keys := []string{c.generationKey(code), c.key(code)}
	if err := putIfCurrentScript.Run(ctx, c.client, keys, gen, deviceID, data, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to write verification cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached device of code and advances its generation.
func (c *RedisVerificationCache) Invalidate(ctx context.Context, code string) error {
	genKey := c.generationKey(code)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, generationTTL)
	pipe.Del(ctx, c.key(code))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate verification cache: %w", err)
	}
	return nil
}
