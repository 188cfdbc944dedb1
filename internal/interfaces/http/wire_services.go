package http

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/licensor/internal/application/auditlog"
	"github.com/orris-inc/licensor/internal/application/payment/paymentgateway"
	paymentUsecases "github.com/orris-inc/licensor/internal/application/payment/usecases"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/infrastructure/auth"
	"github.com/orris-inc/licensor/internal/infrastructure/cache"
	"github.com/orris-inc/licensor/internal/infrastructure/config"
	"github.com/orris-inc/licensor/internal/infrastructure/email"
	infraPayment "github.com/orris-inc/licensor/internal/infrastructure/payment"
	"github.com/orris-inc/licensor/internal/infrastructure/ratelimit"
	"github.com/orris-inc/licensor/internal/infrastructure/token"
	sharedConfig "github.com/orris-inc/licensor/internal/shared/config"
	"github.com/orris-inc/licensor/internal/shared/db"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/services/markdown"
)

// services holds the infrastructure services shared by the use cases.
type services struct {
	txManager   *db.TransactionManager
	recorder    *auditlog.Recorder
	hasher      license.CodeHasher
	codes       license.CodeGenerator
	notifier    license.Notifier
	paymentLock paymentUsecases.KeyedLock
	// verificationCache is nil unless Redis is enabled with a positive TTL.
	verificationCache license.VerificationCache
	// verifyLimiter is nil when rate limiting is disabled.
	verifyLimiter ratelimit.RateLimiter
	jwtService    *auth.JWTService
	gateway       paymentgateway.CallbackVerifier
}

// ============================================================
// Section 1: Infrastructure - Redis, Repositories, Services
// ============================================================

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	if cfg.Redis.Enabled {
		client, err := initRedis(cfg, log)
		if err != nil {
			return err
		}
		c.redis = client
	}

	c.repos = newRepositories(c.db, log)

	c.svcs = &services{
		txManager:  db.NewTransactionManager(c.db),
		recorder:   auditlog.NewRecorder(c.repos.auditRepo, c.clock, c.metrics, log.Named("audit")),
		hasher:     auth.NewArgon2CodeHasher(cfg.License.MasterKey, cfg.License.KDF),
		codes:      token.NewCodeGenerator(cfg.License.CodeBytes),
		notifier:   email.NewNotifier(cfg.Email, markdown.NewRenderer(), log.Named("email")),
		jwtService: auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.JWTExpMinutes),
		gateway:    infraPayment.NewEpayGateway(cfg.Payment.MerchantID, cfg.Payment.MerchantKey, log.Named("epay")),
	}

	lock, err := c.newPaymentLock()
	if err != nil {
		return err
	}
	c.svcs.paymentLock = lock

	if c.redis != nil && cfg.Cache.VerificationTTL > 0 {
		c.svcs.verificationCache = cache.NewRedisVerificationCache(c.redis, cfg.Cache.VerificationTTL, c.clock)
		log.Infow("verification cache enabled", "ttl", cfg.Cache.VerificationTTL)
	}

	if cfg.RateLimit.Enabled {
		limitCfg := ratelimit.Config{
			Window:      cfg.RateLimit.Window,
			MaxRequests: cfg.RateLimit.MaxRequests,
		}
		if c.redis != nil {
			c.svcs.verifyLimiter = ratelimit.NewRedisRateLimiter(c.redis, limitCfg)
		} else {
			c.svcs.verifyLimiter = ratelimit.NewMemoryRateLimiter(limitCfg)
		}
	}

	return nil
}

func (c *Container) newPaymentLock() (paymentUsecases.KeyedLock, error) {
	cfg := c.cfg.Payment
	switch cfg.LockBackend {
	case sharedConfig.LockBackendRedis:
		if c.redis == nil {
			return nil, fmt.Errorf("payment.lock_backend=redis requires redis.enabled")
		}
		return cache.NewRedisKeyedLock(c.redis, cfg.LockTTL, cfg.LockPollInterval, c.log.Named("payment_lock")), nil
	default:
		if c.redis != nil {
			c.log.Warnw("payment lock is process local, run a single instance or set payment.lock_backend=redis")
		}
		return cache.NewMemoryKeyedLock(cfg.LockPollInterval), nil
	}
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return redisClient, nil
}
