package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/licensor/internal/shared/config"
	"github.com/orris-inc/licensor/internal/shared/constants"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	License   sharedConfig.LicenseConfig   `mapstructure:"license"`
	Payment   sharedConfig.PaymentConfig   `mapstructure:"payment"`
	Email     sharedConfig.EmailConfig     `mapstructure:"email"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"ratelimit"`
	Admin     sharedConfig.AdminConfig     `mapstructure:"admin"`
	Cache     sharedConfig.CacheConfig     `mapstructure:"cache"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// configPath overrides the default search locations when non-empty.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("LICENSOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when everything comes from env.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate rejects configurations that would make stored hashes unverifiable.
func (c *Config) Validate() error {
	if c.License.MasterKey == "" && c.Server.Mode != constants.EnvTest {
		return fmt.Errorf("license.master_key is required")
	}
	if c.License.CodeBytes < 24 {
		return fmt.Errorf("license.code_bytes must be at least 24, got %d", c.License.CodeBytes)
	}
	if c.License.MaxDevices <= 0 {
		return fmt.Errorf("license.max_devices must be positive")
	}
	switch c.Database.Driver {
	case sharedConfig.DriverMySQL, sharedConfig.DriverPostgres, sharedConfig.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Payment.LockBackend {
	case sharedConfig.LockBackendMemory:
	case sharedConfig.LockBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("payment.lock_backend=redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("unsupported payment lock backend %q", c.Payment.LockBackend)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", constants.EnvDevelopment)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.allowed_origins", []string{})

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "licensor_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// License defaults
	v.SetDefault("license.master_key", "")
	v.SetDefault("license.code_bytes", 24)
	v.SetDefault("license.max_devices", 3)
	v.SetDefault("license.default_validity_days", 365)
	v.SetDefault("license.max_failed_attempts", 5)
	v.SetDefault("license.lockout_duration", "600s")
	v.SetDefault("license.kdf.time_cost", 3)
	v.SetDefault("license.kdf.memory_cost", 65536)
	v.SetDefault("license.kdf.parallelism", 4)
	v.SetDefault("license.kdf.key_length", 32)
	v.SetDefault("license.kdf.salt_length", 16)

	// Payment defaults
	v.SetDefault("payment.merchant_id", "")
	v.SetDefault("payment.merchant_key", "")
	v.SetDefault("payment.lock_backend", "memory")
	v.SetDefault("payment.lock_timeout", "10s")
	v.SetDefault("payment.lock_poll_interval", "100ms")
	v.SetDefault("payment.lock_ttl", "60s")
	v.SetDefault("payment.retry_interval", "5m")

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "noreply@licensor.local")
	v.SetDefault("email.from_name", "Licensor")
	v.SetDefault("email.locale", "zh")
	v.SetDefault("email.product_name", "Licensor")
	v.SetDefault("email.support_url", "")

	// Rate limit defaults
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.window", "60s")
	v.SetDefault("ratelimit.max_requests", 5)

	// Admin defaults
	v.SetDefault("admin.token", "")
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.jwt_exp_minutes", 60)

	// Cache defaults
	v.SetDefault("cache.verification_ttl", "0s")
}
