package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	Timezone       string   `mapstructure:"timezone"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns the driver specific connection string. For sqlite the
// database field is the file path.
func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case DriverPostgres:
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	case DriverSQLite:
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KDFConfig pins the Argon2id cost parameters. Changing any of them
// invalidates every stored hash, so they are read once at startup.
type KDFConfig struct {
	TimeCost    uint32 `mapstructure:"time_cost"`
	MemoryCost  uint32 `mapstructure:"memory_cost"`
	Parallelism uint8  `mapstructure:"parallelism"`
	KeyLength   uint32 `mapstructure:"key_length"`
	SaltLength  int    `mapstructure:"salt_length"`
}

type LicenseConfig struct {
	MasterKey           string        `mapstructure:"master_key"`
	CodeBytes           int           `mapstructure:"code_bytes"`
	MaxDevices          int           `mapstructure:"max_devices"`
	DefaultValidityDays int           `mapstructure:"default_validity_days"`
	MaxFailedAttempts   int           `mapstructure:"max_failed_attempts"`
	LockoutDuration     time.Duration `mapstructure:"lockout_duration"`
	KDF                 KDFConfig     `mapstructure:"kdf"`
}

// Payment lock backends.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

type PaymentConfig struct {
	MerchantID       string        `mapstructure:"merchant_id"`
	MerchantKey      string        `mapstructure:"merchant_key"`
	LockBackend      string        `mapstructure:"lock_backend"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`
	LockPollInterval time.Duration `mapstructure:"lock_poll_interval"`
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
	RetryInterval    time.Duration `mapstructure:"retry_interval"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	Locale       string `mapstructure:"locale"`
	ProductName  string `mapstructure:"product_name"`
	SupportURL   string `mapstructure:"support_url"`
}

type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int           `mapstructure:"max_requests"`
}

type AdminConfig struct {
	Token         string `mapstructure:"token"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	JWTExpMinutes int    `mapstructure:"jwt_exp_minutes"`
}

type CacheConfig struct {
	VerificationTTL time.Duration `mapstructure:"verification_ttl"`
}
