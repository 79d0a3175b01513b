package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Kakao     KakaoConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrationsPath is a golang-migrate source URL, e.g. "file://migrations".
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig holds the unified Redis settings for single, sentinel and
// cluster modes. Redis is optional: with no
// address configured the login rate limiter is disabled.
type RedisConfig struct {
	Mode       string   `mapstructure:"mode"`
	Addrs      []string `mapstructure:"addrs"`
	Addr       string   `mapstructure:"addr"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	MasterName string   `mapstructure:"master_name"`

	// MaxRetries: -1 disables retries, 0 keeps the client default.
	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // ms
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // ms
}

// Enabled reports whether any Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// JWTConfig holds session token settings.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// KakaoConfig configures the Kakao user-info client.
type KakaoConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSec  int    `mapstructure:"timeout_sec"`
	EmailDomain string `mapstructure:"email_domain"`
}

// Timeout returns the outbound request timeout.
func (k KakaoConfig) Timeout() time.Duration {
	return time.Duration(k.TimeoutSec) * time.Second
}

// RateLimitConfig configures the Redis-backed limiter on the login route.
type RateLimitConfig struct {
	LoginMaxRequests int `mapstructure:"login_max_requests"`
	LoginWindowSec   int `mapstructure:"login_window_sec"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// PostgresConnectionString builds a libpq keyword/value DSN.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 10)
	vip.SetDefault("server.allow_origins", []string{"http://localhost:3000"})

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "file://migrations")

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("jwt.issuer", "nugulmap-api")

	vip.SetDefault("kakao.base_url", "https://kapi.kakao.com")
	vip.SetDefault("kakao.timeout_sec", 5)
	vip.SetDefault("kakao.email_domain", "kakao.com")

	vip.SetDefault("rate_limit.login_max_requests", 10)
	vip.SetDefault("rate_limit.login_window_sec", 60)

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.development", false)
}

func bindEnv(vip *viper.Viper) {
	bindings := map[string]string{
		"server.port":          "SERVER_PORT",
		"server.allow_origins": "SERVER_ALLOW_ORIGINS",

		"database.host":            "DATABASE_HOST",
		"database.port":            "DATABASE_PORT",
		"database.user":            "DATABASE_USER",
		"database.password":        "DATABASE_PASSWORD",
		"database.dbname":          "DATABASE_DBNAME",
		"database.sslmode":         "DATABASE_SSLMODE",
		"database.migrations_path": "DATABASE_MIGRATIONS_PATH",

		"redis.mode":        "REDIS_MODE",
		"redis.addrs":       "REDIS_ADDRS",
		"redis.addr":        "REDIS_ADDR",
		"redis.password":    "REDIS_PASSWORD",
		"redis.db":          "REDIS_DB",
		"redis.master_name": "REDIS_MASTER_NAME",

		"jwt.secret": "JWT_SECRET",

		"kakao.base_url":    "KAKAO_BASE_URL",
		"kakao.timeout_sec": "KAKAO_TIMEOUT_SEC",

		"rate_limit.login_max_requests": "RATE_LIMIT_LOGIN_MAX_REQUESTS",
		"rate_limit.login_window_sec":   "RATE_LIMIT_LOGIN_WINDOW_SEC",

		"log.level":       "LOG_LEVEL",
		"log.development": "LOG_DEVELOPMENT",
	}
	for key, env := range bindings {
		// BindEnv only fails when called without a key.
		_ = vip.BindEnv(key, env)
	}
}

// Load reads the optional config file and environment, then validates every
// section the API server needs. Environment variables take precedence over the file.
func Load(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase is Load for tools that only talk to PostgreSQL: only the
// database section is validated.
func LoadDatabase(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(configPath string) (*Config, error) {
	vip := viper.New() // separate instance, no global state

	setDefaults(vip)
	bindEnv(vip)

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings required by the API server.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required in config (check JWT_SECRET env var)")
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Kakao.BaseURL == "" {
		return fmt.Errorf("kakao base url is required (check KAKAO_BASE_URL env var)")
	}
	if c.Kakao.TimeoutSec <= 0 {
		return fmt.Errorf("kakao timeout must be positive, got %d", c.Kakao.TimeoutSec)
	}
	return nil
}

// Validate checks the connection settings.
func (d *DatabaseConfig) Validate() error {
	if d.Host == "" || d.DBName == "" || d.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	return nil
}
