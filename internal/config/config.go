package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinJWTSecretBytes is the smallest accepted HS256 signing secret.
const MinJWTSecretBytes = 32

// Password storage schemes.
const (
	PasswordSchemeBcrypt = "bcrypt"
	PasswordSchemePlain  = "plain"
)

// Token cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// ErrMissingJWTSecret is returned when AUTH_JWT_SECRET is not set.
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET is required")

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	TokenCache TokenCacheConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret         string
	TokenTTLHours     int
	BcryptCost        int
	PasswordScheme    string
	TrustCachedTokens bool
}

// TokenCacheConfig selects where issued tokens are cached.
type TokenCacheConfig struct {
	Backend      string
	SweepSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
// A missing or short signing secret is a configuration failure.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "contacts-directory"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:         os.Getenv("AUTH_JWT_SECRET"),
			TokenTTLHours:     getEnvAsInt("AUTH_TOKEN_TTL_HOURS", 24),
			BcryptCost:        getEnvAsInt("AUTH_BCRYPT_COST", 12),
			PasswordScheme:    strings.ToLower(getEnv("AUTH_PASSWORD_SCHEME", PasswordSchemeBcrypt)),
			TrustCachedTokens: getEnvAsBool("AUTH_TRUST_CACHED_TOKENS", false),
		},
		TokenCache: TokenCacheConfig{
			Backend:      strings.ToLower(getEnv("TOKEN_CACHE_BACKEND", CacheBackendMemory)),
			SweepSeconds: getEnvAsInt("TOKEN_CACHE_SWEEP_SECONDS", 300),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if len(c.Auth.JWTSecret) < MinJWTSecretBytes {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", MinJWTSecretBytes)
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("invalid AUTH_TOKEN_TTL_HOURS: %d", c.Auth.TokenTTLHours)
	}
	switch c.Auth.PasswordScheme {
	case PasswordSchemeBcrypt, PasswordSchemePlain:
	default:
		return fmt.Errorf("invalid AUTH_PASSWORD_SCHEME: %q", c.Auth.PasswordScheme)
	}
	switch c.TokenCache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("invalid TOKEN_CACHE_BACKEND: %q", c.TokenCache.Backend)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the token lifetime, which is also the cache TTL.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// SweepInterval returns how often the memory cache drops expired entries.
func (t TokenCacheConfig) SweepInterval() time.Duration {
	if t.SweepSeconds <= 0 {
		return 0
	}
	return time.Duration(t.SweepSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
