package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything the server reads from the environment.
type Config struct {
	AppEnv string
	Port   string

	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDatabase string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret      string
	AccessTokenTTL time.Duration
	RefreshTTL     time.Duration

	CacheTTL      time.Duration
	SweepInterval time.Duration
}

// Load reads the environment, applying development defaults for
// everything except JWT_SECRET in production.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		PGHost:     getEnv("PG_HOST", "localhost"),
		PGPort:     getEnv("PG_PORT", "5432"),
		PGUser:     getEnv("PG_USER", "opsdesk"),
		PGPassword: getEnv("PG_PASSWORD", "opsdesk"),
		PGDatabase: getEnv("PG_DB", "opsdesk"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL_MINUTES", 15) * time.Minute,
		RefreshTTL:     getDuration("REFRESH_TTL_HOURS", 7*24) * time.Hour,

		CacheTTL:      getDuration("CACHE_TTL_SECONDS", 120) * time.Second,
		SweepInterval: getDuration("SWEEP_INTERVAL_SECONDS", 60) * time.Second,
	}

	if cfg.AppEnv == "production" && cfg.JWTSecret == "dev-secret-change-me" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// PostgresDSN returns the connection string shared by sqlx and GORM.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback int64) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(fallback)
}
