// Package config loads application configuration from the environment.
// Every knob has a default matching the documented production behavior, so
// a bare `go run ./cmd` starts a working dev server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the root configuration object.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	OTP       OTPConfig
	Lockout   LockoutConfig
	RateLimit RateLimitConfig
	Notifx    NotifxConfig
}

// Load reads the full configuration from the environment.
func Load() *Config {
	return &Config{
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Auth:      loadAuthConfig(),
		OTP:       loadOTPConfig(),
		Lockout:   loadLockoutConfig(),
		RateLimit: loadRateLimitConfig(),
		Notifx:    loadNotifxConfig(),
	}
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        int
	CORSOrigins string
	BodyLimit   int
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:        getEnvInt("SERVER_PORT", 8080),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		BodyLimit:   getEnvInt("SERVER_BODY_LIMIT", 1*1024*1024),
	}
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "pressroom"),
		Password:        getEnv("DB_PASSWORD", "pressroom"),
		Name:            getEnv("DB_NAME", "pressroom"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

// RedisConfig configures the shared TTL store.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Address returns host:port.
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	AccessSecret      string
	RefreshSecret     string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	Issuer            string
	RefreshCookieName string
	CookieSecure      bool
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		AccessSecret:      getEnv("JWT_ACCESS_SECRET", "dev-access-secret-change-me"),
		RefreshSecret:     getEnv("JWT_REFRESH_SECRET", "dev-refresh-secret-change-me"),
		AccessTokenTTL:    getEnvDuration("JWT_ACCESS_TTL", 24*time.Hour),
		RefreshTokenTTL:   getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		Issuer:            getEnv("JWT_ISSUER", "pressroom"),
		RefreshCookieName: getEnv("REFRESH_COOKIE_NAME", "refresh_token"),
		CookieSecure:      getEnvBool("COOKIE_SECURE", false),
	}
}

// OTPConfig configures the one-time-code challenge flow.
type OTPConfig struct {
	TTL         time.Duration
	CodeLength  int
	MaxAttempts int
	MaxResends  int
}

func loadOTPConfig() OTPConfig {
	return OTPConfig{
		TTL:         getEnvDuration("OTP_TTL", 10*time.Minute),
		CodeLength:  getEnvInt("OTP_CODE_LENGTH", 6),
		MaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 3),
		MaxResends:  getEnvInt("OTP_MAX_RESENDS", 3),
	}
}

// LockoutConfig configures failed-login tracking.
type LockoutConfig struct {
	MaxFailures  int
	Window       time.Duration
	LockDuration time.Duration
	DelayBase    time.Duration
	DelayCap     time.Duration
}

func loadLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxFailures:  getEnvInt("LOCKOUT_MAX_FAILURES", 5),
		Window:       getEnvDuration("LOCKOUT_WINDOW", time.Hour),
		LockDuration: getEnvDuration("LOCKOUT_DURATION", 15*time.Minute),
		DelayBase:    getEnvDuration("LOCKOUT_DELAY_BASE", time.Second),
		DelayCap:     getEnvDuration("LOCKOUT_DELAY_CAP", 5*time.Minute),
	}
}

// RateLimitConfig configures the abuse guards.
type RateLimitConfig struct {
	LoginMax      int
	LoginWindow   time.Duration
	GeneralMax    int
	GeneralWindow time.Duration
	CommentMax    int
	CommentWindow time.Duration
	BurstMax      int
	BurstWindow   time.Duration
	PenaltyTTL    time.Duration
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		LoginMax:      getEnvInt("RATELIMIT_LOGIN_MAX", 5),
		LoginWindow:   getEnvDuration("RATELIMIT_LOGIN_WINDOW", 15*time.Minute),
		GeneralMax:    getEnvInt("RATELIMIT_GENERAL_MAX", 1000),
		GeneralWindow: getEnvDuration("RATELIMIT_GENERAL_WINDOW", 15*time.Minute),
		CommentMax:    getEnvInt("RATELIMIT_COMMENT_MAX", 5),
		CommentWindow: getEnvDuration("RATELIMIT_COMMENT_WINDOW", time.Minute),
		BurstMax:      getEnvInt("RATELIMIT_BURST_MAX", 200),
		BurstWindow:   getEnvDuration("RATELIMIT_BURST_WINDOW", 5*time.Minute),
		PenaltyTTL:    getEnvDuration("RATELIMIT_PENALTY_TTL", 24*time.Hour),
	}
}

// NotifxConfig configures the notification system.
type NotifxConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	AWSRegion   string
}

func loadNotifxConfig() NotifxConfig {
	return NotifxConfig{
		Provider:    getEnv("NOTIFX_PROVIDER", "console"),
		FromAddress: getEnv("NOTIFX_FROM_ADDRESS", "noreply@pressroom.io"),
		FromName:    getEnv("NOTIFX_FROM_NAME", "Pressroom"),
		AWSRegion:   getEnv("NOTIFX_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
	}
}

// ---------------------------------------------------------------------------
// Env helpers
// ---------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
