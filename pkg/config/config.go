package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the questrade-exporter service.
// Values come from environment variables, with a .env file loaded if present.
type Config struct {
	ServiceName string // e.g. "questrade-exporter"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // HTTP port for health/metrics endpoints

	// Practice selects the practice login endpoint instead of production.
	Practice bool

	// RefreshToken seeds authentication when no secret store is configured.
	// Questrade rotates it on every exchange, so an exporter restarted with a
	// stale env token will fail to authenticate; prefer SecretID.
	RefreshToken string

	// SecretID names the AWS Secrets Manager secret holding the refresh token
	// (JSON key "refresh_token"). When set, the exporter reads the token from
	// there at startup and writes each rotated token back.
	SecretID  string
	AWSRegion string

	PollInterval    time.Duration // balance poll cadence
	AccountCacheTTL time.Duration // TTL for the cached account list
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName:     GetEnv("SERVICE_NAME", "questrade-exporter"),
		Env:             GetEnv("ENV", "dev"),
		LogLevel:        GetEnv("LOG_LEVEL", "info"),
		Port:            GetEnvInt("QUESTRADE_PORT", 9105),
		Practice:        GetEnvBool("QUESTRADE_PRACTICE", false),
		RefreshToken:    GetEnv("QUESTRADE_REFRESH_TOKEN", ""),
		SecretID:        GetEnv("QUESTRADE_SECRET_ID", ""),
		AWSRegion:       GetEnv("AWS_REGION", "us-east-2"),
		PollInterval:    GetEnvDuration("POLL_INTERVAL", 5*time.Minute),
		AccountCacheTTL: GetEnvDuration("ACCOUNT_CACHE_TTL", 24*time.Hour),
	}
}
