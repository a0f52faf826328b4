package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DevAPIURL is the backend origin used in development when API_URL is unset.
const DevAPIURL = "http://localhost:8080"

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string
	Env      string // development, production

	// Backend API
	APIURL      string
	PlatformURL string
	HTTPTimeout time.Duration

	// Resilience
	MaxAttempts    int
	RetryBaseDelay time.Duration
	MaxConcurrency int
	BreakerEnabled bool

	// Polling
	PollMaxAttempts int
	PollInterval    time.Duration

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Identity provider
	JWTSecret         string
	DevAuth           bool // DEV_AUTH=true accepts HS256 tokens signed with JWT_SECRET
	CognitoRegion     string
	CognitoUserPoolID string
	CognitoClientID   string

	// Route gate
	RouteTableFile string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	cfg := &Config{
		Port:     getEnvInt("PORT", 3000),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      getEnv("APP_ENV", "development"),

		PlatformURL: strings.TrimRight(getEnv("PLATFORM_URL", "https://app.quarkfin.ai"), "/"),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		MaxAttempts:    getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelay: getEnvDuration("RETRY_BASE_DELAY", time.Second),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),
		BreakerEnabled: getEnv("BREAKER_ENABLED", "false") == "true",

		PollMaxAttempts: getEnvInt("POLL_MAX_ATTEMPTS", 60),
		PollInterval:    getEnvDuration("POLL_INTERVAL", 2*time.Second),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		JWTSecret:         getEnv("JWT_SECRET", "quark-dev-secret-change-me"),
		DevAuth:           getEnv("DEV_AUTH", "false") == "true",
		CognitoRegion:     getEnv("COGNITO_REGION", "us-east-1"),
		CognitoUserPoolID: getEnv("COGNITO_USER_POOL_ID", ""),
		CognitoClientID:   getEnv("COGNITO_CLIENT_ID", ""),

		RouteTableFile: getEnv("ROUTE_TABLE_FILE", ""),
	}
	cfg.APIURL = resolveAPIURL(cfg.Env, cfg.PlatformURL)
	return cfg
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// JWKSURL is the identity provider's signing key set.
func (c *Config) JWKSURL() string {
	if c.CognitoUserPoolID == "" {
		return ""
	}
	return "https://cognito-idp." + c.CognitoRegion + ".amazonaws.com/" + c.CognitoUserPoolID + "/.well-known/jwks.json"
}

// Issuer is the expected iss claim of identity provider tokens.
func (c *Config) Issuer() string {
	if c.CognitoUserPoolID == "" {
		return ""
	}
	return "https://cognito-idp." + c.CognitoRegion + ".amazonaws.com/" + c.CognitoUserPoolID
}

// resolveAPIURL prefers API_URL; development falls back to the local backend,
// production to the /api path behind the platform's CDN.
func resolveAPIURL(env, platformURL string) string {
	if v := os.Getenv("API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	if env == "development" {
		return DevAPIURL
	}
	return platformURL + "/api"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt reads a positive integer. Zero, negative and malformed values
// fall back.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

// getEnvDuration reads a positive duration. Zero, negative and malformed
// values fall back.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
