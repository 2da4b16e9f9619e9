// Package config provides centralized configuration management for bizcheck.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Reference sources.
const (
	SourceFiles    = "files"
	SourcePostgres = "postgres"
)

// Zip validation modes.
const (
	ZipModeStrict = "strict"
	ZipModeFormat = "format"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Reference  ReferenceConfig
	Validation ValidationConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds the optional PostgreSQL source settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Required only when a command
	// reads from the database. Supports DATABASE_URL and DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// ConnectTimeout bounds the retried connect and ping at startup (default: 30s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"30s"`

	// GeoTable holds (zip, city, state) reference rows (default: geo_reference)
	GeoTable string `env:"DB_GEO_TABLE" default:"geo_reference"`

	// CodeTable holds raw category code tokens (default: naics_codes)
	CodeTable string `env:"DB_CODE_TABLE" default:"naics_codes"`

	// RecordTable holds business records (default: businesses)
	RecordTable string `env:"DB_RECORD_TABLE" default:"businesses"`
}

// ReferenceConfig says where the reference tables come from.
type ReferenceConfig struct {
	// Source is "files" or "postgres" (default: files)
	Source string `env:"REFERENCE_SOURCE" default:"files"`

	// GeoFiles are the GeoNames postal dumps, local paths or s3:// URLs.
	GeoFiles []string `env:"REFERENCE_GEO_FILES" default:"US.txt,PR.txt,VI.txt"`

	// NAICSFile is the category code table, a local path or s3:// URL.
	NAICSFile string `env:"REFERENCE_NAICS_FILE" default:"NAICS_codes_2-6.csv"`

	// AWSRegion is used for s3:// locations; empty defers to the SDK chain.
	AWSRegion string `env:"AWS_REGION" envAlt:"AWS_DEFAULT_REGION"`
}

// ValidationConfig holds batch processing settings.
type ValidationConfig struct {
	// Workers is how many fields are tallied at once (default: 4)
	Workers int `env:"VALIDATION_WORKERS" default:"4"`

	// ZipMode is "strict" (reference membership) or "format" (default: strict)
	ZipMode string `env:"VALIDATION_ZIP_MODE" default:"strict"`

	// MaxConcurrentRuns is the maximum number of batches processed at once (default: 4)
	MaxConcurrentRuns int `env:"VALIDATION_MAX_CONCURRENT_RUNS" default:"4"`

	// MaxWaitTime is how long a request waits for a run slot (default: 30s)
	MaxWaitTime time.Duration `env:"VALIDATION_MAX_WAIT_TIME" default:"30s"`

	// MaxBodyBytes caps the size of a posted batch (default: 32MB)
	MaxBodyBytes int64 `env:"VALIDATION_MAX_BODY_BYTES" default:"33554432"`
}

// RateLimitConfig holds per-IP rate limiting settings for the HTTP server.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// ZipFormatOnly reports whether zips are checked for format alone.
func (c *ValidationConfig) ZipFormatOnly() bool {
	return c.ZipMode == ZipModeFormat
}
