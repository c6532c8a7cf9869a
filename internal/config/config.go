// Package config provides centralized configuration management for the service.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"time"

	"github.com/JonMunkholm/euring/internal/core"
	"github.com/JonMunkholm/euring/internal/store"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server      ServerConfig
	Catalog     CatalogConfig
	Batch       BatchConfig
	Recognition RecognitionConfig
	Conversion  ConversionConfig
	Rate        RateLimitConfig
	Security    SecurityConfig
	Logging     LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodyBytes caps request bodies (default: 1MB)
	MaxBodyBytes int64 `env:"SERVER_MAX_BODY_BYTES" default:"1048576"`
}

// CatalogConfig selects and tunes the store behind the version catalog.
type CatalogConfig struct {
	// Driver is memory, postgres or sqlite (default: memory)
	Driver string `env:"CATALOG_DRIVER" default:"memory"`

	// URL is the PostgreSQL connection string, required for the postgres driver.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the database file for the sqlite driver
	SQLitePath string `env:"CATALOG_SQLITE_PATH" default:"euring_catalog.db"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// RefreshInterval is how often lookup overrides are re-read from the store.
	// Zero disables the refresh loop (default: 5m)
	RefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" default:"5m"`
}

// BatchConfig holds batch processing limits.
type BatchConfig struct {
	// MaxConcurrent caps per-batch parallelism (default: 10)
	MaxConcurrent int `env:"BATCH_MAX_CONCURRENT" default:"10"`

	// MaxRecognitions is the largest recognition batch (default: 100)
	MaxRecognitions int `env:"BATCH_MAX_RECOGNITIONS" default:"100"`

	// MaxConversions is the largest conversion batch (default: 50)
	MaxConversions int `env:"BATCH_MAX_CONVERSIONS" default:"50"`

	// MaxActive is the number of batches processed at once (default: 4)
	MaxActive int `env:"BATCH_MAX_ACTIVE" default:"4"`

	// MaxWait is how long a batch waits for a slot (default: 10s)
	MaxWait time.Duration `env:"BATCH_MAX_WAIT" default:"10s"`
}

// RecognitionConfig holds recognition settings.
type RecognitionConfig struct {
	// MinConfidence is the score below which a result is flagged (default: 0.6)
	MinConfidence float64 `env:"RECOGNITION_MIN_CONFIDENCE" default:"0.6"`
}

// ConversionConfig holds conversion settings.
type ConversionConfig struct {
	// CenturyPivot decides the century of two-digit years: below it is 20xx (default: 50)
	CenturyPivot int `env:"CONVERSION_CENTURY_PIVOT" default:"50"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// BatchLimit is requests per minute for batch endpoints (default: 20)
	BatchLimit int `env:"RATE_LIMIT_BATCH" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey gates /api behind the X-API-Key header (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
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
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// StoreOptions returns the options for store.Open.
func (c *CatalogConfig) StoreOptions() store.Options {
	return store.Options{
		Driver:          c.Driver,
		DatabaseURL:     c.URL,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		SQLitePath:      c.SQLitePath,
	}
}

// ServiceConfig returns the core service settings.
func (c *Config) ServiceConfig() core.Config {
	return core.Config{
		MaxConcurrent:    c.Batch.MaxConcurrent,
		MaxRecognitions:  c.Batch.MaxRecognitions,
		MaxConversions:   c.Batch.MaxConversions,
		MaxActiveBatches: c.Batch.MaxActive,
		BatchWait:        c.Batch.MaxWait,
		MinConfidence:    c.Recognition.MinConfidence,
		CenturyPivot:     c.Conversion.CenturyPivot,
	}
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
