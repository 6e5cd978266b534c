// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Cache    CacheConfig
	NOAA     NOAAConfig
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// CacheConfig holds local cache settings.
type CacheConfig struct {
	// Dir is the cache root directory. A leading "~" expands to the
	// user's home directory (default: ~/.noaapaleo)
	Dir string `env:"CACHE_DIR" default:"~/.noaapaleo"`
}

// NOAAConfig holds settings for the NOAA Paleoclimatology archive client.
type NOAAConfig struct {
	// BaseURL is the archive host for study search (default: https://www.ncdc.noaa.gov)
	BaseURL string `env:"NOAA_BASE_URL" default:"https://www.ncdc.noaa.gov"`

	// Timeout is the per-request timeout for metadata lookups (default: 30s)
	Timeout time.Duration `env:"NOAA_TIMEOUT" default:"30s"`

	// DownloadTimeout is the per-request timeout for bulk file downloads,
	// which can be much larger than metadata documents (default: 2m)
	DownloadTimeout time.Duration `env:"NOAA_DOWNLOAD_TIMEOUT" default:"2m"`

	// RetryCount is how many times a failed request is retried (default: 3)
	RetryCount int `env:"NOAA_RETRY_COUNT" default:"3"`

	// RetryWait is the initial wait between retries (default: 1s)
	RetryWait time.Duration `env:"NOAA_RETRY_WAIT" default:"1s"`

	// RetryMaxWait caps the backoff between retries (default: 5s)
	RetryMaxWait time.Duration `env:"NOAA_RETRY_MAX_WAIT" default:"5s"`
}

// ServerConfig holds HTTP server settings for the optional API surface.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing responses. Dataset
	// builds download and parse remote files, so this is generous (default: 5m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`

	// RateLimitEnabled controls whether per-IP rate limiting is active (default: true)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RateLimitPerMinute is the request budget per IP per minute (default: 60)
	RateLimitPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"60"`
}

// DatabaseConfig holds optional PostgreSQL settings.
//
// When URL is empty the application persists datasets only to the file
// cache; when set, assembled datasets are additionally stored in Postgres.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (optional)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
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
