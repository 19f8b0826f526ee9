package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	RedisAddr     string
	PostgresDSN   string
	ClickHouseDSN string
	GeoIPDB       string

	ServiceName string
	DebugTrace  bool

	// Site settings surfaced through token substitution and rendering.
	SiteName          string
	SiteURL           string
	DefaultLanguage   string
	DefaultTextFormat string
	FileBaseURL       string

	// Database connection pooling configuration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	// Tracing configuration
	TracingEnabled    bool
	TracingEndpoint   string
	TracingSampleRate float64
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8686")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 10*time.Second)

	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.PostgresDSN = getenv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable")
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "")
	cfg.GeoIPDB = getenv("GEOIP_DB", "")

	cfg.ServiceName = getenv("SERVICE_NAME", "sectionbanner")
	cfg.DebugTrace = envBool("DEBUG_TRACE", false)

	cfg.SiteName = getenv("SITE_NAME", "")
	cfg.SiteURL = getenv("SITE_URL", "http://localhost")
	cfg.DefaultLanguage = getenv("DEFAULT_LANGUAGE", "en")
	cfg.DefaultTextFormat = getenv("DEFAULT_TEXT_FORMAT", "basic_html")
	cfg.FileBaseURL = getenv("FILE_BASE_URL", cfg.SiteURL)

	cfg.DBMaxOpenConns = envInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = envInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.DBConnMaxIdleTime = envDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)

	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TracingEndpoint = getenv("TRACING_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration. The value
// can be a duration string (e.g. "5s") or a number of seconds. If the
// variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
