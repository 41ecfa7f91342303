package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway
type Config struct {
	Server     ServerConfig
	Authority  AuthorityConfig
	Accounting AccountingConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Audit      AuditConfig
	LogLevel   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

// AuthorityConfig holds decision authority client configuration
type AuthorityConfig struct {
	BaseURL        string
	APIKey         string
	AttemptTimeout time.Duration
	OverallTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// AccountingConfig holds budget accounting service configuration
type AccountingConfig struct {
	BaseURL              string
	APIKey               string
	Timeout              time.Duration
	FallbackMonthlyLimit float64
}

// DatabaseConfig holds PostgreSQL configuration. The database is optional:
// when URL is empty the audit trail and spend ledger are disabled and the
// gateway runs stateless.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Enabled reports whether a database was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// DSN returns the connection string
func (d DatabaseConfig) DSN() string {
	return d.URL
}

// LogString returns the connection string with credentials redacted
func (d DatabaseConfig) LogString() string {
	u, err := url.Parse(d.URL)
	if err != nil {
		return "postgres://<redacted>"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.Redacted()
}

// AuthConfig holds JWT authentication configuration
type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

// AuditConfig holds audit trail worker configuration
type AuditConfig struct {
	BufferSize  int
	WorkerCount int
}

// Load loads configuration from environment variables.
// A .env file is read when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:       getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:        getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:    getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Authority: AuthorityConfig{
			BaseURL:        getEnv("AUTHORITY_BASE_URL", ""),
			APIKey:         getEnv("AUTHORITY_API_KEY", ""),
			AttemptTimeout: getEnvDuration("AUTHORITY_ATTEMPT_TIMEOUT", 10*time.Second),
			OverallTimeout: getEnvDuration("AUTHORITY_OVERALL_TIMEOUT", 30*time.Second),
			MaxRetries:     getEnvInt("AUTHORITY_MAX_RETRIES", 3),
			RetryDelay:     getEnvDuration("AUTHORITY_RETRY_DELAY", 1*time.Second),
		},
		Accounting: AccountingConfig{
			BaseURL:              getEnv("ACCOUNTING_BASE_URL", ""),
			APIKey:               getEnv("ACCOUNTING_API_KEY", ""),
			Timeout:              getEnvDuration("ACCOUNTING_TIMEOUT", 5*time.Second),
			FallbackMonthlyLimit: getEnvFloat("ACCOUNTING_FALLBACK_MONTHLY_LIMIT", 1000.00),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Auth: AuthConfig{
			Enabled:   getEnvBool("AUTH_ENABLED", true),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Audit: AuditConfig{
			BufferSize:  getEnvInt("AUDIT_BUFFER_SIZE", 10000),
			WorkerCount: getEnvInt("AUDIT_WORKER_COUNT", 5),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.Authority.BaseURL == "" {
		return fmt.Errorf("AUTHORITY_BASE_URL is required")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is true")
	}
	return nil
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as a float64 or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as a bool or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvSlice returns the environment variable as a comma-separated slice
func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
