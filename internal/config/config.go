package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Rate limiter backends
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	Env string `env:"ENV" envDefault:"production"`

	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Submission rate limits
	RateLimit RateLimitConfig

	// Outbound email and queue processing
	Email EmailConfig

	// Question intake options
	Questions QuestionsConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `env:"PORT"                    envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig holds database connection settings.
// URL takes precedence over the individual host fields when set.
type DatabaseConfig struct {
	URL            string        `env:"DATABASE_URL"`
	Host           string        `env:"DB_HOST"           envDefault:"localhost"`
	Port           string        `env:"DB_PORT"           envDefault:"5432"`
	User           string        `env:"DB_USER"           envDefault:"postgres"`
	Password       string        `env:"DB_PASSWORD"       envDefault:"postgres"`
	Name           string        `env:"DB_NAME"           envDefault:"event_qa"`
	SSLMode        string        `env:"DB_SSLMODE"        envDefault:"disable"`
	MaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns   int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxLifetime    time.Duration `env:"DB_MAX_LIFETIME"   envDefault:"5m"`
	MigrationsPath string        `env:"MIGRATIONS_PATH"   envDefault:"./migrations"`
}

// RateLimitConfig selects the limiter backend and the three submission windows
type RateLimitConfig struct {
	Backend       string `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	RedisAddr     string `env:"REDIS_ADDR"         envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"           envDefault:"0"`
	RedisPrefix   string `env:"REDIS_KEY_PREFIX"   envDefault:"ratelimit:"`

	GlobalMax         int           `env:"RATE_LIMIT_GLOBAL_MAX"         envDefault:"100"`
	GlobalWindow      time.Duration `env:"RATE_LIMIT_GLOBAL_WINDOW"      envDefault:"1m"`
	IPMax             int           `env:"RATE_LIMIT_IP_MAX"             envDefault:"20"`
	IPWindow          time.Duration `env:"RATE_LIMIT_IP_WINDOW"          envDefault:"1h"`
	FingerprintMax    int           `env:"RATE_LIMIT_FINGERPRINT_MAX"    envDefault:"10"`
	FingerprintWindow time.Duration `env:"RATE_LIMIT_FINGERPRINT_WINDOW" envDefault:"1h"`

	// CleanupInterval is how often the memory backend drops elapsed windows
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
}

// EmailConfig holds mail provider and queue settings
type EmailConfig struct {
	ResendAPIKey  string        `env:"RESEND_API_KEY"`
	ResendAPIURL  string        `env:"RESEND_API_URL"         envDefault:"https://api.resend.com"`
	From          string        `env:"EMAIL_FROM"             envDefault:"Event Q&A <noreply@eventqa.app>"`
	HTTPTimeout   time.Duration `env:"EMAIL_HTTP_TIMEOUT"     envDefault:"10s"`
	BatchSize     int           `env:"EMAIL_QUEUE_BATCH_SIZE" envDefault:"10"`
	QueueInterval time.Duration `env:"EMAIL_QUEUE_INTERVAL"   envDefault:"0s"` // 0 disables the in-process scheduler
}

// QuestionsConfig holds question intake options
type QuestionsConfig struct {
	NotifyOrganizer bool `env:"QUESTIONS_NOTIFY_ORGANIZER" envDefault:"false"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	}

	switch c.RateLimit.Backend {
	case RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if c.RateLimit.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q, got %q",
			RateLimitBackendMemory, RateLimitBackendRedis, c.RateLimit.Backend)
	}

	limits := []struct {
		name   string
		max    int
		window time.Duration
	}{
		{"RATE_LIMIT_GLOBAL", c.RateLimit.GlobalMax, c.RateLimit.GlobalWindow},
		{"RATE_LIMIT_IP", c.RateLimit.IPMax, c.RateLimit.IPWindow},
		{"RATE_LIMIT_FINGERPRINT", c.RateLimit.FingerprintMax, c.RateLimit.FingerprintWindow},
	}
	for _, l := range limits {
		if l.max <= 0 {
			return fmt.Errorf("%s_MAX must be positive", l.name)
		}
		if l.window <= 0 {
			return fmt.Errorf("%s_WINDOW must be positive", l.name)
		}
	}

	if c.Email.BatchSize <= 0 {
		return fmt.Errorf("EMAIL_QUEUE_BATCH_SIZE must be positive")
	}
	if c.Email.QueueInterval < 0 {
		return fmt.Errorf("EMAIL_QUEUE_INTERVAL must not be negative")
	}

	return nil
}

// IsDevelopment reports whether ENV=development
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
