package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL     string
	AutoMigrate     bool
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBSlowThreshold time.Duration

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	ResendAPIKey             string
	FromEmail                string
	ContactEmail             string
	EnableEmailNotifications bool

	// Sentry
	SentryDSN string

	// Report cache (Redis when REDIS_ADDR is set, database otherwise)
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ReportCacheTTL time.Duration

	// Lifecycle events (disabled when AMQP_URL is empty)
	AMQPURL      string
	AMQPExchange string

	// Contracts
	ContractExpiryWarningDays int

	// Metrics
	MetricsEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                      getEnv("PORT", "8080"),
		Environment:               getEnv("ENVIRONMENT", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		AutoMigrate:               getEnvAsBool("AUTO_MIGRATE", true),
		DBMaxOpenConns:            getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
		DBMaxIdleConns:            getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBSlowThreshold:           getEnvAsDuration("DB_SLOW_THRESHOLD", 200*time.Millisecond),
		JWTSecret:                 getEnv("JWT_SECRET", ""),
		JWTExpirationHours:        getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		WorkerCount:               getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:            getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		ResendAPIKey:              getEnv("RESEND_API_KEY", ""),
		FromEmail:                 getEnv("FROM_EMAIL", "noreply@arrendando.com.co"),
		ContactEmail:              getEnv("CONTACT_EMAIL", ""),
		EnableEmailNotifications:  getEnvAsBool("ENABLE_EMAIL_NOTIFICATIONS", true),
		SentryDSN:                 getEnv("SENTRY_DSN", ""),
		RedisAddr:                 getEnv("REDIS_ADDR", ""),
		RedisPassword:             getEnv("REDIS_PASSWORD", ""),
		RedisDB:                   getEnvAsInt("REDIS_DB", 0),
		ReportCacheTTL:            getEnvAsDuration("REPORT_CACHE_TTL", 15*time.Minute),
		AMQPURL:                   getEnv("AMQP_URL", ""),
		AMQPExchange:              getEnv("AMQP_EXCHANGE", "arrendando.events"),
		ContractExpiryWarningDays: getEnvAsInt("CONTRACT_EXPIRY_WARNING_DAYS", 30),
		MetricsEnabled:            getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.IsProduction() {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	if cfg.ContactEmail == "" {
		cfg.ContactEmail = cfg.FromEmail
	}

	return cfg, nil
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EmailConfigured reports whether Resend can be used to send mail
func (c *Config) EmailConfigured() bool {
	return c.ResendAPIKey != "" && c.FromEmail != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("15m") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
