package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Booking  BookingConfig
	CORS     CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// RedisConfig holds the optional quote-cache configuration. An empty Addr
// disables the cache entirely; the engine is fully functional without it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT validation configuration. Tokens are issued by the
// identity collaborator; this service only validates them.
type JWTConfig struct {
	Secret string
}

// BookingConfig holds the commercial timeouts of the reservation engine.
type BookingConfig struct {
	QuoteTTL        time.Duration // Quote validity window (default 15 min)
	HoldTTL         time.Duration // Unconfirmed booking hold window (default 15 min)
	SweepInterval   time.Duration // Expiry sweeper cadence (default 1 min)
	SweepBatchSize  int           // Max bookings expired per sweep pass
	DefaultCurrency string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Booking: BookingConfig{
			QuoteTTL:        getEnvDuration("QUOTE_TTL", 15*time.Minute),
			HoldTTL:         getEnvDuration("BOOKING_HOLD_TTL", 15*time.Minute),
			SweepInterval:   getEnvDuration("EXPIRY_SWEEP_INTERVAL", 1*time.Minute),
			SweepBatchSize:  getEnvInt("EXPIRY_SWEEP_BATCH_SIZE", 100),
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "HKD"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Booking.QuoteTTL <= 0 {
		return fmt.Errorf("QUOTE_TTL must be positive")
	}
	if c.Booking.HoldTTL <= 0 {
		return fmt.Errorf("BOOKING_HOLD_TTL must be positive")
	}
	return nil
}

// getEnv gets an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a fallback default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a fallback default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration value for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}

// getEnvSlice gets a comma-separated environment variable with a fallback default
func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
