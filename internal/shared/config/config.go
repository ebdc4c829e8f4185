package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	CORSOrigins    []string

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Guest token configuration
	GuestToken GuestTokenConfig

	// Booking lifecycle configuration
	Booking BookingConfig

	// Dynamic pricing configuration
	Pricing PricingConfig

	// Kafka configuration
	Kafka KafkaConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL for the availability-grid render cache (non-authoritative reads)
	GridCacheTTL time.Duration
}

// GuestTokenConfig holds the signing settings for guest capability tokens
type GuestTokenConfig struct {
	Secret   string
	Lifetime time.Duration
}

// BookingConfig holds the hold-lifecycle settings
type BookingConfig struct {
	// HoldTTL is the window an incomplete booking keeps its seats,
	// measured from the booking's last mutation.
	HoldTTL time.Duration

	// Reaper settings
	ReaperInterval  time.Duration
	ReaperBatchSize int

	// Per-showing lock settings
	LockTimeout time.Duration
	LockTTL     time.Duration
}

// PricingConfig holds the dynamic pricing cutoffs. The thresholds and the
// surcharge rates are configurable rather than hard-coded (see DESIGN.md).
type PricingConfig struct {
	HighOccupancyThreshold float64
	LowOccupancyThreshold  float64
	SoonWindow             time.Duration
	OccupancyRate          float64
	SoonRate               float64
}

// KafkaConfig holds Kafka notification settings
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	PublicRequests  int           `json:"public_requests"`
	BookingRequests int           `json:"booking_requests"`
	HealthRequests  int           `json:"health_requests"`
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB
		CORSOrigins:    getStringSliceEnv("CORS_ORIGINS", []string{"http://localhost:5173"}),

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "cinebook_db"),
			User:     getEnv("DB_USER", "cinebook_user"),
			Password: getEnv("DB_PASSWORD", "cinebook_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			GridCacheTTL: getDurationEnv("REDIS_GRID_CACHE_TTL", 5*time.Second),
		},

		// Guest token configuration
		GuestToken: GuestTokenConfig{
			Secret:   getEnv("GUEST_TOKEN_SECRET", "your-super-secret-guest-key"),
			Lifetime: getDurationEnv("GUEST_TOKEN_LIFETIME", 24*time.Hour),
		},

		// Booking lifecycle configuration
		Booking: BookingConfig{
			HoldTTL:         getDurationEnv("BOOKING_HOLD_TTL", 15*time.Minute),
			ReaperInterval:  getDurationEnv("BOOKING_REAPER_INTERVAL", 45*time.Second),
			ReaperBatchSize: getIntEnv("BOOKING_REAPER_BATCH_SIZE", 100),
			LockTimeout:     getDurationEnv("BOOKING_LOCK_TIMEOUT", 250*time.Millisecond),
			LockTTL:         getDurationEnv("BOOKING_LOCK_TTL", 3*time.Second),
		},

		// Dynamic pricing configuration
		Pricing: PricingConfig{
			HighOccupancyThreshold: getFloatEnv("PRICING_HIGH_OCCUPANCY", 0.7),
			LowOccupancyThreshold:  getFloatEnv("PRICING_LOW_OCCUPANCY", 0.3),
			SoonWindow:             getDurationEnv("PRICING_SOON_WINDOW", 24*time.Hour),
			OccupancyRate:          getFloatEnv("PRICING_OCCUPANCY_RATE", 0.10),
			SoonRate:               getFloatEnv("PRICING_SOON_RATE", 0.10),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Enabled: getBoolEnv("KAFKA_ENABLED", false),
			Brokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TICKETS_TOPIC", "tickets-issued"),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 120),
			BookingRequests: getIntEnv("RATE_LIMIT_BOOKING_REQUESTS", 30),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
