package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogPretty bool   // console output instead of JSON

	// Rate limiting of view actions
	RateLimitType   string // "memory" or "redis"
	RateLimit       int    // actions allowed per window
	RateLimitWindow int    // window in seconds

	// Country source configuration
	SourceType          string  // "http", "csv", "mysql" or "redis"
	CountryAPIURL       string  // base URL of the restcountries API
	FetchTimeoutSeconds float64 // 0 disables the client timeout
	DatastorePath       string  // path to the CSV fixture

	// MySQL configuration
	MySQLDSN string // Data Source Name

	// Redis configuration, shared by the Redis source and limiter
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	// In production/Docker, environment variables are set directly
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port: getEnv("PORT", "3000"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		// Default: memory, 5 actions per 1 second
		RateLimitType:   getEnv("RATE_LIMITER_TYPE", "memory"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 5),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 1),

		SourceType:          strings.ToLower(getEnv("SOURCE_TYPE", "http")),
		CountryAPIURL:       getEnv("COUNTRY_API_URL", "https://restcountries.com"),
		FetchTimeoutSeconds: getEnvAsFloat("FETCH_TIMEOUT_SECONDS", 0),
		DatastorePath:       getEnv("DATASTORE_PATH", "./data/countries.csv"),

		MySQLDSN: getEnv("MYSQL_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
	}
}

// FetchTimeout converts FetchTimeoutSeconds to a duration.
// Negative values are treated as no timeout.
func (c *Config) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.FetchTimeoutSeconds * float64(time.Second))
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloat reads an environment variable as a float64
// Returns default if not set or invalid
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a bool ("true", "1", "false", "0", ...)
// Returns default if not set or invalid
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
