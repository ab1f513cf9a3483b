package config

import (
	"testing"
	"time"
)

var configKeys = []string{
	"PORT", "LOG_LEVEL", "LOG_PRETTY", "RATE_LIMITER_TYPE", "RATE_LIMIT", "RATE_LIMIT_WINDOW",
	"SOURCE_TYPE", "COUNTRY_API_URL", "FETCH_TIMEOUT_SECONDS", "DATASTORE_PATH",
	"MYSQL_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
}

// clearEnv blanks every key Load reads; getEnv treats empty as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults tests the defaults used without environment
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Port)
	}
	if cfg.SourceType != "http" {
		t.Errorf("expected source type 'http', got '%s'", cfg.SourceType)
	}
	if cfg.CountryAPIURL != "https://restcountries.com" {
		t.Errorf("unexpected API URL %s", cfg.CountryAPIURL)
	}
	if cfg.FetchTimeout() != 0 {
		t.Errorf("expected no fetch timeout, got %v", cfg.FetchTimeout())
	}
	if cfg.RateLimitType != "memory" || cfg.RateLimit != 5 || cfg.RateLimitWindow != 1 {
		t.Errorf("unexpected rate limit defaults %s/%d/%d", cfg.RateLimitType, cfg.RateLimit, cfg.RateLimitWindow)
	}
	if cfg.LogLevel != "info" || !cfg.LogPretty {
		t.Errorf("unexpected log defaults %s/%v", cfg.LogLevel, cfg.LogPretty)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 0 {
		t.Errorf("unexpected redis defaults %s/%d", cfg.RedisAddr, cfg.RedisDB)
	}
}

// TestLoad_FromEnvironment tests that set variables override defaults
func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("SOURCE_TYPE", "Redis")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "2.5")
	t.Setenv("RATE_LIMIT", "20")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("DATASTORE_PATH", "/tmp/countries.csv")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.SourceType != "redis" {
		t.Errorf("expected source type to be lower-cased, got '%s'", cfg.SourceType)
	}
	if cfg.FetchTimeout() != 2500*time.Millisecond {
		t.Errorf("expected 2.5s timeout, got %v", cfg.FetchTimeout())
	}
	if cfg.RateLimit != 20 {
		t.Errorf("expected rate limit 20, got %d", cfg.RateLimit)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.RedisDB)
	}
	if cfg.LogPretty {
		t.Error("expected pretty logging to be disabled")
	}
	if cfg.DatastorePath != "/tmp/countries.csv" {
		t.Errorf("unexpected datastore path %s", cfg.DatastorePath)
	}
}

// TestLoad_InvalidNumbers tests that unparsable values fall back to defaults
func TestLoad_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT", "lots")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "soon")
	t.Setenv("LOG_PRETTY", "maybe")

	cfg := Load()

	if cfg.RateLimit != 5 {
		t.Errorf("expected default rate limit, got %d", cfg.RateLimit)
	}
	if cfg.FetchTimeoutSeconds != 0 {
		t.Errorf("expected default timeout, got %v", cfg.FetchTimeoutSeconds)
	}
	if !cfg.LogPretty {
		t.Error("expected default pretty logging")
	}
}

// TestFetchTimeout_Negative tests that negative values disable the timeout
func TestFetchTimeout_Negative(t *testing.T) {
	cfg := &Config{FetchTimeoutSeconds: -1}

	if cfg.FetchTimeout() != 0 {
		t.Errorf("expected no timeout, got %v", cfg.FetchTimeout())
	}
}
