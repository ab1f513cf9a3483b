package limiter

import (
	"fmt"
	"strings"

	"github.com/evyataryagoni/countrydir/internal/logger"
)

// LimiterConfig holds configuration for creating a rate limiter
type LimiterConfig struct {
	Type             string  // "memory" or "redis"
	ActionsPerSecond float64 // can be fractional, e.g. 0.2 = one action per 5 seconds

	// Redis-specific config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Logger *logger.Logger
}

// NewLimiter creates a rate limiter based on the configuration.
// The rate must be positive for every limiter type.
func NewLimiter(cfg LimiterConfig) (Limiter, error) {
	if cfg.ActionsPerSecond <= 0 {
		return nil, fmt.Errorf("actions per second must be positive, got %v", cfg.ActionsPerSecond)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "memory", "":
		return NewMemoryLimiter(cfg.ActionsPerSecond), nil

	case "redis":
		l, err := NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ActionsPerSecond, cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis limiter: %w", err)
		}
		return l, nil

	default:
		return nil, fmt.Errorf("unknown rate limiter type: %s (supported: 'memory', 'redis')", cfg.Type)
	}
}
