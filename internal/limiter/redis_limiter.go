package limiter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/evyataryagoni/countrydir/internal/logger"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces limiter counters from country keys in the same database
const redisKeyPrefix = "ratelimit:actions:"

// fixedWindowScript increments the counter of the current window and sets its
// expiry on the first hit, atomically.
// KEYS[1] = counter key, ARGV[1] = TTL in seconds. Returns the new count.
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
end
return current
`)

// RedisLimiter counts actions per client in fixed windows stored in Redis,
// so several server instances share one allowance.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
	logger *logger.Logger
}

// NewRedisLimiter connects to Redis and allows actionsPerSecond per client.
// Rates below one use a longer window: 0.2 actions/s allows one action per 5s.
func NewRedisLimiter(addr, password string, db int, actionsPerSecond float64, log *logger.Logger) (*RedisLimiter, error) {
	if actionsPerSecond <= 0 {
		return nil, fmt.Errorf("actions per second must be positive, got %v", actionsPerSecond)
	}
	if log == nil {
		log = logger.NewDefault()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	window := time.Second
	if actionsPerSecond < 1.0 {
		window = time.Duration(float64(time.Second) / actionsPerSecond).Round(time.Second)
	}

	return &RedisLimiter{
		client: client,
		limit:  int64(math.Ceil(actionsPerSecond * window.Seconds())),
		window: window,
		now:    time.Now,
		logger: log.WithComponent("RedisLimiter"),
	}, nil
}

// Allow implements Limiter. Redis failures let the action through.
func (l *RedisLimiter) Allow(key string) bool {
	windowSeconds := int64(l.window / time.Second)
	windowID := l.now().Unix() / windowSeconds
	counterKey := fmt.Sprintf("%s%s:%d", redisKeyPrefix, key, windowID)

	ctx := context.Background()
	count, err := fixedWindowScript.Run(ctx, l.client, []string{counterKey}, windowSeconds*2).Int64()
	if err != nil {
		l.logger.Warn().Err(err).Str("client", key).Msg("Rate limiter unavailable, allowing action")
		return true
	}

	return count <= l.limit
}

// Close closes the Redis connection
func (l *RedisLimiter) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}
