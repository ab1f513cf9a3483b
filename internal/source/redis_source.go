package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/evyataryagoni/countrydir/internal/logger"
	"github.com/evyataryagoni/countrydir/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	countryKeyPrefix = "country:"
	// indexKey is a sorted set of country names; equal scores keep it in name order.
	indexKey = "countries:index"
)

// RedisSource implements Source using Redis
//
// Key layout:
//   - country:<name>   JSON-encoded models.Country
//   - countries:index  sorted set of every stored name
type RedisSource struct {
	client *redis.Client
}

// NewRedisSource creates a new Redis source and checks the connection
func NewRedisSource(addr, password string, db int) (*RedisSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSource{client: client}, nil
}

func countryKey(name string) string {
	return countryKeyPrefix + name
}

// ListAll returns every stored country in name order
func (s *RedisSource) ListAll(ctx context.Context) ([]models.Country, error) {
	names, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: Redis query failed: %w", ErrUnavailable, err)
	}
	if len(names) == 0 {
		return []models.Country{}, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = countryKey(name)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: Redis query failed: %w", ErrUnavailable, err)
	}

	countries := make([]models.Country, 0, len(values))
	for i, v := range values {
		// Index entries whose value was deleted are skipped
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var country models.Country
		if err := json.Unmarshal([]byte(raw), &country); err != nil {
			return nil, fmt.Errorf("%w: failed to decode %s: %w", ErrUnavailable, keys[i], err)
		}
		countries = append(countries, country)
	}
	return countries, nil
}

// FindByName filters the full list by substring
func (s *RedisSource) FindByName(ctx context.Context, query string) ([]models.Country, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(c models.Country) bool { return matchesName(c, query) }), nil
}

// FindByFullName reads a single key
func (s *RedisSource) FindByFullName(ctx context.Context, name string) ([]models.Country, error) {
	val, err := s.client.Get(ctx, countryKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Country{}, nil
		}
		return nil, fmt.Errorf("%w: Redis query failed: %w", ErrUnavailable, err)
	}

	var country models.Country
	if err := json.Unmarshal([]byte(val), &country); err != nil {
		return nil, fmt.Errorf("%w: failed to decode country: %w", ErrUnavailable, err)
	}
	return []models.Country{country}, nil
}

// ListByRegion filters the full list by region
func (s *RedisSource) ListByRegion(ctx context.Context, region models.Region) ([]models.Country, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(c models.Country) bool { return matchesRegion(c, region) }), nil
}

// Set adds or replaces one country and indexes its name
func (s *RedisSource) Set(ctx context.Context, country models.Country) error {
	data, err := json.Marshal(country)
	if err != nil {
		return fmt.Errorf("failed to encode country: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, countryKey(country.Name), data, 0)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: 0, Member: country.Name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

// LoadFromCSV copies every country of a CSV fixture into Redis
// and returns how many were stored
func (s *RedisSource) LoadFromCSV(ctx context.Context, csvPath string) (int, error) {
	csvSource, err := NewCSVSource(csvPath, logger.NewDefault())
	if err != nil {
		return 0, fmt.Errorf("failed to load CSV: %w", err)
	}
	defer csvSource.Close()

	count := 0
	for _, country := range csvSource.data {
		if err := s.Set(ctx, country); err != nil {
			return count, fmt.Errorf("failed to store country %s: %w", country.Name, err)
		}
		count++
	}
	return count, nil
}

// IsEmpty reports whether no country has been indexed yet
func (s *RedisSource) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.client.ZCard(ctx, indexKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check Redis index: %w", err)
	}
	return n == 0, nil
}

// Close closes the Redis connection
func (s *RedisSource) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
