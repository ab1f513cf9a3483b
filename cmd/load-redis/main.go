package main

import (
	"context"

	"github.com/evyataryagoni/countrydir/internal/config"
	"github.com/evyataryagoni/countrydir/internal/logger"
	"github.com/evyataryagoni/countrydir/internal/source"
)

// Loads the country CSV fixture into Redis.
// Usage: go run ./cmd/load-redis
func main() {
	appConfig := config.Load()
	log := logger.New(logger.Config{Level: appConfig.LogLevel, Pretty: true}).WithComponent("LoadRedis")

	log.Info().Str("addr", appConfig.RedisAddr).Msg("Connecting to Redis")
	redisSource, err := source.NewRedisSource(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisSource.Close()

	log.Info().Str("path", appConfig.DatastorePath).Msg("Loading countries from CSV")
	count, err := redisSource.LoadFromCSV(context.Background(), appConfig.DatastorePath)
	if err != nil {
		log.Fatal().Err(err).Int("loaded", count).Msg("Failed to load CSV data")
	}

	log.Info().Int("loaded", count).Msg("Data loaded, start the server with SOURCE_TYPE=redis")
}
