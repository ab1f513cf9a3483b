package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/countrydir/internal/config"
	"github.com/evyataryagoni/countrydir/internal/handler"
	"github.com/evyataryagoni/countrydir/internal/limiter"
	"github.com/evyataryagoni/countrydir/internal/logger"
	"github.com/evyataryagoni/countrydir/internal/metrics"
	"github.com/evyataryagoni/countrydir/internal/router"
	"github.com/evyataryagoni/countrydir/internal/source"
	"github.com/evyataryagoni/countrydir/internal/store"
)

func main() {
	appConfig := config.Load()

	appLogger := setupLogger(appConfig)
	metricsCollector := setupMetrics(appLogger)

	countrySource := setupSource(appConfig, metricsCollector, appLogger)

	actionLimiter := setupRateLimiter(appConfig, appLogger)
	defer actionLimiter.Close()

	countryStore := store.NewCountryStore(countrySource, metricsCollector, appLogger)
	defer countryStore.Close()

	stopWatching := watchTransitions(countryStore, appLogger)
	defer stopWatching()

	// Initial load, same as opening the page
	go func() {
		if err := countryStore.LoadAll(context.Background()); err != nil {
			appLogger.Warn().Err(err).Msg("Initial country load failed")
		}
	}()

	countryHandler := handler.NewCountryHandler(countryStore, appLogger)
	appRouter := router.SetupRouter(countryHandler, actionLimiter, metricsCollector, nil, appLogger)

	startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  appConfig.LogLevel,
		Pretty: appConfig.LogPretty,
	})

	appLogger.Info().Msg("Starting country directory server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("source_type", appConfig.SourceType).
		Str("country_api_url", appConfig.CountryAPIURL).
		Dur("fetch_timeout", appConfig.FetchTimeout()).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Msg("Configuration loaded")

	return appLogger
}

// setupSource initializes the country source based on configuration.
// Supports the HTTP API, a CSV fixture, MySQL and Redis.
func setupSource(appConfig *config.Config, m *metrics.Metrics, log *logger.Logger) source.Source {
	var countrySource source.Source

	switch appConfig.SourceType {
	case "http":
		countrySource = source.NewHTTPSource(source.HTTPConfig{
			BaseURL: appConfig.CountryAPIURL,
			Timeout: appConfig.FetchTimeout(),
			Logger:  log,
		})

	case "csv":
		csvSource, err := source.NewCSVSource(appConfig.DatastorePath, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize CSV source")
		}
		countrySource = csvSource

	case "mysql":
		mysqlSource, err := source.NewMySQLSource(appConfig.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize MySQL source")
		}
		countrySource = mysqlSource

	case "redis":
		redisSource, err := source.NewRedisSource(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis source")
		}
		loadRedisDataIfEmpty(redisSource, appConfig.DatastorePath, log)
		countrySource = redisSource

	default:
		log.Fatal().Str("type", appConfig.SourceType).Msg("Unknown source type")
	}

	log.Info().Str("type", appConfig.SourceType).Msg("Country source initialized")
	return source.Instrument(countrySource, appConfig.SourceType, m)
}

// loadRedisDataIfEmpty seeds an empty Redis from the CSV fixture
func loadRedisDataIfEmpty(redisSource *source.RedisSource, csvPath string, log *logger.Logger) {
	ctx := context.Background()
	isEmpty, err := redisSource.IsEmpty(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to check if Redis is empty")
		return
	}
	if !isEmpty {
		return
	}

	log.Info().Str("path", csvPath).Msg("Redis is empty, loading countries from CSV")
	count, err := redisSource.LoadFromCSV(ctx, csvPath)
	if err != nil {
		log.Warn().Err(err).Int("loaded", count).Msg("Failed to load sample data")
		return
	}
	log.Info().Int("loaded", count).Msg("Countries loaded into Redis")
}

// setupRateLimiter initializes the action limiter
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	window := max(appConfig.RateLimitWindow, 1)
	effectiveRate := float64(appConfig.RateLimit) / float64(window)

	actionLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:             appConfig.RateLimitType,
		ActionsPerSecond: effectiveRate,
		RedisAddr:        appConfig.RedisAddr,
		RedisPassword:    appConfig.RedisPassword,
		RedisDB:          appConfig.RedisDB,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Float64("actions_per_second", effectiveRate).
		Msg("Rate limiter initialized")

	return actionLimiter
}

// setupMetrics initializes the Prometheus metrics collector
func setupMetrics(log *logger.Logger) *metrics.Metrics {
	metricsCollector := metrics.New(nil)
	log.Info().Msg("Metrics initialized")
	return metricsCollector
}

// watchTransitions logs every store state change at debug level
func watchTransitions(countryStore *store.CountryStore, log *logger.Logger) func() {
	updates, unsubscribe := countryStore.Subscribe()
	watchLog := log.WithComponent("StateWatcher")

	go func() {
		for snap := range updates {
			watchLog.Debug().
				Str("status", string(snap.Status)).
				Uint64("generation", snap.RequestGeneration).
				Int("results", len(snap.Results)).
				Str("region", string(snap.SelectedRegion)).
				Str("error_message", snap.ErrorMessage).
				Msg("State changed")
		}
	}()

	return unsubscribe
}

// startServer serves until SIGINT or SIGTERM, then shuts down gracefully
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", appConfig.Port).
			Str("state", "http://localhost:"+appConfig.Port+"/v1/state").
			Str("health_check", "http://localhost:"+appConfig.Port+"/health").
			Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
			Msg("Server is running")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
