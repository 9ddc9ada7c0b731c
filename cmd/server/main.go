package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/ipscope/internal/config"
	"github.com/evyataryagoni/ipscope/internal/handler"
	"github.com/evyataryagoni/ipscope/internal/limiter"
	"github.com/evyataryagoni/ipscope/internal/logger"
	"github.com/evyataryagoni/ipscope/internal/metrics"
	"github.com/evyataryagoni/ipscope/internal/provider"
	"github.com/evyataryagoni/ipscope/internal/router"
	"github.com/evyataryagoni/ipscope/internal/service"
	"github.com/evyataryagoni/ipscope/internal/store"
	"github.com/pires/go-proxyproto"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	appConfig := config.Load()
	appLogger := setupLogger(appConfig)

	if err := run(appConfig, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
}

// run wires the application and serves until shutdown
func run(appConfig *config.Config, appLogger *logger.Logger) error {
	geoProvider, err := setupProvider(appConfig, appLogger)
	if err != nil {
		return err
	}

	cache, err := setupDataStore(appConfig, appLogger)
	if err != nil {
		geoProvider.Close()
		return err
	}

	// From here on the service owns the provider and the cache
	metricsCollector := metrics.New(prometheus.DefaultRegisterer)
	lookupService := service.NewLookupService(cache, geoProvider, metricsCollector, appLogger)
	defer lookupService.Close()

	rateLimiter, err := setupRateLimiter(appConfig, appLogger)
	if err != nil {
		return err
	}
	defer rateLimiter.Close()

	appRouter := router.SetupRouter(router.Options{
		Handler:     handler.NewLookupHandler(lookupService, appLogger),
		Limiter:     rateLimiter,
		Metrics:     metricsCollector,
		Gatherer:    prometheus.DefaultGatherer,
		Logger:      appLogger,
		CORSOrigins: appConfig.CORSAllowedOrigins,
	})

	return startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger and logs the effective configuration
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  appConfig.LogLevel,
		Pretty: appConfig.LogPretty,
	})

	appLogger.Info().Msg("Starting ipscope server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Bool("proxy_protocol", appConfig.ProxyProtocol).
		Str("provider_type", appConfig.ProviderType).
		Dur("provider_timeout", appConfig.ProviderTimeout).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Str("datastore_type", appConfig.DatastoreType).
		Dur("cache_ttl", appConfig.CacheTTL).
		Msg("Configuration loaded")

	return appLogger
}

// setupProvider opens the geolocation provider
func setupProvider(appConfig *config.Config, log *logger.Logger) (provider.Provider, error) {
	geoProvider, err := provider.NewProvider(provider.Config{
		Type:       appConfig.ProviderType,
		BaseURL:    appConfig.ProviderBaseURL,
		Token:      appConfig.ProviderToken,
		Timeout:    appConfig.ProviderTimeout,
		CityDBPath: appConfig.MMDBCityPath,
		ASNDBPath:  appConfig.MMDBASNPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	log.Info().Str("provider", geoProvider.Name()).Msg("Provider initialized")
	return geoProvider, nil
}

// setupDataStore initializes the response cache
// Supports CSV (in memory), MySQL, and Redis backends
func setupDataStore(appConfig *config.Config, log *logger.Logger) (store.Store, error) {
	switch appConfig.DatastoreType {
	case "csv":
		csvStore, err := store.NewCSVStore(appConfig.DatastorePath, appConfig.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize CSV store: %w", err)
		}
		log.Info().Int("entries", csvStore.Len()).Msg("CSV store initialized")
		return csvStore, nil

	case "mysql":
		mysqlStore, err := store.NewMySQLStore(appConfig.MySQLDSN, appConfig.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MySQL store: %w", err)
		}
		log.Info().Msg("MySQL store initialized")
		return mysqlStore, nil

	case "redis":
		redisStore, err := store.NewRedisStore(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB, appConfig.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis store: %w", err)
		}
		log.Info().Str("addr", appConfig.RedisAddr).Msg("Redis store initialized")

		loadRedisDataIfEmpty(redisStore, appConfig.DatastorePath, log)
		return redisStore, nil
	}

	return nil, fmt.Errorf("unknown datastore type: %s (supported: 'csv', 'mysql', 'redis')", appConfig.DatastoreType)
}

// loadRedisDataIfEmpty seeds an empty Redis cache from the CSV file
func loadRedisDataIfEmpty(redisStore *store.RedisStore, csvPath string, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	isEmpty, err := redisStore.IsEmpty(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to check if Redis is empty")
		return
	}
	if !isEmpty || csvPath == "" {
		return
	}

	count, err := redisStore.LoadFromCSV(ctx, csvPath)
	if err != nil {
		log.Warn().Err(err).Str("path", csvPath).Msg("Failed to load seed data")
		return
	}
	log.Info().Int("entries", count).Str("path", csvPath).Msg("Redis cache seeded")
}

// setupRateLimiter initializes the per-client rate limiter
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) (limiter.Limiter, error) {
	window := time.Duration(appConfig.RateLimitWindow) * time.Second

	rateLimiter, err := limiter.NewLimiter(limiter.Config{
		Type:          appConfig.RateLimitType,
		Limit:         appConfig.RateLimit,
		Window:        window,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Int("limit", appConfig.RateLimit).
		Dur("window", window).
		Msg("Rate limiter initialized")

	return rateLimiter, nil
}

// startServer serves until SIGINT/SIGTERM, then drains in-flight requests
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) error {
	ln, err := net.Listen("tcp", ":"+appConfig.Port)
	if err != nil {
		return err
	}

	// Behind a TCP load balancer the client address arrives in a PROXY header
	if appConfig.ProxyProtocol {
		ln = &proxyproto.Listener{Listener: ln}
	}

	srv := &http.Server{
		Handler:           appRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	log.Info().
		Str("port", appConfig.Port).
		Str("api_endpoint", "http://localhost:"+appConfig.Port+"/v1/lookup?ip=<ip>").
		Str("self_endpoint", "http://localhost:"+appConfig.Port+"/v1/lookup/self").
		Str("health_check", "http://localhost:"+appConfig.Port+"/health").
		Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
		Msg("Server is running")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
