package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/tair/restaurant-discovery/api/docs"
	"github.com/tair/restaurant-discovery/internal/account"
	accountHTTP "github.com/tair/restaurant-discovery/internal/account/delivery/http"
	accountRepository "github.com/tair/restaurant-discovery/internal/account/repository"
	"github.com/tair/restaurant-discovery/internal/account/usecase/command"
	"github.com/tair/restaurant-discovery/internal/config"
	"github.com/tair/restaurant-discovery/internal/restaurant"
	"github.com/tair/restaurant-discovery/internal/restaurant/cache"
	restaurantHTTP "github.com/tair/restaurant-discovery/internal/restaurant/delivery/http"
	restaurantRepository "github.com/tair/restaurant-discovery/internal/restaurant/repository"
	"github.com/tair/restaurant-discovery/kafka"
	"github.com/tair/restaurant-discovery/pkg/auth"
	"github.com/tair/restaurant-discovery/pkg/database"
	"github.com/tair/restaurant-discovery/pkg/logger"
	"github.com/tair/restaurant-discovery/pkg/middleware"
	"github.com/tair/restaurant-discovery/pkg/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting restaurant service")

	// Initialize tracing
	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.ServiceName,
		JaegerEndpoint: cfg.JaegerEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Tracing disabled")
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Users first: reviews and saved lists reference them
	if err := accountRepository.AutoMigrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run account migrations")
	}
	if err := restaurantRepository.AutoMigrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run restaurant migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := kafka.NewEventPublisher(cfg.KafkaBrokers)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Kafka unavailable, events are disabled")
		publisher = kafka.NoopPublisher{}
	}
	defer publisher.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authn := middleware.NewAuthenticator(tokens, cfg.LoginURL)

	var detailCache *cache.DetailCache
	var writeLimiter, authLimiter *middleware.RateLimiter
	if redisClient != nil {
		detailCache = cache.NewDetailCache(redisClient, cfg.CacheTTL)
		writeLimiter = middleware.NewRateLimiter(redisClient, "restaurant-writes", cfg.RateLimitRequests, cfg.RateLimitWindow)
		authLimiter = middleware.NewRateLimiter(redisClient, "auth", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	// Initialize handlers with Wire DI
	restaurantHandler, err := restaurant.InitializeHTTPHandler(db, detailCache, publisher, authn, writeLimiter, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize restaurant handler")
	}

	accountHandler, err := account.InitializeHTTPHandler(
		db,
		redisClient,
		publisher,
		tokens,
		authn,
		authLimiter,
		command.ResetTokenTTL(cfg.ResetTokenTTL),
		accountHTTP.CookieSecure(!cfg.IsDevelopment()),
		prometheus.DefaultRegisterer,
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize account handler")
	}

	server := newHTTPServer(cfg, restaurantHandler, accountHandler, sqlDB, redisClient)

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger_endpoint", "/swagger/index.html").
			Msg("HTTP server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if tp != nil {
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to flush traces")
		}
	}

	logger.Logger.Info().Msg("Server exited")
}

// newRedisClient returns nil when redis is unreachable; caching, rate
// limiting and password resets are then disabled.
func newRedisClient(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, running without cache")
		client.Close()
		return nil
	}

	logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
	return client
}

func newHTTPServer(
	cfg *config.Config,
	restaurantHandler *restaurantHTTP.RestaurantHandler,
	accountHandler *accountHTTP.AccountHandler,
	db *sql.DB,
	redisClient *redis.Client,
) *http.Server {
	router := mux.NewRouter()

	mwConfig := middleware.DefaultMiddlewareConfig(cfg.ServiceName, cfg.CORSAllowedOrigins)
	mwConfig.TimeoutDuration = cfg.RequestTimeout
	middleware.RegisterMiddlewares(router, mwConfig)

	// Register routes
	restaurantHandler.RegisterRoutes(router)
	accountHandler.RegisterRoutes(router)

	// Health check endpoint
	restaurantHTTP.RegisterHealthCheck(router, db, redisClient)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	restaurantHTTP.RegisterSwaggerDocs(router)

	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           middleware.SetupCORS(mwConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
