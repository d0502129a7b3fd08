package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tair/restaurant-discovery/pkg/database"
)

// Config holds the service configuration
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string

	Database database.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string

	JWTSecret string
	JWTTTL    time.Duration

	JaegerEndpoint   string
	TraceSampleRatio float64

	RateLimitRequests int
	RateLimitWindow   time.Duration
	CacheTTL          time.Duration
	ResetTokenTTL     time.Duration
	RequestTimeout    time.Duration

	LoginURL           string
	CORSAllowedOrigins []string
}

// IsDevelopment reports whether pretty console logging should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads an optional .env file and then the process environment
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", "restaurant-service"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),

		Database: database.Config{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "restaurantdb"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KafkaBrokers: getEnvList("KAFKA_BROKERS", nil),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		JaegerEndpoint:   getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		TraceSampleRatio: getEnvFloat("TRACE_SAMPLE_RATIO", 1),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		CacheTTL:          getEnvDuration("CACHE_TTL", 5*time.Minute),
		ResetTokenTTL:     getEnvDuration("RESET_TOKEN_TTL", time.Hour),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		LoginURL:           getEnv("LOGIN_URL", "/auth/login"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
