package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Catalog sources
	FeedURL string
	UseFeed bool // CATALOG_USE_FEED=true fetches from the remote feed instead of the built-in registry
	DataDir string

	// Refresh
	RefreshInterval time.Duration
	CatalogTTL      time.Duration

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Recommendation tuning
	MaxRecommendations int
	DefaultPointValue  float64 // cents per point when a program has no valuation
	AnnualFeeWeight    float64 // reserved for fee-adjusted ranking, 0 disables

	// Observability
	OTLPEndpoint string

	// Admin auth
	AdminJWTSecret string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FeedURL: getEnv("CATALOG_FEED_URL", "http://localhost:8091"),
		UseFeed: getEnv("CATALOG_USE_FEED", "false") == "true",
		DataDir: getEnv("DATA_DIR", "data"),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 24*time.Hour),
		CatalogTTL:      getEnvDuration("CATALOG_TTL", 7*24*time.Hour),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		MaxRecommendations: getEnvInt("MAX_RECOMMENDATIONS", 5),
		DefaultPointValue:  getEnvFloat("DEFAULT_POINT_VALUE", 1.0),
		AnnualFeeWeight:    getEnvFloat("ANNUAL_FEE_WEIGHT", 0),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", "cardscout-default-dev-secret-change-me"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
