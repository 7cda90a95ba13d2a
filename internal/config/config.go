package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type AppConfig struct {
	Port string

	// APIBase is where the remote provider config is read from. It defaults
	// to this service, which also serves /api/weather-key.
	APIBase    string
	AdminToken string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// Outbound pacing shared by each provider client.
	ProviderRateLimit float64 // requests per second
	ProviderRateBurst int

	MinQueryLength  int
	GeocodeCount    int
	GeocodeLanguage string

	OpenMeteoForecastURL  string
	OpenMeteoGeocodingURL string
	WeatherAPIBaseURL     string

	StoreBackend string
	RedisAddr    string
	RedisPrefix  string
	DatabaseURL  string

	OTelServiceName  string
	OTelCollectorURL string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.APIBase = strings.TrimRight(getenvDefault("API_BASE", "http://127.0.0.1:"+cfg.Port), "/")
	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.ProviderRateLimit = getenvFloat("PROVIDER_RATE_LIMIT", 10)
	cfg.ProviderRateBurst = getenvInt("PROVIDER_RATE_BURST", 10)
	if cfg.ProviderRateLimit <= 0 || cfg.ProviderRateBurst <= 0 {
		return nil, fmt.Errorf("PROVIDER_RATE_LIMIT and PROVIDER_RATE_BURST must be positive")
	}

	cfg.MinQueryLength = getenvInt("MIN_QUERY_LENGTH", 2)
	cfg.GeocodeCount = getenvInt("GEOCODE_COUNT", 5)
	cfg.GeocodeLanguage = getenvDefault("GEOCODE_LANGUAGE", "en")

	cfg.OpenMeteoForecastURL = getenvDefault("OPEN_METEO_FORECAST_URL", "https://api.open-meteo.com/v1/forecast")
	cfg.OpenMeteoGeocodingURL = getenvDefault("OPEN_METEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search")
	cfg.WeatherAPIBaseURL = strings.TrimRight(getenvDefault("WEATHERAPI_BASE_URL", "https://api.weatherapi.com/v1"), "/")

	cfg.StoreBackend = strings.ToLower(getenvDefault("STORE_BACKEND", BackendMemory))
	cfg.RedisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisPrefix = getenvDefault("REDIS_PREFIX", "weather-lookup:")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	switch cfg.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store backend")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND: %s", cfg.StoreBackend)
	}

	cfg.OTelServiceName = getenvDefault("OTEL_SERVICE_NAME", "weather-lookup")
	cfg.OTelCollectorURL = os.Getenv("OTEL_COLLECTOR_URL")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
