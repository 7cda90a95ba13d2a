package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/providerconfig"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/telemetry"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	baseLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer baseLogger.Sync()
	logger := baseLogger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitProvider(ctx, cfg.OTelServiceName, cfg.OTelCollectorURL)
	if err != nil {
		logger.Fatalw("failed to init tracing", "error", err)
	}

	kv, closeKV, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalw("failed to open store", "backend", cfg.StoreBackend, "error", err)
	}
	defer closeKV()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	newHTTPCfg := func() providers.HTTPClientConfig {
		return providers.HTTPClientConfig{
			Client:  httpClient,
			Limiter: rate.NewLimiter(rate.Limit(cfg.ProviderRateLimit), cfg.ProviderRateBurst),
		}
	}

	registry := providers.NewRegistry(
		providers.NewOpenMeteoProvider(newHTTPCfg(),
			providers.OpenMeteoForecastURL(cfg.OpenMeteoForecastURL),
			providers.OpenMeteoGeocodingURL(cfg.OpenMeteoGeocodingURL),
			providers.OpenMeteoGeocodeCount(cfg.GeocodeCount),
			providers.OpenMeteoLanguage(cfg.GeocodeLanguage),
		),
		providers.NewWeatherAPIProvider(newHTTPCfg(),
			providers.WeatherAPIBaseURL(cfg.WeatherAPIBaseURL),
		),
	)
	selector := providers.NewSelector(cfg.APIBase, providers.HTTPClientConfig{Client: httpClient}, logger)

	service := weather.NewService(selector, registry, cfg.MinQueryLength, logger)

	app := httpapi.NewApp(httpapi.Deps{
		Service:    service,
		Lookups:    weather.NewLookupTracker(),
		KV:         kv,
		Providers:  providerconfig.New(kv),
		AdminToken: cfg.AdminToken,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("listening", "port", cfg.Port, "store", cfg.StoreBackend, "apiBase", cfg.APIBase)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Warnw("error during shutdown", "error", err)
		}
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorw("server stopped", "error", err)
	}
}

func openStore(ctx context.Context, cfg *config.AppConfig) (store.KV, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rs, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	case config.BackendPostgres:
		ps, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return ps, ps.Close, nil
	case config.BackendMemory:
		return store.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
