package providers

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Selector asks the remote configuration endpoint which provider is active.
type Selector struct {
	endpoint string
	httpCfg  HTTPClientConfig
	logger   *zap.SugaredLogger
}

// NewSelector creates a Selector reading {apiBase}/api/weather-key.
func NewSelector(apiBase string, httpCfg HTTPClientConfig, logger *zap.SugaredLogger) *Selector {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Selector{
		endpoint: strings.TrimRight(apiBase, "/") + "/api/weather-key",
		httpCfg:  httpCfg,
		logger:   logger,
	}
}

// Active makes a single request for the current provider config. Any failure
// yields the Open-Meteo default so weather stays available when the backend is down.
func (s *Selector) Active(ctx context.Context) weather.ProviderConfig {
	var payload struct {
		Provider string `json:"provider"`
		Key      string `json:"key"`
	}
	if err := getJSON(ctx, s.httpCfg, nil, "remote-config.active", s.endpoint, &payload); err != nil {
		s.logger.Warnw("remote provider config unavailable, using default", "endpoint", s.endpoint, "error", err)
		return weather.DefaultProviderConfig()
	}

	kind, ok := weather.ParseProviderKind(payload.Provider)
	if !ok {
		s.logger.Warnw("unknown provider in remote config, using default", "provider", payload.Provider)
		return weather.DefaultProviderConfig()
	}
	return weather.ProviderConfig{Provider: kind, APIKey: payload.Key}
}

var _ weather.ConfigSource = (*Selector)(nil)

// StaticConfig is a ConfigSource that always reports the same provider.
type StaticConfig weather.ProviderConfig

func (c StaticConfig) Active(context.Context) weather.ProviderConfig {
	return weather.ProviderConfig(c)
}
