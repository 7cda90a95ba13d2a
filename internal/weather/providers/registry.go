package providers

import (
	"github.com/i474232898/weather-lookup/internal/weather"
)

// Registry holds one long-lived client per provider so circuit breaker state
// survives across lookups, and hands out the strategy for the active config.
type Registry struct {
	openMeteo  *OpenMeteoProvider
	weatherAPI *WeatherAPIProvider
}

// NewRegistry creates a Registry from already constructed provider clients.
func NewRegistry(openMeteo *OpenMeteoProvider, weatherAPI *WeatherAPIProvider) *Registry {
	return &Registry{
		openMeteo:  openMeteo,
		weatherAPI: weatherAPI,
	}
}

// For returns the provider strategy for cfg. Unknown providers fall back to Open-Meteo.
func (r *Registry) For(cfg weather.ProviderConfig) weather.Provider {
	switch cfg.Provider {
	case weather.ProviderWeatherAPI:
		return r.weatherAPI.WithKey(cfg.APIKey)
	default:
		return r.openMeteo
	}
}

var _ weather.ProviderFactory = (*Registry)(nil)
