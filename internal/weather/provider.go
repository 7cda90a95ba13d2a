package weather

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by providers that need a credential when none is configured.
var ErrMissingAPIKey = errors.New("provider api key is not configured")

// Provider is the strategy pair produced for the active upstream source.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, name string) ([]Location, error)
	FetchForecast(ctx context.Context, coords Coordinates) (*Document, error)
}

// ConfigSource reports which provider is active. Implementations never fail:
// when the answer cannot be determined they return DefaultProviderConfig.
type ConfigSource interface {
	Active(ctx context.Context) ProviderConfig
}

// ProviderFactory is the single dispatch point from configuration to strategy.
type ProviderFactory interface {
	For(cfg ProviderConfig) Provider
}
