package providerconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// Key is where the active provider config lives in the KV store.
const Key = "weather_provider"

var validate = validator.New()

// Store is the server side of the remote configuration endpoint: it holds the
// provider the admin selected and its credential.
type Store struct {
	kv store.KV
}

func New(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Get returns the stored config, or the Open-Meteo default when none was set.
func (s *Store) Get(ctx context.Context) (weather.ProviderConfig, error) {
	raw, err := s.kv.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return weather.DefaultProviderConfig(), nil
	}
	if err != nil {
		return weather.ProviderConfig{}, fmt.Errorf("read provider config: %w", err)
	}

	var cfg weather.ProviderConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return weather.ProviderConfig{}, fmt.Errorf("decode provider config: %w", err)
	}
	return cfg, nil
}

// Set validates and stores cfg. WeatherAPI requires a key.
func (s *Store) Set(ctx context.Context, cfg weather.ProviderConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode provider config: %w", err)
	}
	if err := s.kv.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("write provider config: %w", err)
	}
	return nil
}
