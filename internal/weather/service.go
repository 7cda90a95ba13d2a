package weather

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DefaultMinQueryLength is the shortest place name worth sending upstream.
const DefaultMinQueryLength = 2

// Service resolves the active provider on every call and routes lookups to it.
type Service struct {
	config      ConfigSource
	factory     ProviderFactory
	minQueryLen int
	logger      *zap.SugaredLogger
}

// NewService creates a new Service. minQueryLen <= 0 falls back to DefaultMinQueryLength.
func NewService(config ConfigSource, factory ProviderFactory, minQueryLen int, logger *zap.SugaredLogger) *Service {
	if minQueryLen <= 0 {
		minQueryLen = DefaultMinQueryLength
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		config:      config,
		factory:     factory,
		minQueryLen: minQueryLen,
		logger:      logger,
	}
}

// GeocodeCity returns candidate locations for a free-text place name, in the
// provider's ranking order. Failures are logged and collapse to an empty list.
func (s *Service) GeocodeCity(ctx context.Context, name string) []Location {
	query := strings.TrimSpace(name)
	if utf8.RuneCountInString(query) < s.minQueryLen {
		return []Location{}
	}

	provider := s.factory.For(s.config.Active(ctx))

	locs, err := provider.Geocode(ctx, query)
	if err != nil {
		s.logger.Warnw("geocode failed", "provider", provider.Name(), "query", query, "error", err)
		return []Location{}
	}
	if locs == nil {
		return []Location{}
	}
	return locs
}

// FetchWeather returns the canonical forecast for coords, or nil when it could
// not be obtained. A nil result is an error state for the caller, not a cue to retry.
func (s *Service) FetchWeather(ctx context.Context, coords Coordinates) *Document {
	provider := s.factory.For(s.config.Active(ctx))

	doc, err := provider.FetchForecast(ctx, coords)
	if err != nil {
		s.logger.Warnw("forecast fetch failed",
			"provider", provider.Name(),
			"latitude", coords.Latitude,
			"longitude", coords.Longitude,
			"error", err,
		)
		return nil
	}
	return doc
}
