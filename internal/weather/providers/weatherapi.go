package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	days    int
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// WeatherAPIOption customises a WeatherAPIProvider.
type WeatherAPIOption func(*WeatherAPIProvider)

// WeatherAPIBaseURL overrides the API root (search.json and forecast.json live under it).
func WeatherAPIBaseURL(u string) WeatherAPIOption {
	return func(p *WeatherAPIProvider) {
		p.baseURL = u
	}
}

func NewWeatherAPIProvider(httpCfg HTTPClientConfig, opts ...WeatherAPIOption) *WeatherAPIProvider {
	p := &WeatherAPIProvider{
		name:    string(weather.ProviderWeatherAPI),
		baseURL: "https://api.weatherapi.com/v1",
		days:    7,
		httpCfg: httpCfg,
		circuit: newCircuit("weatherapi"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithKey returns a copy of p using apiKey. The copy shares p's circuit breaker.
func (p *WeatherAPIProvider) WithKey(apiKey string) *WeatherAPIProvider {
	cp := *p
	cp.apiKey = apiKey
	return &cp
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPISearchResult struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Geocode calls the search endpoint and maps its results onto weather.Location.
func (p *WeatherAPIProvider) Geocode(ctx context.Context, name string) ([]weather.Location, error) {
	if p.apiKey == "" {
		return nil, weather.ErrMissingAPIKey
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", name)

	var results []weatherAPISearchResult
	u := fmt.Sprintf("%s/search.json?%s", p.baseURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, "weatherapi.geocode", u, &results); err != nil {
		return nil, fmt.Errorf("weatherapi geocode: %w", err)
	}

	locs := make([]weather.Location, 0, len(results))
	for _, r := range results {
		locs = append(locs, weather.Location{
			ID:        r.ID,
			Name:      r.Name,
			Country:   r.Country,
			Latitude:  r.Lat,
			Longitude: r.Lon,
		})
	}
	return locs, nil
}

// FetchForecast retrieves a 7-day forecast and normalizes it. A missing key
// is a configuration error and no request is made.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, coords weather.Coordinates) (*weather.Document, error) {
	if p.apiKey == "" {
		return nil, weather.ErrMissingAPIKey
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", strconv.FormatFloat(coords.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("days", strconv.Itoa(p.days))
	values.Set("aqi", "yes")
	values.Set("alerts", "no")

	var payload WeatherAPIForecast
	u := fmt.Sprintf("%s/forecast.json?%s", p.baseURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, "weatherapi.forecast", u, &payload); err != nil {
		return nil, fmt.Errorf("weatherapi forecast: %w", err)
	}

	doc := NormalizeWeatherAPI(&payload)
	if doc == nil {
		return nil, fmt.Errorf("weatherapi forecast: response has no current conditions")
	}
	return doc, nil
}
