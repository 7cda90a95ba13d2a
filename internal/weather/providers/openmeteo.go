package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	openMeteoCurrentParams = "temperature_2m,relativehumidity_2m,apparent_temperature,is_day,weathercode,windspeed_10m,pressure_msl,visibility,precipitation"
	openMeteoHourlyParams  = "temperature_2m,weathercode,is_day,uv_index,relativehumidity_2m"
	openMeteoDailyParams   = "weathercode,temperature_2m_max,temperature_2m_min,sunrise,sunset,uv_index_max,precipitation_probability_max,windspeed_10m_max"
)

// OpenMeteoProvider implements weather.Provider for Open-Meteo. It needs no credential.
type OpenMeteoProvider struct {
	name         string
	forecastURL  string
	geocodingURL string
	count        int
	language     string
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker
}

// OpenMeteoOption customises an OpenMeteoProvider.
type OpenMeteoOption func(*OpenMeteoProvider)

// OpenMeteoForecastURL overrides the forecast endpoint.
func OpenMeteoForecastURL(u string) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		p.forecastURL = u
	}
}

// OpenMeteoGeocodingURL overrides the geocoding search endpoint.
func OpenMeteoGeocodingURL(u string) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		p.geocodingURL = u
	}
}

// OpenMeteoGeocodeCount sets how many candidates a search asks for.
func OpenMeteoGeocodeCount(n int) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		if n > 0 {
			p.count = n
		}
	}
}

// OpenMeteoLanguage sets the language of place names in search results.
func OpenMeteoLanguage(lang string) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		if lang != "" {
			p.language = lang
		}
	}
}

func NewOpenMeteoProvider(httpCfg HTTPClientConfig, opts ...OpenMeteoOption) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		name:         string(weather.ProviderOpenMeteo),
		forecastURL:  "https://api.open-meteo.com/v1/forecast",
		geocodingURL: "https://geocoding-api.open-meteo.com/v1/search",
		count:        5,
		language:     "en",
		httpCfg:      httpCfg,
		circuit:      newCircuit("openmeteo"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Geocode searches Open-Meteo's geocoding API. Results are already in the
// canonical location shape and keep the upstream order.
func (p *OpenMeteoProvider) Geocode(ctx context.Context, name string) ([]weather.Location, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", strconv.Itoa(p.count))
	values.Set("language", p.language)
	values.Set("format", "json")

	var payload struct {
		Results []weather.Location `json:"results"`
	}
	u := fmt.Sprintf("%s?%s", p.geocodingURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, "openmeteo.geocode", u, &payload); err != nil {
		return nil, fmt.Errorf("openmeteo geocode: %w", err)
	}
	return payload.Results, nil
}

// FetchForecast retrieves current, hourly and daily data for coords.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, coords weather.Coordinates) (*weather.Document, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("current", openMeteoCurrentParams)
	values.Set("hourly", openMeteoHourlyParams)
	values.Set("daily", openMeteoDailyParams)
	values.Set("timezone", "auto")

	var doc weather.Document
	u := fmt.Sprintf("%s?%s", p.forecastURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, "openmeteo.forecast", u, &doc); err != nil {
		return nil, fmt.Errorf("openmeteo forecast: %w", err)
	}
	return NormalizeOpenMeteo(&doc), nil
}

// NormalizeOpenMeteo is the identity: Open-Meteo's response is the canonical shape.
func NormalizeOpenMeteo(doc *weather.Document) *weather.Document {
	return doc
}
