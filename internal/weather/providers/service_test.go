package providers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func TestFetchWeatherWeatherAPIWithoutKey(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, weatherAPIForecastJSON)
	registry := NewRegistry(
		NewOpenMeteoProvider(testHTTPConfig(up.Client()), OpenMeteoForecastURL(up.URL)),
		NewWeatherAPIProvider(testHTTPConfig(up.Client()), WeatherAPIBaseURL(up.URL)),
	)
	svc := weather.NewService(StaticConfig{Provider: weather.ProviderWeatherAPI}, registry, 0, nil)

	doc := svc.FetchWeather(context.Background(), weather.Coordinates{Latitude: 21, Longitude: 105})
	assert.Nil(t, doc)
	assert.Equal(t, int32(0), up.calls.Load())
}

func TestFetchWeatherRoutesThroughRemoteConfig(t *testing.T) {
	forecast := newFakeUpstream(t, http.StatusOK, weatherAPIForecastJSON)
	remote := newFakeUpstream(t, http.StatusOK, `{"provider": "WeatherAPI", "key": "abc"}`)

	registry := NewRegistry(
		NewOpenMeteoProvider(testHTTPConfig(forecast.Client()), OpenMeteoForecastURL(forecast.URL+"/om")),
		NewWeatherAPIProvider(testHTTPConfig(forecast.Client()), WeatherAPIBaseURL(forecast.URL)),
	)
	selector := NewSelector(remote.URL, testHTTPConfig(remote.Client()), nil)
	svc := weather.NewService(selector, registry, 0, nil)

	doc := svc.FetchWeather(context.Background(), weather.Coordinates{Latitude: 21, Longitude: 105})
	require.NotNil(t, doc)
	assert.Equal(t, "/forecast.json", forecast.lastPath.Load())
	assert.Equal(t, int32(1), remote.calls.Load())
}

func TestFetchWeatherFallsBackToOpenMeteoWhenConfigIsDown(t *testing.T) {
	forecast := newFakeUpstream(t, http.StatusOK, `{"current": {"temperature_2m": 18, "time": "2024-05-01T08:00"}}`)
	remote := newFakeUpstream(t, http.StatusInternalServerError, `{}`)

	registry := NewRegistry(
		NewOpenMeteoProvider(testHTTPConfig(forecast.Client()), OpenMeteoForecastURL(forecast.URL+"/v1/forecast")),
		NewWeatherAPIProvider(testHTTPConfig(forecast.Client()), WeatherAPIBaseURL(forecast.URL)),
	)
	svc := weather.NewService(NewSelector(remote.URL, testHTTPConfig(remote.Client()), nil), registry, 0, nil)

	doc := svc.FetchWeather(context.Background(), weather.Coordinates{Latitude: 48.85, Longitude: 2.35})
	require.NotNil(t, doc)
	assert.Equal(t, 18.0, doc.Current.Temperature)
	assert.Equal(t, "/v1/forecast", forecast.lastPath.Load())
}

func TestGeocodeCityCollapsesErrorsToEmptyList(t *testing.T) {
	up := newFakeUpstream(t, http.StatusBadGateway, `{}`)
	registry := NewRegistry(
		NewOpenMeteoProvider(testHTTPConfig(up.Client()), OpenMeteoGeocodingURL(up.URL)),
		NewWeatherAPIProvider(testHTTPConfig(up.Client()), WeatherAPIBaseURL(up.URL)),
	)
	svc := weather.NewService(StaticConfig{Provider: weather.ProviderOpenMeteo}, registry, 0, nil)

	locs := svc.GeocodeCity(context.Background(), "Paris")
	assert.NotNil(t, locs)
	assert.Empty(t, locs)
	assert.Equal(t, int32(1), up.calls.Load())
}
