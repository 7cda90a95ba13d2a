package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// fakeUpstream serves a fixed body and counts requests.
type fakeUpstream struct {
	*httptest.Server
	calls    atomic.Int32
	lastPath atomic.Value
	lastQS   atomic.Value
}

func newFakeUpstream(t *testing.T, status int, body string) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.lastPath.Store(r.URL.Path)
		f.lastQS.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.Close)
	return f
}

func testHTTPConfig(client *http.Client) HTTPClientConfig {
	return HTTPClientConfig{Client: client, Limiter: rate.NewLimiter(rate.Inf, 1)}
}

func TestOpenMeteoGeocode(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, `{"results": [
		{"id": 1581130, "name": "Hanoi", "country": "Vietnam", "latitude": 21.0245, "longitude": 105.84117, "timezone": "Asia/Bangkok"},
		{"id": 4883207, "name": "Hanoi", "country": "United States", "latitude": 41.1, "longitude": -87.9}
	]}`)

	p := NewOpenMeteoProvider(testHTTPConfig(up.Client()),
		OpenMeteoGeocodingURL(up.URL+"/v1/search"),
		OpenMeteoGeocodeCount(2),
		OpenMeteoLanguage("vi"),
	)

	locs, err := p.Geocode(context.Background(), "Hanoi")
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, weather.Location{ID: 1581130, Name: "Hanoi", Country: "Vietnam", Latitude: 21.0245, Longitude: 105.84117}, locs[0])
	assert.Equal(t, "United States", locs[1].Country)

	qs := up.lastQS.Load().(url.Values)
	assert.Equal(t, []string{"Hanoi"}, qs["name"])
	assert.Equal(t, []string{"2"}, qs["count"])
	assert.Equal(t, []string{"vi"}, qs["language"])
	assert.Equal(t, []string{"json"}, qs["format"])
}

func TestOpenMeteoGeocodeNoResults(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, `{"generationtime_ms": 0.5}`)
	p := NewOpenMeteoProvider(testHTTPConfig(up.Client()), OpenMeteoGeocodingURL(up.URL))

	locs, err := p.Geocode(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestOpenMeteoFetchForecast(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, `{
		"latitude": 21.0, "longitude": 105.75, "timezone": "Asia/Bangkok",
		"current": {"time": "2024-05-01T14:30", "temperature_2m": 31.4, "relativehumidity_2m": 66, "apparent_temperature": 35.1,
			"is_day": 1, "weathercode": 2, "windspeed_10m": 9.4, "pressure_msl": 1005.2, "visibility": 24140, "precipitation": 0},
		"hourly": {"time": ["2024-05-01T00:00", "2024-05-01T01:00"], "temperature_2m": [27.1, 26.8], "weathercode": [3, 3],
			"is_day": [0, 0], "uv_index": [0, null], "relativehumidity_2m": [85, 87]},
		"daily": {"time": ["2024-05-01"], "weathercode": [95], "temperature_2m_max": [34.2], "temperature_2m_min": [26.1],
			"sunrise": ["2024-05-01T05:24"], "sunset": ["2024-05-01T18:19"], "uv_index_max": [9.1],
			"precipitation_probability_max": [71], "windspeed_10m_max": [14.3]}
	}`)

	p := NewOpenMeteoProvider(testHTTPConfig(up.Client()), OpenMeteoForecastURL(up.URL+"/v1/forecast"))

	doc, err := p.FetchForecast(context.Background(), weather.Coordinates{Latitude: 21.0245, Longitude: 105.84117})
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, 31.4, doc.Current.Temperature)
	assert.Equal(t, "2024-05-01T14:30", doc.Current.Time)
	assert.Equal(t, 2, doc.Hourly.Len())
	assert.Equal(t, []float64{0, 0}, doc.Hourly.UVIndex)
	assert.Equal(t, 1, doc.Daily.Len())
	assert.Equal(t, []int{71}, doc.Daily.PrecipitationProbabilityMax)

	qs := up.lastQS.Load().(url.Values)
	assert.Equal(t, []string{"21.0245"}, qs["latitude"])
	assert.Equal(t, []string{"105.84117"}, qs["longitude"])
	assert.Equal(t, []string{"auto"}, qs["timezone"])
	assert.Equal(t, []string{openMeteoDailyParams}, qs["daily"])
}

func TestOpenMeteoFetchForecastServerError(t *testing.T) {
	up := newFakeUpstream(t, http.StatusInternalServerError, `{"error": true}`)
	p := NewOpenMeteoProvider(testHTTPConfig(up.Client()), OpenMeteoForecastURL(up.URL))

	doc, err := p.FetchForecast(context.Background(), weather.Coordinates{Latitude: 1, Longitude: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, errServerError)
	assert.Nil(t, doc)
	assert.Equal(t, int32(1), up.calls.Load(), "a failed call is not retried")
}

func TestWeatherAPIGeocode(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, `[
		{"id": 2718413, "name": "Hanoi", "region": "", "country": "Vietnam", "lat": 21.03, "lon": 105.85, "url": "hanoi-vietnam"}
	]`)

	p := NewWeatherAPIProvider(testHTTPConfig(up.Client()), WeatherAPIBaseURL(up.URL)).WithKey("secret")

	locs, err := p.Geocode(context.Background(), "Hanoi")
	require.NoError(t, err)
	assert.Equal(t, []weather.Location{{ID: 2718413, Name: "Hanoi", Country: "Vietnam", Latitude: 21.03, Longitude: 105.85}}, locs)
	assert.Equal(t, "/search.json", up.lastPath.Load())

	qs := up.lastQS.Load().(url.Values)
	assert.Equal(t, []string{"secret"}, qs["key"])
	assert.Equal(t, []string{"Hanoi"}, qs["q"])
}

func TestWeatherAPIFetchForecast(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, weatherAPIForecastJSON)
	p := NewWeatherAPIProvider(testHTTPConfig(up.Client()), WeatherAPIBaseURL(up.URL)).WithKey("secret")

	doc, err := p.FetchForecast(context.Background(), weather.Coordinates{Latitude: 21.03, Longitude: 105.85})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 61, doc.Current.WeatherCode)
	assert.Equal(t, "2024-05-01T06:12", doc.Daily.Sunrise[0])

	assert.Equal(t, "/forecast.json", up.lastPath.Load())
	qs := up.lastQS.Load().(url.Values)
	assert.Equal(t, []string{"21.03,105.85"}, qs["q"])
	assert.Equal(t, []string{"7"}, qs["days"])
	assert.Equal(t, []string{"yes"}, qs["aqi"])
	assert.Equal(t, []string{"no"}, qs["alerts"])
}

func TestWeatherAPIFetchForecastWithoutCurrent(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, `{"location": {}, "forecast": {"forecastday": []}}`)
	p := NewWeatherAPIProvider(testHTTPConfig(up.Client()), WeatherAPIBaseURL(up.URL)).WithKey("secret")

	doc, err := p.FetchForecast(context.Background(), weather.Coordinates{})
	require.Error(t, err)
	assert.Nil(t, doc)
}

func TestWeatherAPIWithoutKeyMakesNoRequest(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, weatherAPIForecastJSON)
	p := NewWeatherAPIProvider(testHTTPConfig(up.Client()), WeatherAPIBaseURL(up.URL))

	doc, err := p.FetchForecast(context.Background(), weather.Coordinates{Latitude: 1, Longitude: 2})
	assert.ErrorIs(t, err, weather.ErrMissingAPIKey)
	assert.Nil(t, doc)

	locs, err := p.Geocode(context.Background(), "Hanoi")
	assert.ErrorIs(t, err, weather.ErrMissingAPIKey)
	assert.Nil(t, locs)

	assert.Equal(t, int32(0), up.calls.Load())
}

func TestWithKeyDoesNotMutateOriginal(t *testing.T) {
	base := NewWeatherAPIProvider(testHTTPConfig(http.DefaultClient))
	keyed := base.WithKey("k")

	assert.Equal(t, "", base.apiKey)
	assert.Equal(t, "k", keyed.apiKey)
	assert.Same(t, base.circuit, keyed.circuit)
}

func TestRegistryDispatch(t *testing.T) {
	om := NewOpenMeteoProvider(testHTTPConfig(http.DefaultClient))
	wa := NewWeatherAPIProvider(testHTTPConfig(http.DefaultClient))
	r := NewRegistry(om, wa)

	assert.Same(t, om, r.For(weather.ProviderConfig{Provider: weather.ProviderOpenMeteo}))
	assert.Same(t, om, r.For(weather.ProviderConfig{Provider: "Unknown"}))

	got := r.For(weather.ProviderConfig{Provider: weather.ProviderWeatherAPI, APIKey: "k"})
	require.IsType(t, &WeatherAPIProvider{}, got)
	assert.Equal(t, "k", got.(*WeatherAPIProvider).apiKey)
	assert.Equal(t, "WeatherAPI", got.Name())
}

func TestNoHTTPClient(t *testing.T) {
	p := NewOpenMeteoProvider(HTTPClientConfig{})
	_, err := p.FetchForecast(context.Background(), weather.Coordinates{})
	assert.ErrorIs(t, err, errNoHTTPClient)
}
