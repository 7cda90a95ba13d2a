package weather

// ProviderKind identifies one of the supported upstream weather sources.
// The set is closed: every switch over it lives in providers.Registry.
type ProviderKind string

const (
	ProviderOpenMeteo  ProviderKind = "Open-Meteo"
	ProviderWeatherAPI ProviderKind = "WeatherAPI"
)

// ParseProviderKind maps a remote configuration value onto a known provider.
func ParseProviderKind(s string) (ProviderKind, bool) {
	switch ProviderKind(s) {
	case ProviderOpenMeteo:
		return ProviderOpenMeteo, true
	case ProviderWeatherAPI:
		return ProviderWeatherAPI, true
	default:
		return "", false
	}
}

// ProviderConfig is the currently active provider and its credential.
// APIKey is empty for providers that do not need one.
type ProviderConfig struct {
	Provider ProviderKind `json:"provider" validate:"required,oneof=Open-Meteo WeatherAPI"`
	APIKey   string       `json:"key" validate:"required_if=Provider WeatherAPI"`
}

// DefaultProviderConfig is used whenever the remote configuration is unavailable.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{Provider: ProviderOpenMeteo}
}

// Location is a geocoding candidate. ID is only unique within the
// namespace of the provider that returned it.
type Location struct {
	ID        int64   `json:"id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Coordinates identify the point a forecast is requested for.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Document is the canonical weather shape every consumer reads, whatever
// provider produced it. Field names follow Open-Meteo, which is the native shape.
type Document struct {
	Current Current `json:"current"`
	Hourly  Hourly  `json:"hourly"`
	Daily   Daily   `json:"daily"`
}

// Current holds the current conditions. WeatherCode is a WMO code.
type Current struct {
	Temperature         float64 `json:"temperature_2m"`
	RelativeHumidity    float64 `json:"relativehumidity_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	IsDay               int     `json:"is_day"`
	WeatherCode         int     `json:"weathercode"`
	WindSpeed           float64 `json:"windspeed_10m"`
	PressureMSL         float64 `json:"pressure_msl"`
	Visibility          float64 `json:"visibility"` // meters
	Precipitation       float64 `json:"precipitation"`
	Time                string  `json:"time"`
}

// Hourly is a set of parallel series indexed by hour offset.
// All slices have the same length.
type Hourly struct {
	Time             []string  `json:"time"`
	Temperature      []float64 `json:"temperature_2m"`
	WeatherCode      []int     `json:"weathercode"`
	IsDay            []int     `json:"is_day"`
	UVIndex          []float64 `json:"uv_index"`
	RelativeHumidity []float64 `json:"relativehumidity_2m"`
}

// Daily is a set of parallel series indexed by day offset, 0 being today.
// All slices have the same length.
type Daily struct {
	Time                        []string  `json:"time"`
	WeatherCode                 []int     `json:"weathercode"`
	TemperatureMax              []float64 `json:"temperature_2m_max"`
	TemperatureMin              []float64 `json:"temperature_2m_min"`
	Sunrise                     []string  `json:"sunrise"`
	Sunset                      []string  `json:"sunset"`
	UVIndexMax                  []float64 `json:"uv_index_max"`
	PrecipitationProbabilityMax []int     `json:"precipitation_probability_max"`
	WindSpeedMax                []float64 `json:"windspeed_10m_max"`
}

// Len returns the common length of the hourly series, or -1 if they disagree.
func (h Hourly) Len() int {
	return commonLen(len(h.Time), len(h.Temperature), len(h.WeatherCode), len(h.IsDay), len(h.UVIndex), len(h.RelativeHumidity))
}

// Len returns the common length of the daily series, or -1 if they disagree.
func (d Daily) Len() int {
	return commonLen(len(d.Time), len(d.WeatherCode), len(d.TemperatureMax), len(d.TemperatureMin),
		len(d.Sunrise), len(d.Sunset), len(d.UVIndexMax), len(d.PrecipitationProbabilityMax), len(d.WindSpeedMax))
}

func commonLen(lengths ...int) int {
	for _, n := range lengths[1:] {
		if n != lengths[0] {
			return -1
		}
	}
	return lengths[0]
}
