package providers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// WeatherAPIForecast is the subset of WeatherAPI's forecast.json response we read.
type WeatherAPIForecast struct {
	Location struct {
		Localtime string `json:"localtime"`
	} `json:"location"`
	Current  *weatherAPICurrent `json:"current"`
	Forecast struct {
		Forecastday []weatherAPIForecastDay `json:"forecastday"`
	} `json:"forecast"`
}

type weatherAPICondition struct {
	Code int `json:"code"`
}

type weatherAPICurrent struct {
	TempC      float64             `json:"temp_c"`
	Humidity   float64             `json:"humidity"`
	FeelsLikeC float64             `json:"feelslike_c"`
	IsDay      int                 `json:"is_day"`
	WindKph    float64             `json:"wind_kph"`
	PressureMb float64             `json:"pressure_mb"`
	VisKm      float64             `json:"vis_km"`
	PrecipMm   float64             `json:"precip_mm"`
	Condition  weatherAPICondition `json:"condition"`
}

type weatherAPIForecastDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC          float64             `json:"maxtemp_c"`
		MinTempC          float64             `json:"mintemp_c"`
		MaxWindKph        float64             `json:"maxwind_kph"`
		UV                float64             `json:"uv"`
		DailyChanceOfRain int                 `json:"daily_chance_of_rain"`
		Condition         weatherAPICondition `json:"condition"`
	} `json:"day"`
	Astro struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"astro"`
	Hour []weatherAPIHour `json:"hour"`
}

type weatherAPIHour struct {
	Time      string              `json:"time"`
	TempC     float64             `json:"temp_c"`
	IsDay     int                 `json:"is_day"`
	UV        float64             `json:"uv"`
	Humidity  float64             `json:"humidity"`
	Condition weatherAPICondition `json:"condition"`
}

// NormalizeWeatherAPI reshapes a WeatherAPI forecast into the canonical
// document. It returns nil when the response carries no current conditions.
//
// Hourly data is taken from the first forecast day only, so late in the day
// some of the returned hours are already in the past.
func NormalizeWeatherAPI(raw *WeatherAPIForecast) *weather.Document {
	if raw == nil || raw.Current == nil {
		return nil
	}

	cur := raw.Current
	doc := &weather.Document{
		Current: weather.Current{
			Temperature:         cur.TempC,
			RelativeHumidity:    cur.Humidity,
			ApparentTemperature: cur.FeelsLikeC,
			IsDay:               cur.IsDay,
			WeatherCode:         MapWeatherCode(cur.Condition.Code),
			WindSpeed:           cur.WindKph,
			PressureMSL:         cur.PressureMb,
			Visibility:          cur.VisKm * 1000,
			Precipitation:       cur.PrecipMm,
			Time:                isoLocal(raw.Location.Localtime),
		},
	}

	days := raw.Forecast.Forecastday

	var hours []weatherAPIHour
	if len(days) > 0 {
		hours = days[0].Hour
	}
	h := weather.Hourly{
		Time:             make([]string, 0, len(hours)),
		Temperature:      make([]float64, 0, len(hours)),
		WeatherCode:      make([]int, 0, len(hours)),
		IsDay:            make([]int, 0, len(hours)),
		UVIndex:          make([]float64, 0, len(hours)),
		RelativeHumidity: make([]float64, 0, len(hours)),
	}
	for _, hr := range hours {
		h.Time = append(h.Time, isoLocal(hr.Time))
		h.Temperature = append(h.Temperature, hr.TempC)
		h.WeatherCode = append(h.WeatherCode, MapWeatherCode(hr.Condition.Code))
		h.IsDay = append(h.IsDay, hr.IsDay)
		h.UVIndex = append(h.UVIndex, hr.UV)
		h.RelativeHumidity = append(h.RelativeHumidity, hr.Humidity)
	}
	doc.Hourly = h

	d := weather.Daily{
		Time:                        make([]string, 0, len(days)),
		WeatherCode:                 make([]int, 0, len(days)),
		TemperatureMax:              make([]float64, 0, len(days)),
		TemperatureMin:              make([]float64, 0, len(days)),
		Sunrise:                     make([]string, 0, len(days)),
		Sunset:                      make([]string, 0, len(days)),
		UVIndexMax:                  make([]float64, 0, len(days)),
		PrecipitationProbabilityMax: make([]int, 0, len(days)),
		WindSpeedMax:                make([]float64, 0, len(days)),
	}
	for _, fd := range days {
		d.Time = append(d.Time, fd.Date)
		d.WeatherCode = append(d.WeatherCode, MapWeatherCode(fd.Day.Condition.Code))
		d.TemperatureMax = append(d.TemperatureMax, fd.Day.MaxTempC)
		d.TemperatureMin = append(d.TemperatureMin, fd.Day.MinTempC)
		d.Sunrise = append(d.Sunrise, fd.Date+"T"+Convert12to24(fd.Astro.Sunrise))
		d.Sunset = append(d.Sunset, fd.Date+"T"+Convert12to24(fd.Astro.Sunset))
		d.UVIndexMax = append(d.UVIndexMax, fd.Day.UV)
		d.PrecipitationProbabilityMax = append(d.PrecipitationProbabilityMax, fd.Day.DailyChanceOfRain)
		d.WindSpeedMax = append(d.WindSpeedMax, fd.Day.MaxWindKph)
	}
	doc.Daily = d

	return doc
}

// MapWeatherCode translates a WeatherAPI condition code into a coarse WMO bucket.
// Codes outside the table map to 2 (partly cloudy).
func MapWeatherCode(code int) int {
	switch code {
	case 1000:
		return 0
	case 1003:
		return 1
	case 1006, 1009:
		return 3
	case 1063, 1180, 1183, 1186, 1189:
		return 61
	case 1273, 1276:
		return 95
	default:
		return 2
	}
}

// Convert12to24 turns "hh:mm AM|PM" into "HH:MM". Anything it cannot parse becomes "00:00".
func Convert12to24(s string) string {
	clock, modifier, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return "00:00"
	}
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || mm == "" {
		return "00:00"
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 1 || hour > 12 {
		return "00:00"
	}

	switch strings.ToUpper(strings.TrimSpace(modifier)) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return "00:00"
	}
	return fmt.Sprintf("%02d:%s", hour, mm)
}

// isoLocal converts WeatherAPI's "YYYY-MM-DD HH:MM" into the naive ISO form Open-Meteo uses.
func isoLocal(s string) string {
	return strings.Replace(s, " ", "T", 1)
}
