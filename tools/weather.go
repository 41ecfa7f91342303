package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const openMeteoBaseURL = "https://api.open-meteo.com"

// weatherConditions maps Open-Meteo weather codes to human-readable conditions
var weatherConditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	51: "Light drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	80: "Slight rain showers",
	95: "Thunderstorm",
}

// WeatherCurrent fetches current conditions from the Open-Meteo API
type WeatherCurrent struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewWeatherCurrent creates the weather_current executor. A nil client uses
// a default with a bounded timeout.
func NewWeatherCurrent(client *http.Client, logger *zap.Logger) *WeatherCurrent {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WeatherCurrent{baseURL: openMeteoBaseURL, client: client, logger: logger}
}

func (w *WeatherCurrent) Name() string        { return "weather_current" }
func (w *WeatherCurrent) Category() string    { return "weather" }
func (w *WeatherCurrent) Description() string {
	return "Get current weather conditions using latitude and longitude coordinates"
}

// Execute fetches current weather for the given coordinates
func (w *WeatherCurrent) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	lat, latOK := toFloat(args["latitude"])
	lon, lonOK := toFloat(args["longitude"])
	if !latOK || !lonOK {
		return map[string]interface{}{
			"error":   "Missing required parameters: latitude and longitude are required",
			"example": `{"latitude": 52.52, "longitude": 13.41, "location_name": "Berlin"}`,
		}, nil
	}

	url := fmt.Sprintf("%s/v1/forecast?latitude=%g&longitude=%g&current=temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m&timezone=auto",
		w.baseURL, lat, lon)

	var payload struct {
		Timezone string `json:"timezone"`
		Current  struct {
			Time               string  `json:"time"`
			Temperature        float64 `json:"temperature_2m"`
			Humidity           float64 `json:"relative_humidity_2m"`
			ApparentTemp       float64 `json:"apparent_temperature"`
			WeatherCode        int     `json:"weather_code"`
			WindSpeed          float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}
	if err := w.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch weather data: %w", err)
	}

	condition, ok := weatherConditions[payload.Current.WeatherCode]
	if !ok {
		condition = "Unknown"
	}

	location := fmt.Sprintf("%g, %g", lat, lon)
	if name, ok := args["location_name"].(string); ok && name != "" {
		location = name
	}

	return map[string]interface{}{
		"location":     location,
		"temperature":  fmt.Sprintf("%g°C", payload.Current.Temperature),
		"feels_like":   fmt.Sprintf("%g°C", payload.Current.ApparentTemp),
		"condition":    condition,
		"humidity":     fmt.Sprintf("%g%%", payload.Current.Humidity),
		"wind_speed":   fmt.Sprintf("%g km/h", payload.Current.WindSpeed),
		"weather_code": payload.Current.WeatherCode,
		"timestamp":    payload.Current.Time,
		"timezone":     payload.Timezone,
		"source":       "Open-Meteo API",
	}, nil
}

func (w *WeatherCurrent) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API error: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// WeatherForecast fetches a multi-day forecast from the Open-Meteo API
type WeatherForecast struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewWeatherForecast creates the weather_forecast executor
func NewWeatherForecast(client *http.Client, logger *zap.Logger) *WeatherForecast {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WeatherForecast{baseURL: openMeteoBaseURL, client: client, logger: logger}
}

func (w *WeatherForecast) Name() string        { return "weather_forecast" }
func (w *WeatherForecast) Category() string    { return "weather" }
func (w *WeatherForecast) Description() string {
	return "Get weather forecast for multiple days using coordinates"
}

// Execute fetches the daily forecast for the given coordinates
func (w *WeatherForecast) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	lat, latOK := toFloat(args["latitude"])
	lon, lonOK := toFloat(args["longitude"])
	if !latOK || !lonOK {
		return map[string]interface{}{
			"error":   "Missing required parameters: latitude and longitude are required",
			"example": `{"latitude": 52.52, "longitude": 13.41, "days": 3}`,
		}, nil
	}

	days := 3
	if d, ok := toFloat(args["days"]); ok && d >= 1 && d <= 7 {
		days = int(d)
	}

	url := fmt.Sprintf("%s/v1/forecast?latitude=%g&longitude=%g&daily=temperature_2m_max,temperature_2m_min,weather_code&forecast_days=%d&timezone=auto",
		w.baseURL, lat, lon, days)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast data: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API error: %d", resp.StatusCode)
	}

	var payload struct {
		Timezone string `json:"timezone"`
		Daily    struct {
			Time        []string  `json:"time"`
			TempMax     []float64 `json:"temperature_2m_max"`
			TempMin     []float64 `json:"temperature_2m_min"`
			WeatherCode []int     `json:"weather_code"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode forecast data: %w", err)
	}

	forecast := make([]map[string]interface{}, 0, len(payload.Daily.Time))
	for i, day := range payload.Daily.Time {
		entry := map[string]interface{}{"date": day}
		if i < len(payload.Daily.TempMax) {
			entry["temperature_max"] = fmt.Sprintf("%g°C", payload.Daily.TempMax[i])
		}
		if i < len(payload.Daily.TempMin) {
			entry["temperature_min"] = fmt.Sprintf("%g°C", payload.Daily.TempMin[i])
		}
		if i < len(payload.Daily.WeatherCode) {
			condition, ok := weatherConditions[payload.Daily.WeatherCode[i]]
			if !ok {
				condition = "Unknown"
			}
			entry["condition"] = condition
		}
		forecast = append(forecast, entry)
	}

	return map[string]interface{}{
		"coordinates": map[string]interface{}{"latitude": lat, "longitude": lon},
		"days":        days,
		"forecast":    forecast,
		"timezone":    payload.Timezone,
		"source":      "Open-Meteo API",
	}, nil
}

// toFloat coerces JSON numbers (and numeric strings are not accepted)
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
