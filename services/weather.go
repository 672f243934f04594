package services

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"time"

	"drift/ratelimit"
)

const WeatherProvider = "weather"

type Weather struct {
	TemperatureC int    `json:"temperature_c"`
	Code         int    `json:"code"`
	Condition    string `json:"condition"`
	Emoji        string `json:"emoji"`
	Suggestion   string `json:"suggestion"`
}

type WeatherClient struct {
	api *apiClient
}

func NewWeatherClient(baseURL string, timeout time.Duration, limiter *ratelimit.ProviderLimiter) *WeatherClient {
	return &WeatherClient{api: newAPIClient(WeatherProvider, baseURL, timeout, limiter)}
}

// Current fetches the current conditions at a coordinate pair.
func (c *WeatherClient) Current(ctx context.Context, at Coordinates) (Weather, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	params.Set("current_weather", "true")
	params.Set("timezone", "auto")

	var resp struct {
		Current *struct {
			Temperature float64 `json:"temperature"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := c.api.getJSON(ctx, "/v1/forecast", params, &resp); err != nil {
		return Weather{}, NewProviderError(WeatherProvider, err)
	}
	if resp.Current == nil {
		return Weather{}, NewProviderError(WeatherProvider, errMissingCurrentWeather)
	}

	temp := int(math.Round(resp.Current.Temperature))
	code := resp.Current.WeatherCode
	return Weather{
		TemperatureC: temp,
		Code:         code,
		Condition:    weatherCondition(code),
		Emoji:        weatherEmoji(code),
		Suggestion:   activitySuggestion(temp),
	}, nil
}

var errMissingCurrentWeather = &APIError{StatusCode: 200, Detail: "response has no current_weather block"}

var weatherConditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	95: "Thunderstorm",
}

func weatherCondition(code int) string {
	if c, ok := weatherConditions[code]; ok {
		return c
	}
	return "Unknown"
}

func weatherEmoji(code int) string {
	switch {
	case code == 0 || code == 1:
		return "☀️"
	case code == 2 || code == 3:
		return "⛅"
	case code >= 45 && code <= 48:
		return "🌫️"
	case code >= 51 && code <= 65:
		return "🌧️"
	case code >= 71 && code <= 75:
		return "❄️"
	case code >= 95:
		return "⛈️"
	default:
		return "🌤️"
	}
}

func activitySuggestion(tempC int) string {
	switch {
	case tempC > 25:
		return "Great weather for outdoor activities and rooftop dining!"
	case tempC < 5:
		return "Cozy weather for warm cafes and indoor attractions!"
	default:
		return "Perfect weather for exploring!"
	}
}
