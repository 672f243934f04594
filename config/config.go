package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"drift/database"
)

type Config struct {
	Port        string
	GinMode     string
	FrontendURL []string

	BackendURL     string
	GeocodeURL     string
	GeocodeAPIKey  string
	GeocodeRPS     float64
	GeocodeBurst   int
	AirportsURL    string
	WeatherURL     string
	RequestTimeout time.Duration

	Locale       string
	BaseCurrency string
	Debounce     time.Duration
	MinQueryLen  int

	PreferencesBackend string
	PreferencesFile    string
	UserID             string
	Database           database.Config

	CacheEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisTTL      time.Duration
}

func Load() Config {
	backendURL := strings.TrimRight(getEnv("BACKEND_URL", ""), "/")
	if backendURL != "" && !strings.HasSuffix(backendURL, "/api") {
		backendURL += "/api"
	}

	locale := getEnv("LOCALE", "")
	if locale == "" {
		locale = getEnv("LANG", "en-US")
	}

	return Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", ""),
		FrontendURL: splitList(getEnv("FRONTEND_URL", "")),

		BackendURL:     backendURL,
		GeocodeURL:     getEnv("GEOCODE_URL", ""),
		GeocodeAPIKey:  getEnv("GEOCODE_API_KEY", ""),
		GeocodeRPS:     getEnvFloat("GEOCODE_RPS", 1),
		GeocodeBurst:   getEnvInt("GEOCODE_BURST", 2),
		AirportsURL:    getEnv("AIRPORTS_URL", backendURL),
		WeatherURL:     getEnv("WEATHER_URL", "https://api.open-meteo.com"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),

		Locale:       locale,
		BaseCurrency: strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
		Debounce:     time.Duration(getEnvInt("DEBOUNCE_MS", 300)) * time.Millisecond,
		MinQueryLen:  getEnvInt("MIN_QUERY_LENGTH", 2),

		PreferencesBackend: strings.ToLower(getEnv("PREFERENCES_BACKEND", "memory")),
		PreferencesFile:    getEnv("PREFERENCES_FILE", "drift_user_preferences.json"),
		UserID:             getEnv("USER_ID", "default"),
		Database: database.Config{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "drift"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		CacheEnabled:  getEnvBool("CACHE_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTTL:      getEnvDuration("REDIS_TTL", 10*time.Minute),
	}
}

// AllowedOrigins is the CORS list: local dev servers plus FRONTEND_URL.
func (c Config) AllowedOrigins() []string {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	return append(origins, c.FrontendURL...)
}

func splitList(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
