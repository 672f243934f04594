package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"drift/autocomplete"
	"drift/cache"
	"drift/config"
	"drift/database"
	"drift/handlers"
	"drift/planner"
	"drift/prefs"
	"drift/ratelimit"
	"drift/services"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	limiter := ratelimit.NewProviderLimiterWithDefaults()
	limiter.SetProviderLimit(services.GeocodeProvider, cfg.GeocodeRPS, cfg.GeocodeBurst)

	suggestCache := newCache(cfg)
	defer suggestCache.Close()

	places := services.NewGeocodeClient(cfg.GeocodeURL, cfg.GeocodeAPIKey, cfg.RequestTimeout, limiter, suggestCache)
	airports := services.NewAirportClient(cfg.AirportsURL, cfg.RequestTimeout, limiter, suggestCache)
	backend := services.NewBackendClient(cfg.BackendURL, cfg.RequestTimeout, limiter)
	weather := services.NewWeatherClient(cfg.WeatherURL, cfg.RequestTimeout, limiter)

	var db *sql.DB
	if cfg.PreferencesBackend == "postgres" || cfg.Database.URL != "" {
		var err error
		db, err = database.InitDB(cfg.Database)
		if err != nil {
			log.Fatalf("❌ Database unavailable: %v", err)
		}
		defer db.Close()
	}

	hub, err := prefs.NewHub(preferenceBackend(cfg, db))
	if err != nil {
		log.Fatalf("❌ Failed to load preferences: %v", err)
	}

	var repo database.Repository = database.NewMemory()
	if db != nil {
		repo = database.NewPostgres(db)
	}

	registry := planner.NewRegistry(planner.Deps{
		Places:          places,
		Airports:        airports,
		Resolver:        services.NewAirportCodeResolver(airports),
		Backend:         backend,
		Weather:         weather,
		History:         hub,
		Searches:        repo,
		Clock:           autocomplete.SystemClock{},
		Debounce:        cfg.Debounce,
		MinQueryLength:  cfg.MinQueryLen,
		Locale:          cfg.Locale,
		BaseCurrency:    cfg.BaseCurrency,
		NotificationTTL: planner.DefaultNotificationTTL,
	})
	defer registry.Close()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// Trusted proxies (the API sits behind a proxy in production)
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := &handlers.API{Sessions: registry, Prefs: hub, Itineraries: repo}
	if db != nil {
		api.DB = db
	}
	api.Register(r.Group("/api"))

	log.Printf("🚀 Drift API starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newCache(cfg config.Config) cache.Cache {
	if !cfg.CacheEnabled {
		return cache.NewNoOpCache()
	}
	rc, err := cache.NewRedisCache(cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		TTL:      cfg.RedisTTL,
	})
	if err != nil {
		log.Printf("⚠️  Redis unavailable, suggestions will not be cached: %v", err)
		return cache.NewNoOpCache()
	}
	log.Println("✅ Suggestion cache connected")
	return rc
}

func preferenceBackend(cfg config.Config, db *sql.DB) prefs.Backend {
	switch cfg.PreferencesBackend {
	case "postgres":
		return database.NewPreferenceBackend(db, cfg.UserID)
	case "file":
		return prefs.FileBackend{Path: cfg.PreferencesFile}
	default:
		return prefs.NewMemoryBackend()
	}
}
