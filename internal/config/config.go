package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	URI  string
	Name string
}

// MapConfig holds the geography the deployment serves. The center is used
// by the far-away-bubble cleanup endpoint and the venue geocoder.
type MapConfig struct {
	City      string
	CenterLat float64
	CenterLng float64
	// User bubbles farther than this from the center can be purged.
	MaxDistanceKm float64
}

// LifecycleConfig holds the timing rules of the bubble lifecycle engine.
type LifecycleConfig struct {
	// How long a user bubble survives without interaction.
	RetentionWindow time.Duration
	// How often the expiry sweep runs.
	SweepInterval time.Duration
	// How often the bot importer runs, and how long after startup the
	// first run fires.
	ScrapeInterval time.Duration
	ScrapeStartup  time.Duration
	// Cadence of the decay_tick heartbeat pushed to live viewers.
	DecayTickInterval time.Duration
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Map            *MapConfig
	Lifecycle      *LifecycleConfig
	UploadDir      string
	AllowedOrigins []string
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultLifecycleConfig provides the reference lifecycle timings.
func DefaultLifecycleConfig() *LifecycleConfig {
	return &LifecycleConfig{
		RetentionWindow:   24 * time.Hour,
		SweepInterval:     5 * time.Minute,
		ScrapeInterval:    30 * time.Minute,
		ScrapeStartup:     5 * time.Second,
		DecayTickInterval: 30 * time.Second,
	}
}

// DefaultMapConfig centers the map on Amsterdam.
func DefaultMapConfig() *MapConfig {
	return &MapConfig{
		City:          "Amsterdam",
		CenterLat:     52.3676,
		CenterLng:     4.9041,
		MaxDistanceKm: 50,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envLocations := []string{
		".env",
		"../../.env", // Project root when running from cmd/server
		filepath.Join(os.Getenv("GOPATH"), "src/thewherewhat/.env"),
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		// Silent failure if no .env exists anywhere, which is fine.
		_ = godotenv.Load()
	}

	serverConfig := DefaultConfig()
	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}
	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := &DatabaseConfig{
		URI:  getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		Name: getEnvOrDefault("DB_NAME", "thewherewhat"),
	}

	mapConfig := DefaultMapConfig()
	if city := os.Getenv("MAP_CITY"); city != "" {
		mapConfig.City = city
	}
	if lat, ok := envFloat("MAP_CENTER_LAT"); ok {
		mapConfig.CenterLat = lat
	}
	if lng, ok := envFloat("MAP_CENTER_LNG"); ok {
		mapConfig.CenterLng = lng
	}
	if km, ok := envFloat("MAP_MAX_DISTANCE_KM"); ok {
		mapConfig.MaxDistanceKm = km
	}

	lifecycle := DefaultLifecycleConfig()
	if d, ok := envDuration("RETENTION_WINDOW"); ok {
		lifecycle.RetentionWindow = d
	}
	if d, ok := envDuration("SWEEP_INTERVAL"); ok {
		lifecycle.SweepInterval = d
	}
	if d, ok := envDuration("SCRAPE_INTERVAL"); ok {
		lifecycle.ScrapeInterval = d
	}
	if d, ok := envDuration("SCRAPE_STARTUP_DELAY"); ok {
		lifecycle.ScrapeStartup = d
	}
	if d, ok := envDuration("DECAY_TICK_INTERVAL"); ok {
		lifecycle.DecayTickInterval = d
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		Map:            mapConfig,
		Lifecycle:      lifecycle,
		UploadDir:      getEnvOrDefault("UPLOAD_DIR", "public/uploads"),
		AllowedOrigins: []string{"*"},
		Debug:          false,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}
	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envDuration(key string) (time.Duration, bool) {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d, true
		}
	}
	return 0, false
}

func envFloat(key string) (float64, bool) {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
