package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-lookup/internal/common"
)

// History backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type AppConfig struct {
	Port     string
	LogLevel string

	WeatherAPIKey    string
	WeatherAPIURL    string
	YouTubeAPIKey    string
	YouTubeAPIURL    string
	GoogleMapsAPIKey string

	// HTTPTimeout bounds upstream calls; 0 means no timeout.
	HTTPTimeout        time.Duration
	GeolocationTimeout time.Duration
	UpstreamMaxRetries int
	// UpstreamRateLimit caps weather requests per second; 0 means unlimited.
	UpstreamRateLimit float64
	UpstreamRateBurst int

	Timezone *time.Location
	// ForecastIncludeRequestedDay starts a future-date forecast window on the
	// requested day instead of the day after it.
	ForecastIncludeRequestedDay bool

	History HistoryConfig
}

type HistoryConfig struct {
	Driver string
	DSN    string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string

	// MemoryMaxItems caps the in-memory backend per owner (0 = unlimited).
	MemoryMaxItems int

	// Retention is the max age of history entries (0 = keep forever).
	Retention     time.Duration
	SweepInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.WeatherAPIURL = os.Getenv("WEATHERAPI_URL")
	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")
	cfg.YouTubeAPIURL = os.Getenv("YOUTUBE_API_URL")
	cfg.GoogleMapsAPIKey = common.FirstNonEmpty(os.Getenv("GOOGLE_MAPS_API_KEY"), os.Getenv("GOOGLE_API_KEY"))

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.GeolocationTimeout, err = getenvDuration("GEOLOCATION_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	cfg.UpstreamMaxRetries = getenvInt("UPSTREAM_MAX_RETRIES", 0)
	if cfg.UpstreamMaxRetries < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: %d", cfg.UpstreamMaxRetries)
	}
	if cfg.UpstreamRateLimit, err = getenvFloat("UPSTREAM_RATE_LIMIT", 0); err != nil {
		return nil, err
	}
	cfg.UpstreamRateBurst = getenvInt("UPSTREAM_RATE_BURST", 1)

	tz := getenvDefault("TIMEZONE", "UTC")
	cfg.Timezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if cfg.ForecastIncludeRequestedDay, err = getenvBool("FORECAST_INCLUDE_REQUESTED_DAY", false); err != nil {
		return nil, err
	}

	if cfg.History, err = loadHistory(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadHistory() (HistoryConfig, error) {
	h := HistoryConfig{
		Driver:           strings.ToLower(getenvDefault("HISTORY_DRIVER", DriverSQLite)),
		DSN:              os.Getenv("HISTORY_DSN"),
		PostgresUser:     getenvDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getenvDefault("POSTGRES_DB", "weather"),
		PostgresHost:     getenvDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenvDefault("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getenvDefault("POSTGRES_SSLMODE", "disable"),
		MemoryMaxItems:   getenvInt("HISTORY_MEMORY_MAX_ITEMS", 0),
	}

	switch h.Driver {
	case DriverPostgres, DriverMemory:
	case DriverSQLite:
		h.DSN = common.FirstNonEmpty(h.DSN, "weather-history.db")
	default:
		return HistoryConfig{}, fmt.Errorf("invalid HISTORY_DRIVER %q: want postgres, sqlite or memory", h.Driver)
	}

	var err error
	if h.Retention, err = getenvDuration("HISTORY_RETENTION", 0); err != nil {
		return HistoryConfig{}, err
	}
	if h.SweepInterval, err = getenvDuration("HISTORY_SWEEP_INTERVAL", time.Hour); err != nil {
		return HistoryConfig{}, err
	}
	return h, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
