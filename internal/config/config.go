package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-daily-overview/internal/weather"
)

// Geocoder backends.
const (
	GeocoderOpenMeteo = "openmeteo"
	GeocoderGoogle    = "google"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	// RefreshInterval controls how often the presets are refetched.
	RefreshInterval time.Duration

	// CacheTTL is how long a stored overview is served before refetching.
	CacheTTL time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max number of overviews per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of overviews (0 = unlimited)

	Window weather.FetchWindow

	Geocoder          string
	GoogleAPIKey      string
	GeocodingLanguage string

	PresetsFile string
	Presets     []weather.LocationQuery

	// ArchiveDSN enables the PostgreSQL archive when set.
	ArchiveDSN string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment (and .env when present)
// with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		Geocoder:          strings.ToLower(getenvDefault("GEOCODER", GeocoderOpenMeteo)),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		GeocodingLanguage: getenvDefault("GEOCODING_LANGUAGE", "de"),
		PresetsFile:       getenvDefault("PRESETS_FILE", "presets.yaml"),
		ArchiveDSN:        os.Getenv("ARCHIVE_DSN"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		LogFormat:         getenvDefault("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "15m"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", 48); err != nil {
		return nil, err
	}
	if cfg.Window.PastDays, err = getenvInt("PAST_DAYS", 10); err != nil {
		return nil, err
	}
	if cfg.Window.ForecastDays, err = getenvInt("FORECAST_DAYS", 16); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	presets, err := LoadPresets(cfg.PresetsFile)
	if err != nil {
		return nil, err
	}
	cfg.Presets = presets

	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Geocoder {
	case GeocoderOpenMeteo:
	case GeocoderGoogle:
		if c.GoogleAPIKey == "" {
			return errors.New("GEOCODER is google but GOOGLE_API_KEY is not set")
		}
	default:
		return fmt.Errorf("invalid GEOCODER %q", c.Geocoder)
	}
	if err := ValidateWindow(c.Window); err != nil {
		return err
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// Open-Meteo limits.
const (
	MaxPastDays     = 92
	MaxForecastDays = 16
)

// ValidateWindow checks w against the range the forecast API accepts.
func ValidateWindow(w weather.FetchWindow) error {
	if w.PastDays < 0 || w.PastDays > MaxPastDays {
		return fmt.Errorf("PAST_DAYS must be within 0..%d, got %d", MaxPastDays, w.PastDays)
	}
	if w.ForecastDays < 0 || w.ForecastDays > MaxForecastDays {
		return fmt.Errorf("FORECAST_DAYS must be within 0..%d, got %d", MaxForecastDays, w.ForecastDays)
	}
	return nil
}

type presetsFile struct {
	Locations []weather.LocationQuery `yaml:"locations"`
}

// LoadPresets reads the preset list from a YAML file. A missing file yields
// DefaultPresets; an empty list in an existing file is an error.
func LoadPresets(path string) ([]weather.LocationQuery, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultPresets(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}

	var f presetsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	if len(f.Locations) == 0 {
		return nil, fmt.Errorf("presets %s: no locations", path)
	}
	for i, l := range f.Locations {
		if strings.TrimSpace(l.Name) == "" {
			return nil, fmt.Errorf("presets %s: location %d has no name", path, i)
		}
	}
	return f.Locations, nil
}

// DefaultPresets returns a fresh copy of the built-in preset places.
func DefaultPresets() []weather.LocationQuery {
	return []weather.LocationQuery{
		{Name: "Fislisbach", Country: "CH"},
		{Name: "Zürich", Country: "CH"},
		{Name: "Basel", Country: "CH"},
		{Name: "Bern", Country: "CH"},
		{Name: "Genf", Country: "CH"},
		{Name: "Hamburg", Country: "DE"},
		{Name: "Berlin", Country: "DE"},
		{Name: "Wien", Country: "AT"},
		{Name: "Oslo", Country: "NO"},
		{Name: "Tokyo", Country: "JP"},
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
