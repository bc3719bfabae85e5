package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/weather/providers"
)

var validate = validator.New()

type AppConfig struct {
	// WeatherAPIKey may be empty; the provider then fails every fetch with a
	// configuration error. APIKeyErr explains why it is empty.
	WeatherAPIKey string
	APIKeyErr     error
	WeatherAPIURL string `validate:"required,url"`

	Location LocationConfig

	// FetchInterval controls how often a refresh cycle is started.
	FetchInterval time.Duration `validate:"gt=0"`
	Retry         weather.RetryPolicy

	HTTPTimeout time.Duration `validate:"gt=0"`
	IconTimeout time.Duration `validate:"gt=0"`

	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

// LocationConfig selects the coordinate source. Static coordinates win over
// geocoding, which wins over the location file.
type LocationConfig struct {
	Coordinates    *weather.Coordinates
	File           string
	City           string
	Country        string
	GeocoderAPIKey string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfg.EnvFileLoaded = godotenv.Load() == nil

	cfg.WeatherAPIKey, cfg.APIKeyErr = ResolveAPIKey(
		os.Getenv("WEATHERAPI_API_KEY"),
		getenvDefault("API_KEY_FILE", "api.key"),
	)
	cfg.WeatherAPIURL = getenvDefault("WEATHERAPI_URL", providers.DefaultWeatherAPIURL)

	var err error
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Retry.Delay, err = getenvDuration("RETRY_DELAY", weather.DefaultRetryDelay); err != nil {
		return nil, err
	}
	cfg.Retry.MaxAttempts = getenvInt("RETRY_MAX_ATTEMPTS", weather.DefaultMaxAttempts)
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.IconTimeout, err = getenvDuration("ICON_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadLocation() (LocationConfig, error) {
	loc := LocationConfig{
		File:           getenvDefault("LOCATION_FILE", "location.txt"),
		City:           strings.TrimSpace(os.Getenv("WEATHER_LOCATION_CITY")),
		Country:        strings.TrimSpace(os.Getenv("WEATHER_LOCATION_COUNTRY")),
		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),
	}

	latStr, lonStr := os.Getenv("WEATHER_LAT"), os.Getenv("WEATHER_LON")
	if latStr == "" && lonStr == "" {
		return loc, nil
	}
	if latStr == "" || lonStr == "" {
		return loc, fmt.Errorf("WEATHER_LAT and WEATHER_LON must be set together")
	}

	coords, err := parseCoordinates(latStr, lonStr)
	if err != nil {
		return loc, err
	}
	loc.Coordinates = &coords
	return loc, nil
}

// ResolveAPIKey prefers the environment value and falls back to the trimmed
// contents of path.
func ResolveAPIKey(envValue, path string) (string, error) {
	if key := strings.TrimSpace(envValue); key != "" {
		return key, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &weather.ConfigurationError{
				Field:  "api key",
				Reason: fmt.Sprintf("key file %q not found; set WEATHERAPI_API_KEY or create it", path),
			}
		}
		return "", &weather.ConfigurationError{Field: "api key", Reason: "cannot read key file", Err: err}
	}

	key := strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff"))
	if key == "" {
		return "", &weather.ConfigurationError{Field: "api key", Reason: fmt.Sprintf("key file %q is empty", path)}
	}
	return key, nil
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

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
