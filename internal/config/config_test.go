package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/weather/providers"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WEATHERAPI_API_KEY", "API_KEY_FILE", "WEATHERAPI_URL",
		"WEATHER_LAT", "WEATHER_LON", "LOCATION_FILE",
		"WEATHER_LOCATION_CITY", "WEATHER_LOCATION_COUNTRY", "GEOCODER_API_KEY",
		"FETCH_INTERVAL", "RETRY_MAX_ATTEMPTS", "RETRY_DELAY",
		"HTTP_TIMEOUT", "ICON_TIMEOUT", "PORT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	// Keep a stray .env in the working directory out of the picture.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.WeatherAPIURL != providers.DefaultWeatherAPIURL {
		t.Errorf("WeatherAPIURL = %q", cfg.WeatherAPIURL)
	}
	if cfg.FetchInterval != 15*time.Minute {
		t.Errorf("FetchInterval = %v", cfg.FetchInterval)
	}
	if cfg.Retry.MaxAttempts != weather.DefaultMaxAttempts || cfg.Retry.Delay != weather.DefaultRetryDelay {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.HTTPTimeout != 30*time.Second || cfg.IconTimeout != 10*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.HTTPTimeout, cfg.IconTimeout)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" {
		t.Errorf("Port = %q LogLevel = %q", cfg.Port, cfg.LogLevel)
	}
	if cfg.Location.File != "location.txt" || cfg.Location.Coordinates != nil {
		t.Errorf("Location = %+v", cfg.Location)
	}

	// No key anywhere: startup continues but the reason is kept.
	var ce *weather.ConfigurationError
	if cfg.WeatherAPIKey != "" || !errors.As(cfg.APIKeyErr, &ce) {
		t.Errorf("expected missing key to be reported, got %q / %v", cfg.WeatherAPIKey, cfg.APIKeyErr)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHERAPI_API_KEY", "  secret ")
	t.Setenv("WEATHER_LAT", "55.75")
	t.Setenv("WEATHER_LON", "37.62")
	t.Setenv("FETCH_INTERVAL", "5m")
	t.Setenv("RETRY_MAX_ATTEMPTS", "3")
	t.Setenv("RETRY_DELAY", "2s")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WeatherAPIKey != "secret" || cfg.APIKeyErr != nil {
		t.Errorf("WeatherAPIKey = %q err = %v", cfg.WeatherAPIKey, cfg.APIKeyErr)
	}
	if cfg.Location.Coordinates == nil || *cfg.Location.Coordinates != (weather.Coordinates{Lat: 55.75, Lon: 37.62}) {
		t.Errorf("Coordinates = %+v", cfg.Location.Coordinates)
	}
	if cfg.FetchInterval != 5*time.Minute || cfg.Retry.MaxAttempts != 3 || cfg.Retry.Delay != 2*time.Second {
		t.Errorf("unexpected schedule %v %+v", cfg.FetchInterval, cfg.Retry)
	}
	if cfg.Port != "9090" || cfg.LogLevel != "debug" {
		t.Errorf("Port = %q LogLevel = %q", cfg.Port, cfg.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"lat without lon", map[string]string{"WEATHER_LAT": "10"}},
		{"latitude out of range", map[string]string{"WEATHER_LAT": "91", "WEATHER_LON": "0"}},
		{"bad duration", map[string]string{"FETCH_INTERVAL": "often"}},
		{"zero retry attempts", map[string]string{"RETRY_MAX_ATTEMPTS": "0"}},
		{"non-numeric port", map[string]string{"PORT": "http"}},
		{"unknown log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"bad url", map[string]string{"WEATHERAPI_URL": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestResolveAPIKey(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "api.key")
	if err := os.WriteFile(keyFile, []byte("\ufefffile-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	emptyFile := filepath.Join(dir, "empty.key")
	if err := os.WriteFile(emptyFile, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if key, err := ResolveAPIKey("env-key", keyFile); err != nil || key != "env-key" {
		t.Errorf("env value should win, got %q %v", key, err)
	}
	if key, err := ResolveAPIKey("", keyFile); err != nil || key != "file-key" {
		t.Errorf("file fallback: got %q %v", key, err)
	}

	var ce *weather.ConfigurationError
	if _, err := ResolveAPIKey("", emptyFile); !errors.As(err, &ce) {
		t.Errorf("empty file: got %v", err)
	}
	if _, err := ResolveAPIKey(" ", filepath.Join(dir, "missing.key")); !errors.As(err, &ce) {
		t.Errorf("missing file: got %v", err)
	}
}
