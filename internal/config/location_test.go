package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-widget/internal/weather"
)

func TestParseLocationText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    weather.Coordinates
		wantErr bool
	}{
		{"plain", "55.7558,37.6173", weather.Coordinates{Lat: 55.7558, Lon: 37.6173}, false},
		{"spaces and newline", " 59.93 , 30.31 \n", weather.Coordinates{Lat: 59.93, Lon: 30.31}, false},
		{"byte order mark", "\ufeff53.2,50.15", weather.Coordinates{Lat: 53.2, Lon: 50.15}, false},
		{"zero width space", "53.2,\u200b50.15", weather.Coordinates{Lat: 53.2, Lon: 50.15}, false},
		{"trailing comma", "10,20,", weather.Coordinates{Lat: 10, Lon: 20}, false},
		{"negative", "-33.86,151.2", weather.Coordinates{Lat: -33.86, Lon: 151.2}, false},
		{"single value", "55.75", weather.Coordinates{}, true},
		{"three values", "1,2,3", weather.Coordinates{}, true},
		{"empty", "", weather.Coordinates{}, true},
		{"not a number", "north,east", weather.Coordinates{}, true},
		{"longitude out of range", "10,181", weather.Coordinates{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLocationText(tt.input)
			if tt.wantErr {
				var ce *weather.ConfigurationError
				if !errors.As(err, &ce) {
					t.Fatalf("expected ConfigurationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFileLocator_ReReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "location.txt")
	loc := FileLocator{Path: path}

	var ce *weather.ConfigurationError
	if _, err := loc.Locate(context.Background()); !errors.As(err, &ce) {
		t.Fatalf("missing file: expected ConfigurationError, got %v", err)
	}

	if err := os.WriteFile(path, []byte("55.75,37.62"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := loc.Locate(context.Background())
	if err != nil || got != (weather.Coordinates{Lat: 55.75, Lon: 37.62}) {
		t.Fatalf("got %+v %v", got, err)
	}

	if err := os.WriteFile(path, []byte("59.93,30.31"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = loc.Locate(context.Background())
	if err != nil || got != (weather.Coordinates{Lat: 59.93, Lon: 30.31}) {
		t.Fatalf("edited file not picked up: %+v %v", got, err)
	}
}

func TestGeocodeLocator_CachesSuccess(t *testing.T) {
	calls := 0
	loc := NewGeocodeLocator("Казань", "Россия", "key")
	loc.geocode = func(apiKey string, address geocoder.Address) (geocoder.Location, error) {
		calls++
		if apiKey != "key" || address.City != "Казань" || address.Country != "Россия" {
			t.Errorf("unexpected request %q %+v", apiKey, address)
		}
		if calls == 1 {
			return geocoder.Location{}, errors.New("OVER_QUERY_LIMIT")
		}
		return geocoder.Location{Latitude: 55.79, Longitude: 49.12}, nil
	}

	var ce *weather.ConfigurationError
	if _, err := loc.Locate(context.Background()); !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := loc.Locate(context.Background())
		if err != nil || got != (weather.Coordinates{Lat: 55.79, Lon: 49.12}) {
			t.Fatalf("got %+v %v", got, err)
		}
	}
	if calls != 2 {
		t.Errorf("geocoder calls = %d, want 2", calls)
	}
}

func TestNewLocator_Precedence(t *testing.T) {
	coords := &weather.Coordinates{Lat: 1, Lon: 2}

	if _, ok := NewLocator(LocationConfig{Coordinates: coords, City: "Омск", GeocoderAPIKey: "k"}).(StaticLocator); !ok {
		t.Error("static coordinates should win")
	}
	if _, ok := NewLocator(LocationConfig{City: "Омск", GeocoderAPIKey: "k", File: "x"}).(*GeocodeLocator); !ok {
		t.Error("city with a geocoder key should geocode")
	}
	if fl, ok := NewLocator(LocationConfig{City: "Омск", File: "loc.txt"}).(FileLocator); !ok || fl.Path != "loc.txt" {
		t.Error("without a geocoder key the file should be used")
	}
}
