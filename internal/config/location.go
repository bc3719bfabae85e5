package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-widget/internal/weather"
)

// parseCoordinates parses a latitude/longitude pair and checks the ranges.
func parseCoordinates(latStr, lonStr string) (weather.Coordinates, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return weather.Coordinates{}, &weather.ConfigurationError{Field: "location", Reason: fmt.Sprintf("invalid latitude %q", latStr), Err: err}
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return weather.Coordinates{}, &weather.ConfigurationError{Field: "location", Reason: fmt.Sprintf("invalid longitude %q", lonStr), Err: err}
	}

	coords := weather.Coordinates{Lat: lat, Lon: lon}
	if err := validate.Struct(coords); err != nil {
		return weather.Coordinates{}, &weather.ConfigurationError{Field: "location", Reason: "coordinates out of range", Err: err}
	}
	return coords, nil
}

// StaticLocator always returns the same coordinates.
type StaticLocator struct {
	Coordinates weather.Coordinates
}

func (l StaticLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	return l.Coordinates, nil
}

// FileLocator reads "lat,lon" from a text file on every call, so edits to the
// file are picked up by the next fetch attempt without a restart.
type FileLocator struct {
	Path string
}

func (l FileLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return weather.Coordinates{}, &weather.ConfigurationError{
				Field:  "location",
				Reason: fmt.Sprintf("location file %q not found", l.Path),
			}
		}
		return weather.Coordinates{}, &weather.ConfigurationError{Field: "location", Reason: "cannot read location file", Err: err}
	}
	return parseLocationText(string(data))
}

func parseLocationText(text string) (weather.Coordinates, error) {
	text = strings.ReplaceAll(text, "\ufeff", "")
	text = strings.ReplaceAll(text, "\u200b", "")

	var parts []string
	for _, p := range strings.Split(text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != 2 {
		return weather.Coordinates{}, &weather.ConfigurationError{
			Field:  "location",
			Reason: fmt.Sprintf("expected \"lat,lon\", got %d value(s)", len(parts)),
		}
	}
	return parseCoordinates(parts[0], parts[1])
}

// GeocodeFunc resolves an address to coordinates.
type GeocodeFunc func(apiKey string, address geocoder.Address) (geocoder.Location, error)

// geocoder keeps its API key in a package variable.
var geocoderMu sync.Mutex

func googleGeocode(apiKey string, address geocoder.Address) (geocoder.Location, error) {
	geocoderMu.Lock()
	defer geocoderMu.Unlock()

	geocoder.ApiKey = apiKey
	return geocoder.Geocoding(address)
}

// GeocodeLocator resolves a city/country pair once and reuses the result.
// Failed lookups are not cached and are retried on the next call.
type GeocodeLocator struct {
	City    string
	Country string
	APIKey  string

	geocode GeocodeFunc

	mu     sync.Mutex
	cached *weather.Coordinates
}

func NewGeocodeLocator(city, country, apiKey string) *GeocodeLocator {
	return &GeocodeLocator{City: city, Country: country, APIKey: apiKey, geocode: googleGeocode}
}

func (l *GeocodeLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return *l.cached, nil
	}
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}

	geocode := l.geocode
	if geocode == nil {
		geocode = googleGeocode
	}

	loc, err := geocode(l.APIKey, geocoder.Address{City: l.City, Country: l.Country})
	if err != nil {
		return weather.Coordinates{}, &weather.ConfigurationError{
			Field:  "location",
			Reason: fmt.Sprintf("cannot geocode %q", l.address()),
			Err:    err,
		}
	}

	coords := weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}
	if err := validate.Struct(coords); err != nil {
		return weather.Coordinates{}, &weather.ConfigurationError{Field: "location", Reason: "geocoder returned coordinates out of range", Err: err}
	}
	l.cached = &coords
	return coords, nil
}

func (l *GeocodeLocator) address() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + ", " + l.Country
}

// NewLocator picks the coordinate source described by cfg.
func NewLocator(cfg LocationConfig) weather.Locator {
	switch {
	case cfg.Coordinates != nil:
		return StaticLocator{Coordinates: *cfg.Coordinates}
	case cfg.City != "" && cfg.GeocoderAPIKey != "":
		return NewGeocodeLocator(cfg.City, cfg.Country, cfg.GeocoderAPIKey)
	default:
		return FileLocator{Path: cfg.File}
	}
}
