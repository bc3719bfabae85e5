package weather

import (
	"strconv"
	"time"
)

const (
	// UnknownLocation is used when the payload carries no location name.
	UnknownLocation = "Неизвестно"
	// NoDescription is used when the payload carries no condition text.
	NoDescription = "—"
	// DefaultPressureHpa replaces missing or non-positive pressure readings.
	DefaultPressureHpa = 1013
)

// Coordinates identify the single tracked location.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Key formats the pair as "lat,lon" with a dot decimal separator, which is
// also the form the forecast endpoint expects in its q parameter.
func (c Coordinates) Key() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// Snapshot is the normalized weather view produced by one successful fetch.
// It is never mutated after construction; a new fetch replaces it wholesale.
type Snapshot struct {
	Location     string  `json:"location"`
	TemperatureC float64 `json:"temperatureC"`
	Description  string  `json:"description"`
	// IconURL is empty when the payload has no condition icon.
	IconURL string `json:"iconUrl,omitempty"`

	HumidityPct int `json:"humidityPct"`
	PressureHpa int `json:"pressureHpa"`

	// Nil chances are "not reported", which differs from a reported 0.
	ChanceOfRainPct *int `json:"chanceOfRainPct,omitempty"`
	ChanceOfSnowPct *int `json:"chanceOfSnowPct,omitempty"`

	WindSpeedKph  float64 `json:"windSpeedKph"`
	WindDirection string  `json:"windDirection"`
	WindDegree    int     `json:"windDegree"`

	// Zero Sunrise/Sunset means the event time could not be resolved.
	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`

	LocalTime time.Time `json:"localTime"`
	FetchedAt time.Time `json:"fetchedAt"` // always UTC
}

// PressureMmHg returns the pressure converted to millimetres of mercury.
func (s Snapshot) PressureMmHg() int {
	return PressureToMmHg(s.PressureHpa)
}

// WindMps returns the wind speed in whole metres per second.
func (s Snapshot) WindMps() int {
	return WindKphToMps(s.WindSpeedKph)
}

// WindDirectionLabel returns the localized compass label.
func (s Snapshot) WindDirectionLabel() string {
	return WindDirectionLabel(s.WindDirection)
}

// PrecipitationWarning is evaluated against the wall clock on every call, so
// the same snapshot may yield a different label across a month boundary.
func (s Snapshot) PrecipitationWarning() string {
	return s.PrecipitationWarningAt(time.Now())
}

// PrecipitationWarningAt evaluates the precipitation label for the given clock.
func (s Snapshot) PrecipitationWarningAt(now time.Time) string {
	return PrecipitationLabel(s.ChanceOfRainPct, s.ChanceOfSnowPct, now)
}

// HasSunrise reports whether the sunrise time was resolved.
func (s Snapshot) HasSunrise() bool { return !s.Sunrise.IsZero() }

// HasSunset reports whether the sunset time was resolved.
func (s Snapshot) HasSunset() bool { return !s.Sunset.IsZero() }
