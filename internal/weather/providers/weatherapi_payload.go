package providers

import (
	"strings"
	"time"

	"github.com/i474232898/weather-widget/internal/jsonfield"
	"github.com/i474232898/weather-widget/internal/weather"
)

// forecastResponse mirrors the forecast.json payload. Every leaf is a
// jsonfield.Value, so decoding never fails on a mistyped field; defaults are
// applied when the snapshot is assembled.
type forecastResponse struct {
	Location jsonfield.Value `json:"location"`
	Current  jsonfield.Value `json:"current"`
	Forecast jsonfield.Value `json:"forecast"`
	Error    jsonfield.Value `json:"error"`
}

type locationSection struct {
	Name      jsonfield.Value `json:"name"`
	TzID      jsonfield.Value `json:"tz_id"`
	Localtime jsonfield.Value `json:"localtime"`
}

type currentSection struct {
	TempC      jsonfield.Value `json:"temp_c"`
	Condition  jsonfield.Value `json:"condition"`
	Humidity   jsonfield.Value `json:"humidity"`
	PressureMb jsonfield.Value `json:"pressure_mb"`
	WindKph    jsonfield.Value `json:"wind_kph"`
	WindDegree jsonfield.Value `json:"wind_degree"`
	WindDir    jsonfield.Value `json:"wind_dir"`
}

type conditionSection struct {
	Text jsonfield.Value `json:"text"`
	Icon jsonfield.Value `json:"icon"`
}

type forecastDaySection struct {
	Day   jsonfield.Value `json:"day"`
	Astro jsonfield.Value `json:"astro"`
}

type daySection struct {
	DailyChanceOfRain jsonfield.Value `json:"daily_chance_of_rain"`
	DailyChanceOfSnow jsonfield.Value `json:"daily_chance_of_snow"`
}

type astroSection struct {
	Sunrise jsonfield.Value `json:"sunrise"`
	Sunset  jsonfield.Value `json:"sunset"`
}

func (r forecastResponse) serviceError() error {
	if !r.Error.IsPresent() {
		return nil
	}
	msg := r.Error.Field("message").String("")
	if msg == "" && r.Error.Kind() == jsonfield.KindString {
		msg = r.Error.String("")
	}
	if msg == "" {
		msg = "unknown error"
	}
	return &weather.ServiceError{
		Code:    r.Error.Field("code").Int(0),
		Message: msg,
	}
}

// snapshot validates the required sections and assembles the domain model.
func (r forecastResponse) snapshot(fetchedAt time.Time) (weather.Snapshot, error) {
	if err := r.serviceError(); err != nil {
		return weather.Snapshot{}, err
	}

	var (
		location locationSection
		current  currentSection
		day      forecastDaySection
	)
	if err := requireSection(r.Location, "location", &location); err != nil {
		return weather.Snapshot{}, err
	}
	if err := requireSection(r.Current, "current", &current); err != nil {
		return weather.Snapshot{}, err
	}
	if err := requireSection(r.Forecast.Field("forecastday").Index(0), "forecast.forecastday[0]", &day); err != nil {
		return weather.Snapshot{}, err
	}

	var (
		condition conditionSection
		daily     daySection
		astro     astroSection
	)
	optionalSection(current.Condition, &condition)
	optionalSection(day.Day, &daily)
	optionalSection(day.Astro, &astro)

	zone := locationZone(location.TzID.String(""))
	localNow := location.Localtime.String("")
	localTime, _ := weather.ParseLocalTime(localNow, zone)

	return weather.Snapshot{
		Location:     location.Name.String(weather.UnknownLocation),
		TemperatureC: current.TempC.Float(0),
		Description:  condition.Text.String(weather.NoDescription),
		IconURL:      iconURL(condition.Icon.String("")),

		HumidityPct: current.Humidity.Int(0),
		PressureHpa: pressureHpa(current.PressureMb),

		ChanceOfRainPct: daily.DailyChanceOfRain.IntPtr(),
		ChanceOfSnowPct: daily.DailyChanceOfSnow.IntPtr(),

		WindSpeedKph:  current.WindKph.Float(0),
		WindDirection: current.WindDir.String(weather.NoDescription),
		WindDegree:    current.WindDegree.Int(0),

		Sunrise: weather.ResolveSunEvent(astro.Sunrise.String(""), localNow, zone),
		Sunset:  weather.ResolveSunEvent(astro.Sunset.String(""), localNow, zone),

		LocalTime: localTime,
		FetchedAt: fetchedAt,
	}, nil
}

func requireSection(v jsonfield.Value, name string, dst any) error {
	if !v.IsObject() {
		return &weather.MalformedResponseError{Section: name}
	}
	if err := v.Decode(dst); err != nil {
		return &weather.MalformedResponseError{Section: name, Err: err}
	}
	return nil
}

// optionalSection leaves dst with absent fields when v is not an object.
func optionalSection(v jsonfield.Value, dst any) {
	if v.IsObject() {
		_ = v.Decode(dst)
	}
}

func pressureHpa(v jsonfield.Value) int {
	hpa := v.Int(weather.DefaultPressureHpa)
	if hpa <= 0 {
		return weather.DefaultPressureHpa
	}
	return hpa
}

// iconURL qualifies the protocol-relative icon path the API returns
// ("//cdn.weatherapi.com/..."). Anything that cannot be qualified is dropped.
func iconURL(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "http://"):
		return ref
	default:
		return ""
	}
}

func locationZone(tzID string) *time.Location {
	if tzID == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return time.UTC
	}
	return loc
}
