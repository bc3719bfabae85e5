package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-widget/internal/weather"
)

// DefaultWeatherAPIURL is the WeatherAPI.com forecast endpoint.
const DefaultWeatherAPIURL = "https://api.weatherapi.com/v1/forecast.json"

// UserAgent is sent on every outbound request.
const UserAgent = "weather-widget/1.0"

const (
	forecastDays = "1"
	responseLang = "ru"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	openFor time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// WeatherAPIOption customizes a WeatherAPIProvider.
type WeatherAPIOption func(*WeatherAPIProvider)

// WithBaseURL points the provider at a different forecast endpoint.
func WithBaseURL(u string) WeatherAPIOption {
	return func(p *WeatherAPIProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithRetryDelay tells the provider how long the caller pauses between
// attempts; the circuit breaker reopens for a trial request within that pause.
func WithRetryDelay(d time.Duration) WeatherAPIOption {
	return func(p *WeatherAPIProvider) { p.openFor = breakerOpenFor(d) }
}

// WithLogger sets the provider logger.
func WithLogger(l *zap.Logger) WeatherAPIOption {
	return func(p *WeatherAPIProvider) { p.logger = l }
}

// NewWeatherAPIProvider creates a provider. An empty apiKey is not rejected
// here; every Fetch reports it as a configuration error instead.
func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...WeatherAPIOption) *WeatherAPIProvider {
	p := &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultWeatherAPIURL,
		httpCfg: HTTPClientConfig{
			Client:    client,
			UserAgent: UserAgent,
		},
		openFor: breakerOpenFor(weather.DefaultRetryDelay),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.circuit = newCircuitBreaker(p.name, p.openFor, p.logger)
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Fetch requests the one-day forecast for coords and normalizes it.
func (p *WeatherAPIProvider) Fetch(ctx context.Context, coords weather.Coordinates) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, &weather.ConfigurationError{
			Field:  "api key",
			Reason: "weatherapi api key is not configured",
		}
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI accepts "lat,lon" in q; Key always uses a dot decimal separator.
	values.Set("q", coords.Key())
	values.Set("days", forecastDays)
	values.Set("lang", responseLang)
	values.Set("aqi", "no")

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return weather.Snapshot{}, err
	}

	body, err := doRequest(ctx, p.httpCfg, p.circuit, req)
	if err != nil {
		return weather.Snapshot{}, err
	}

	var payload forecastResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Snapshot{}, &weather.MalformedResponseError{Section: "body", Err: err}
	}

	snapshot, err := payload.snapshot(p.now().UTC())
	if err != nil {
		return weather.Snapshot{}, err
	}

	p.logger.Debug("weatherapi forecast parsed",
		zap.String("location", snapshot.Location),
		zap.Bool("sunrise_resolved", snapshot.HasSunrise()),
		zap.Bool("sunset_resolved", snapshot.HasSunset()),
	)
	return snapshot, nil
}
