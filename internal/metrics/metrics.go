package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/i474232898/weather-widget/internal/weather"
)

// Collector provides fetch pipeline metrics.
type Collector struct {
	FetchAttemptsTotal *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec
	CyclesTotal        *prometheus.CounterVec
	LastSuccess        prometheus.Gauge
}

// NewCollector registers the collectors on reg under namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		FetchAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Weather fetch attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of single weather fetch attempts in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"provider"},
		),

		CyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_cycles_total",
				Help:      "Fetch cycles by terminal state",
			},
			[]string{"state"},
		),

		LastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful fetch",
			},
		),
	}
}

// ObserveAttempt records one fetch attempt.
func (c *Collector) ObserveAttempt(provider string, err error, elapsed time.Duration) {
	c.FetchAttemptsTotal.WithLabelValues(provider, outcome(err)).Inc()
	c.FetchDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveCycle records the terminal state of a cycle.
func (c *Collector) ObserveCycle(state weather.CycleState) {
	c.CyclesTotal.WithLabelValues(string(state)).Inc()
}

// SetLastSuccess records the time of the last successful fetch.
func (c *Collector) SetLastSuccess(t time.Time) {
	c.LastSuccess.Set(float64(t.Unix()))
}

func outcome(err error) string {
	var (
		transport *weather.TransportError
		service   *weather.ServiceError
		malformed *weather.MalformedResponseError
		configErr *weather.ConfigurationError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &transport):
		return "transport_error"
	case errors.As(err, &service):
		return "service_error"
	case errors.As(err, &malformed):
		return "malformed_response"
	case errors.As(err, &configErr):
		return "configuration_error"
	default:
		return "error"
	}
}
