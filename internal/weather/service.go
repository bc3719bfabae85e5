package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Status is the externally visible state of the fetch pipeline.
type Status struct {
	CycleID     string     `json:"cycleId,omitempty"`
	InFlight    bool       `json:"inFlight"`
	LastState   CycleState `json:"lastState,omitempty"`
	Attempt     int        `json:"attempt"`
	MaxAttempts int        `json:"maxAttempts"`
	// Message is the transient per-attempt error text; it is cleared when a
	// cycle ends.
	Message     string    `json:"message,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
	LastSuccess time.Time `json:"lastSuccess,omitempty"`
	Generation  uint64    `json:"generation"`
}

// Option configures a Service.
type Option func(*Service)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Service) { s.retrier = NewRetrier(p) }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the telemetry recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// Service runs fetch cycles against the provider and publishes the resulting
// snapshot to the store. At most one cycle runs at a time.
type Service struct {
	provider Provider
	locator  Locator
	store    Store
	retrier  *Retrier
	metrics  MetricsRecorder
	logger   *zap.Logger

	inFlight *atomic.Bool

	mu     sync.RWMutex
	status Status
}

// NewService creates a new Service.
func NewService(provider Provider, locator Locator, store Store, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		locator:  locator,
		store:    store,
		retrier:  NewRetrier(DefaultRetryPolicy()),
		logger:   zap.NewNop(),
		inFlight: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status.MaxAttempts = s.retrier.Policy().MaxAttempts
	return s
}

// FetchWeather runs one retry-controlled cycle for the given coordinates.
func (s *Service) FetchWeather(ctx context.Context, lat, lon float64) (Snapshot, error) {
	coords := Coordinates{Lat: lat, Lon: lon}
	if !s.acquire() {
		return Snapshot{}, ErrCycleInFlight
	}
	defer s.release()

	res := s.runCycle(ctx, func(ctx context.Context) (Snapshot, error) {
		return s.fetch(ctx, coords)
	})
	return res.Snapshot, cycleError(res)
}

// Refresh runs one cycle for the coordinates supplied by the locator.
func (s *Service) Refresh(ctx context.Context) (CycleResult, error) {
	if !s.acquire() {
		return CycleResult{State: CycleRejected}, ErrCycleInFlight
	}
	defer s.release()

	res := s.runCycle(ctx, s.locateAndFetch)
	return res, cycleError(res)
}

// StartRefresh admits a cycle and runs it in the background. It returns
// ErrCycleInFlight without starting anything when a cycle is already running.
func (s *Service) StartRefresh(ctx context.Context) error {
	if !s.acquire() {
		return ErrCycleInFlight
	}

	go func() {
		defer s.release()
		s.runCycle(ctx, s.locateAndFetch)
	}()
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (Snapshot, error) {
	return s.store.GetLatest()
}

// Status returns a copy of the current pipeline status.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.InFlight = s.inFlight.Load()
	st.Generation = s.store.Generation()
	return st
}

func (s *Service) acquire() bool {
	if s.inFlight.CAS(false, true) {
		return true
	}
	s.logger.Warn("fetch cycle rejected: another cycle is in flight")
	if s.metrics != nil {
		s.metrics.ObserveCycle(CycleRejected)
	}
	return false
}

func (s *Service) release() {
	s.inFlight.Store(false)
}

func (s *Service) locateAndFetch(ctx context.Context) (Snapshot, error) {
	if s.locator == nil {
		return Snapshot{}, &ConfigurationError{Field: "location", Reason: "no location source configured"}
	}
	coords, err := s.locator.Locate(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("locate: %w", err)
	}
	return s.fetch(ctx, coords)
}

func (s *Service) fetch(ctx context.Context, coords Coordinates) (Snapshot, error) {
	start := time.Now()
	snapshot, err := s.provider.Fetch(ctx, coords)
	if s.metrics != nil {
		s.metrics.ObserveAttempt(s.provider.Name(), err, time.Since(start))
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch weather for (%s): %w", coords.Key(), err)
	}
	return snapshot, nil
}

// runCycle must be called with the in-flight gate held.
func (s *Service) runCycle(ctx context.Context, attempt AttemptFunc) CycleResult {
	id := uuid.NewString()
	log := s.logger.With(zap.String("cycle_id", id))
	maxAttempts := s.retrier.Policy().MaxAttempts

	s.mu.Lock()
	s.status.CycleID = id
	s.status.Attempt = 0
	s.status.MaxAttempts = maxAttempts
	s.mu.Unlock()

	log.Debug("fetch cycle started", zap.Int("max_attempts", maxAttempts))

	res := s.retrier.Run(ctx, func(ctx context.Context) (Snapshot, error) {
		s.mu.Lock()
		s.status.Attempt++
		s.mu.Unlock()
		return attempt(ctx)
	}, func(n, total int, err error) {
		msg := fmt.Sprintf("Ошибка (%d/%d): %v", n, total, err)
		s.mu.Lock()
		s.status.Message = msg
		s.status.LastError = err.Error()
		s.mu.Unlock()
		log.Warn("fetch attempt failed", zap.Int("attempt", n), zap.Int("max_attempts", total), zap.Error(err))
	})
	res.ID = id

	s.mu.Lock()
	s.status.LastState = res.State
	s.status.Message = ""
	if res.State == CycleSucceeded {
		s.status.LastError = ""
		s.status.LastSuccess = res.Snapshot.FetchedAt
	}
	s.mu.Unlock()

	switch res.State {
	case CycleSucceeded:
		s.store.SaveSnapshot(res.Snapshot)
		if s.metrics != nil {
			s.metrics.SetLastSuccess(res.Snapshot.FetchedAt)
		}
		log.Info("weather data loaded",
			zap.String("location", res.Snapshot.Location),
			zap.Float64("temperature_c", res.Snapshot.TemperatureC),
			zap.Int("attempts", res.Attempts),
			zap.Int("failures", len(res.Failures)),
		)
	case CycleExhausted:
		log.Error("weather fetch exhausted; waiting for next scheduled cycle",
			zap.Int("attempts", res.Attempts), zap.Error(res.Err()))
	case CycleCancelled:
		log.Warn("fetch cycle cancelled", zap.Int("attempts", res.Attempts), zap.Error(res.Err()))
	}

	if s.metrics != nil {
		s.metrics.ObserveCycle(res.State)
	}
	return res
}

func cycleError(res CycleResult) error {
	switch res.State {
	case CycleSucceeded:
		return nil
	case CycleExhausted:
		return fmt.Errorf("weather fetch failed after %d attempts: %w", res.Attempts, res.Err())
	default:
		return fmt.Errorf("weather fetch cycle %s: %w", res.State, res.Err())
	}
}
