package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-widget/internal/weather"
)

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = 15 * time.Minute

// Refresher runs one fetch cycle.
type Refresher interface {
	Refresh(ctx context.Context) (weather.CycleResult, error)
}

// Scheduler periodically refreshes the current weather.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	interval  time.Duration
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler.
func New(interval time.Duration, service Refresher, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
		logger:    logger.Named("scheduler"),
	}
}

// Start schedules the refresh job and starts the underlying scheduler. The
// first cycle runs immediately; cycles stop when ctx is cancelled or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(s.run)
	if err != nil {
		s.cancel()
		return err
	}

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	if s.ctx.Err() != nil {
		return
	}

	s.logger.Debug("running weather refresh job")
	res, err := s.service.Refresh(s.ctx)
	switch {
	case err == nil:
		s.logger.Debug("weather refresh job completed", zap.String("cycle_id", res.ID), zap.Int("attempts", res.Attempts))
	case errors.Is(err, weather.ErrCycleInFlight):
		s.logger.Info("skipping scheduled refresh: a cycle is already running")
	default:
		// The service has already logged the failure in detail.
		s.logger.Debug("weather refresh job failed", zap.String("cycle_id", res.ID), zap.Error(err))
	}
}

// Stop cancels any running cycle and future jobs.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
