package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-daily-overview/internal/observability"
	"github.com/i474232898/weather-daily-overview/internal/weather"
)

// Refresher rebuilds overviews for a set of places. *weather.Service satisfies it.
type Refresher interface {
	Presets() []weather.LocationQuery
	Overviews(ctx context.Context, queries []weather.LocationQuery) map[string]weather.Overview
}

// Scheduler periodically refreshes the overviews of the preset places.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a new Scheduler. Nil logger and metrics fall back to defaults.
func New(service Refresher, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		timeout:   2 * time.Minute,
		logger:    logger.With("component", "scheduler"),
		metrics:   metrics,
	}
}

// Start schedules the refresh job, runs it once right away and starts the
// underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.service.Presets()) == 0 {
		s.logger.Info("no presets configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	if _, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(s.run); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval_minutes", minutes)
	return nil
}

func (s *Scheduler) run() {
	presets := s.service.Presets()
	s.logger.Info("refreshing presets", "count", len(presets))

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	got := s.service.Overviews(ctx, presets)
	s.metrics.ScheduledRuns.Inc()

	s.logger.Info("preset refresh completed",
		"ok", len(got),
		"failed", len(presets)-len(got),
		"took", time.Since(start),
	)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
