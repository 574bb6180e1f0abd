package weather

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-daily-overview/internal/observability"
)

// ServiceConfig holds the tunables of a Service.
type ServiceConfig struct {
	Window FetchWindow

	// CacheTTL is how long a stored overview is served without refetching.
	// Zero disables the cache lookup.
	CacheTTL time.Duration

	// Presets are the places offered for quick selection and refreshed by
	// the scheduler.
	Presets []LocationQuery
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the real clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l.With("component", "weather-service") }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithArchive enables writing every generated overview to an archive.
func WithArchive(a Archiver) Option {
	return func(s *Service) { s.archive = a }
}

// Service orchestrates resolving, fetching, aggregating and storing overviews.
type Service struct {
	resolver Resolver
	fetcher  Fetcher
	store    Store
	archive  Archiver
	cfg      ServiceConfig

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a new Service.
func NewService(store Store, resolver Resolver, fetcher Fetcher, cfg ServiceConfig, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		fetcher:  fetcher,
		store:    store,
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default().With("component", "weather-service"),
		metrics:  observability.NewMetrics(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Presets returns a copy of the configured preset places.
func (s *Service) Presets() []LocationQuery {
	out := make([]LocationQuery, len(s.cfg.Presets))
	copy(out, s.cfg.Presets)
	return out
}

// Overview returns a cached overview younger than the cache TTL, or builds
// and stores a fresh one.
func (s *Service) Overview(ctx context.Context, q LocationQuery) (Overview, error) {
	if s.cfg.CacheTTL > 0 && s.store != nil {
		if ov, err := s.store.GetLatest(q); err == nil && s.clock.Since(ov.GeneratedAt) < s.cfg.CacheTTL {
			s.metrics.CacheLookups.WithLabelValues("hit").Inc()
			// The cached copy may predate local midnight.
			if loc, err := time.LoadLocation(ov.Place.Timezone); err == nil {
				ov.Today = DateOf(s.clock.Now(), loc)
			}
			return ov, nil
		}
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return s.refresh(ctx, q)
}

// Refresh always fetches a new overview for q and stores it.
func (s *Service) Refresh(ctx context.Context, q LocationQuery) error {
	_, err := s.refresh(ctx, q)
	return err
}

// Overviews refreshes several places concurrently. Failed places are logged
// and left out of the result, keyed by LocationQuery.Key.
func (s *Service) Overviews(ctx context.Context, queries []LocationQuery) map[string]Overview {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make(map[string]Overview, len(queries))
	)

	for _, q := range queries {
		wg.Add(1)
		go func(q LocationQuery) {
			defer wg.Done()

			ov, err := s.refresh(ctx, q)
			if err != nil {
				s.logger.Warn("overview failed", "location", q.String(), "error", err)
				return
			}

			mu.Lock()
			out[q.Key()] = ov
			mu.Unlock()
		}(q)
	}

	wg.Wait()
	return out
}

// GetRange delegates to the underlying store. A Service without a store
// returns ErrNoHistory.
func (s *Service) GetRange(q LocationQuery, from, to time.Time) ([]Overview, error) {
	if s.store == nil {
		return nil, ErrNoHistory
	}
	return s.store.GetRange(q, from, to)
}

func (s *Service) refresh(ctx context.Context, q LocationQuery) (Overview, error) {
	start := s.clock.Now()
	defer func() {
		s.metrics.OverviewDuration.Observe(s.clock.Since(start).Seconds())
	}()

	place, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		s.metrics.OverviewRequests.WithLabelValues("resolve_error").Inc()
		return Overview{}, fmt.Errorf("resolve %q: %w", q.String(), err)
	}

	obs, err := s.fetcher.Fetch(ctx, place, s.cfg.Window)
	if err != nil {
		s.metrics.OverviewRequests.WithLabelValues("fetch_error").Inc()
		return Overview{}, fmt.Errorf("fetch %s: %w", place.Label(), err)
	}

	ov, err := Summarize(place, obs)
	if err != nil {
		s.metrics.OverviewRequests.WithLabelValues("aggregate_error").Inc()
		return Overview{}, fmt.Errorf("summarize %s: %w", place.Label(), err)
	}

	now := s.clock.Now()
	ov.ID = uuid.NewString()
	ov.Query = q
	ov.GeneratedAt = now.UTC()
	ov.Today = DateOf(now, obs.Timezone)

	for band, n := range ov.Wind.Counts() {
		s.metrics.WindDays.WithLabelValues(string(band)).Add(float64(n))
	}
	s.metrics.OverviewRequests.WithLabelValues("success").Inc()

	if s.store != nil {
		s.store.SaveOverview(q, ov)
	}
	if s.archive != nil {
		if err := s.archive.SaveOverview(ctx, ov); err != nil {
			s.metrics.ArchiveErrors.Inc()
			s.logger.Error("archive write failed", "location", q.String(), "error", err)
		}
	}

	s.logger.Debug("overview generated",
		"location", q.String(),
		"timezone", ov.Place.Timezone,
		"days", len(ov.Temperature),
		"wind_days", len(ov.Wind.Days),
	)
	return ov, nil
}
