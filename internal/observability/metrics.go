package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_overview"

// Metrics holds the Prometheus collectors for overview generation.
type Metrics struct {
	OverviewRequests *prometheus.CounterVec // labels: outcome={success,resolve_error,fetch_error,aggregate_error}
	OverviewDuration prometheus.Histogram
	CacheLookups     *prometheus.CounterVec // labels: result={hit,miss}
	WindDays         *prometheus.CounterVec // labels: band={normal,strong,storm}
	ArchiveErrors    prometheus.Counter
	ScheduledRuns    prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OverviewRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overview_requests_total",
			Help:      "Overview generations by outcome.",
		}, []string{"outcome"}),
		OverviewDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overview_duration_seconds",
			Help:      "Duration of resolve, fetch and aggregation for one place.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Overview cache lookups by result.",
		}, []string{"result"}),
		WindDays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wind_days_total",
			Help:      "Classified wind days by severity band.",
		}, []string{"band"}),
		ArchiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_errors_total",
			Help:      "Failed writes to the daily summary archive.",
		}),
		ScheduledRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_runs_total",
			Help:      "Completed preset refresh runs.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.OverviewRequests,
			m.OverviewDuration,
			m.CacheLookups,
			m.WindDays,
			m.ArchiveErrors,
			m.ScheduledRuns,
		)
	}
	return m
}
