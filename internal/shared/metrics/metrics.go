package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	submissionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assessment_submissions_started_total",
		Help: "Total assessment submissions accepted for processing",
	})
	submissionsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assessment_submissions_completed_total",
		Help: "Total assessment submissions completed with parsed recommendations",
	})
	submissionsFallback = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_submissions_fallback_total",
		Help: "Total assessment submissions answered with the fallback document",
	}, []string{"reason"})
	providerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assessment_provider_duration_ms",
		Help:    "Completion provider call duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	}, []string{"provider", "outcome"})
)

func init() {
	registry.MustRegister(
		submissionsStarted,
		submissionsCompleted,
		submissionsFallback,
		providerDuration,
		prometheus.NewGoCollector(),
	)
}

// IncSubmissionStarted increments the started counter.
func IncSubmissionStarted() {
	submissionsStarted.Inc()
}

// IncSubmissionCompleted increments the completed counter.
func IncSubmissionCompleted() {
	submissionsCompleted.Inc()
}

// IncSubmissionFallback increments the fallback counter for the given reason.
func IncSubmissionFallback(reason string) {
	if reason == "" {
		reason = "provider_error"
	}
	submissionsFallback.WithLabelValues(reason).Inc()
}

// ObserveProviderDuration records how long a completion call took.
func ObserveProviderDuration(provider, outcome string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	providerDuration.WithLabelValues(provider, outcome).Observe(float64(d.Microseconds()) / 1000.0)
}

var dbStatsOnce sync.Once

// RegisterDBStats exports connection pool stats for db. Only the first call registers.
func RegisterDBStats(db *sql.DB, name string) {
	if db == nil {
		return
	}
	dbStatsOnce.Do(func() {
		registry.MustRegister(collectors.NewDBStatsCollector(db, name))
	})
}

// Registry exposes the metrics registry, mainly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
