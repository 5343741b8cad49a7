package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks how location names get resolved and how the remote store behaves.
type Metrics struct {
	Resolutions   *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchErrors   *prometheus.CounterVec
	CacheSize     *prometheus.GaugeVec
}

// New registers the location metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crmdir_location_resolutions_total",
			Help: "Location name resolutions by level and the step that produced the name",
		}, []string{"level", "source"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crmdir_location_fetch_duration_seconds",
			Help:    "Duration of scoped fetches against the remote location store",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"level"}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crmdir_location_fetch_errors_total",
			Help: "Scoped fetches that failed or were skipped by the circuit breaker",
		}, []string{"level", "reason"}),
		CacheSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "crmdir_location_cache_entities",
			Help: "Entities held in the append-only location cache",
		}, []string{"level"}),
	}
}

// RecordResolution counts a resolution answered by source (cache, remote, masterdata, identity).
func (m *Metrics) RecordResolution(level, source string) {
	m.Resolutions.WithLabelValues(level, source).Inc()
}

// ObserveFetch records the duration of a scoped fetch.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveFetch(level string, start time.Time) {
	m.FetchDuration.WithLabelValues(level).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordFetchError(level, reason string) {
	m.FetchErrors.WithLabelValues(level, reason).Inc()
}

func (m *Metrics) SetCacheSize(level string, n int) {
	m.CacheSize.WithLabelValues(level).Set(float64(n))
}
