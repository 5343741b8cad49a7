package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for directory searches and exports.
type Metrics struct {
	SearchDuration prometheus.Histogram
	SearchResults  prometheus.Histogram
	SearchErrors   *prometheus.CounterVec
	Exports        prometheus.Counter
}

// New registers the directory metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "crmdir_directory_search_duration_seconds",
			Help:    "Duration of directory searches including the tenant load",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SearchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "crmdir_directory_search_matches",
			Help:    "Records matching a search before pagination",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		SearchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crmdir_directory_search_errors_total",
			Help: "Failed directory searches by error code",
		}, []string{"code"}),
		Exports: f.NewCounter(prometheus.CounterOpts{
			Name: "crmdir_directory_exports_total",
			Help: "Directory pages exported as spreadsheets",
		}),
	}
}

// ObserveSearch records the duration of a search.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSearch(start time.Time) {
	m.SearchDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveMatches(n int) {
	m.SearchResults.Observe(float64(n))
}

func (m *Metrics) RecordSearchError(code string) {
	m.SearchErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementExports() {
	m.Exports.Inc()
}
