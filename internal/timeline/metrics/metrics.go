package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks timeline loads.
type Metrics struct {
	LoadDuration prometheus.Histogram
	FeedSize     prometheus.Histogram
	LoadErrors   *prometheus.CounterVec
}

// New registers the timeline metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "crmdir_timeline_load_duration_seconds",
			Help:    "Duration of loading and merging a client's six record sets",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		FeedSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "crmdir_timeline_items",
			Help:    "Items in a merged client timeline before windowing",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		LoadErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crmdir_timeline_load_errors_total",
			Help: "Failed record-set loads by kind",
		}, []string{"kind"}),
	}
}

// ObserveLoad records the duration of a timeline load.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveLoad(start time.Time) {
	m.LoadDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveFeedSize(n int) {
	m.FeedSize.Observe(float64(n))
}

func (m *Metrics) RecordLoadError(kind string) {
	m.LoadErrors.WithLabelValues(kind).Inc()
}
