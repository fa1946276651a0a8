// Package metrics holds the Prometheus collectors recorded by the crawler.
//
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "liveboard"

// Failure kinds used as the "kind" label of the failure counter.
const (
	KindNavigation = "navigation"
	KindExtraction = "extraction"
	KindPublish    = "publish"
)

// Metrics records tick outcomes and registry size.
type Metrics struct {
	ticks       *prometheus.CounterVec
	failures    *prometheus.CounterVec
	activeTasks prometheus.Gauge
	extraction  prometheus.Histogram
}

// New creates the collectors and registers them on reg.
// It panics if they are already registered there.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ticks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Completed ticks by result.",
		}, []string{"result"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_failures_total",
			Help:      "Task failures by kind.",
		}, []string{"kind"}),
		activeTasks: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_tasks",
			Help:      "Poll tasks currently registered.",
		}),
		extraction: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_seconds",
			Help:      "Time spent reading and parsing a rendered live board.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// TickSucceeded counts a tick whose snapshot was published.
func (m *Metrics) TickSucceeded() {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues("success").Inc()
}

// TickFailed counts a failed tick and the task failure it causes.
func (m *Metrics) TickFailed(kind string) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues("failure").Inc()
	m.failures.WithLabelValues(kind).Inc()
}

// NavigationFailed counts a target skipped at startup.
func (m *Metrics) NavigationFailed() {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(KindNavigation).Inc()
}

// SetActiveTasks records the registry size.
func (m *Metrics) SetActiveTasks(n int) {
	if m == nil {
		return
	}
	m.activeTasks.Set(float64(n))
}

// ObserveExtraction records how long one extraction took.
func (m *Metrics) ObserveExtraction(d time.Duration) {
	if m == nil {
		return
	}
	m.extraction.Observe(d.Seconds())
}
