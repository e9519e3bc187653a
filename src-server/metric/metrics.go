package metric

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports calendar activity to prometheus. It satisfies
// calendar.Recorder.
type Metrics struct {
	eventsAdmitted *prometheus.CounterVec
	conflicts      *prometheus.CounterVec
	calendars      prometheus.Gauge
	queryDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg, reusing ones registered earlier under
// the same name.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		eventsAdmitted: register(reg, "calman_events_admitted_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calman_events_admitted_total",
			Help: "Events admitted into a calendar, by kind (single, recurring, copy)",
		}, []string{"kind"})),
		conflicts: register(reg, "calman_conflicts_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calman_conflicts_total",
			Help: "Admissions and edits rejected because of an overlapping event",
		}, []string{"op"})),
		calendars: register(reg, "calman_calendars", prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "calman_calendars",
			Help: "Number of registered calendars",
		})),
		queryDuration: register(reg, "calman_query_duration_seconds", prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "calman_query_duration_seconds",
			Help:    "Latency of calendar queries",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"op"})),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, name string, c T) T {
	if err := reg.Register(c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			slog.Error("can't register metric", "name", name, "error", err)
			return c
		}
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			slog.Error("metric registered with another type", "name", name)
			return c
		}
		slog.Debug("metric already registered", "name", name)
		return existing
	}
	slog.Debug("metric registered", "name", name)
	return c
}

func (m *Metrics) EventAdmitted(kind string, n int) {
	m.eventsAdmitted.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) ConflictDetected(op string) {
	m.conflicts.WithLabelValues(op).Inc()
}

func (m *Metrics) CalendarsChanged(n int) {
	m.calendars.Set(float64(n))
}

func (m *Metrics) QueryObserved(op string, d time.Duration) {
	m.queryDuration.WithLabelValues(op).Observe(d.Seconds())
}
