package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates Prometheus instruments for the execution engine.
// A nil *Metrics is valid and records nothing, so wiring stays optional
// in tests.
type Metrics struct {
	tasksTotal    *prometheus.CounterVec
	attemptsTotal prometheus.Counter
	executing     prometheus.Gauge
	taskDuration  prometheus.Histogram
	layerDuration prometheus.Histogram
	gateFailures  *prometheus.CounterVec
}

// New registers the engine's instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskgrid",
			Name:      "tasks_total",
			Help:      "Tasks finished, by terminal status.",
		}, []string{"status"}),
		attemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taskgrid",
			Name:      "attempts_total",
			Help:      "Execution attempts started, including retries.",
		}),
		executing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taskgrid",
			Name:      "executing_tasks",
			Help:      "Tasks currently inside a capability call.",
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taskgrid",
			Name:      "task_duration_seconds",
			Help:      "Wall time of a single task attempt.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
		layerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taskgrid",
			Name:      "layer_duration_seconds",
			Help:      "Wall time of a full scheduling layer.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
		gateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskgrid",
			Name:      "gate_failures_total",
			Help:      "Quality gate rejections, by gate name.",
		}, []string{"gate"}),
	}
	reg.MustRegister(m.tasksTotal, m.attemptsTotal, m.executing,
		m.taskDuration, m.layerDuration, m.gateFailures)
	return m
}

func (m *Metrics) TaskFinished(status string) {
	if m == nil {
		return
	}
	m.tasksTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) AttemptStarted() {
	if m == nil {
		return
	}
	m.attemptsTotal.Inc()
	m.executing.Inc()
}

func (m *Metrics) AttemptFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.executing.Dec()
	m.taskDuration.Observe(d.Seconds())
}

func (m *Metrics) LayerFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.layerDuration.Observe(d.Seconds())
}

func (m *Metrics) GateFailed(gate string) {
	if m == nil {
		return
	}
	m.gateFailures.WithLabelValues(gate).Inc()
}
