// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for event loop threads. One LoopMetrics may be shared
// by many loops; series are labelled by loop name. A nil *LoopMetrics is a
// valid no-op.

package control

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoopMetrics holds the loop collectors.
type LoopMetrics struct {
	Dispatched *prometheus.CounterVec
	Executed   *prometheus.CounterVec
	Discarded  *prometheus.CounterVec
	Panics     *prometheus.CounterVec
	QueueDepth *prometheus.GaugeVec
	CallWait   *prometheus.HistogramVec
}

// NewLoopMetrics registers the collectors with reg under namespace.
func NewLoopMetrics(reg prometheus.Registerer, namespace string) *LoopMetrics {
	f := promauto.With(reg)
	labels := []string{"loop"}
	return &LoopMetrics{
		Dispatched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "enqueued_total",
			Help:      "Closures enqueued onto the loop, by kind (dispatch or call)",
		}, append(labels, "kind")),
		Executed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "executed_total",
			Help:      "Closures executed on the loop thread",
		}, labels),
		Discarded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "discarded_total",
			Help:      "Queued dispatch closures dropped at shutdown",
		}, labels),
		Panics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "panics_total",
			Help:      "Dispatched closures that panicked",
		}, labels),
		QueueDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "queue_depth",
			Help:      "Closures waiting in the loop queue",
		}, labels),
		CallWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "call_wait_seconds",
			Help:      "Time a cross-thread Call spent blocked",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, labels),
	}
}

func (m *LoopMetrics) Enqueued(loop string, call bool, depth int) {
	if m == nil {
		return
	}
	kind := "dispatch"
	if call {
		kind = "call"
	}
	m.Dispatched.WithLabelValues(loop, kind).Inc()
	m.QueueDepth.WithLabelValues(loop).Set(float64(depth))
}

func (m *LoopMetrics) Ran(loop string, n, depth int) {
	if m == nil || n == 0 {
		return
	}
	m.Executed.WithLabelValues(loop).Add(float64(n))
	m.QueueDepth.WithLabelValues(loop).Set(float64(depth))
}

func (m *LoopMetrics) Dropped(loop string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Discarded.WithLabelValues(loop).Add(float64(n))
}

func (m *LoopMetrics) Panicked(loop string) {
	if m == nil {
		return
	}
	m.Panics.WithLabelValues(loop).Inc()
}

func (m *LoopMetrics) Waited(loop string, d time.Duration) {
	if m == nil {
		return
	}
	m.CallWait.WithLabelValues(loop).Observe(d.Seconds())
}
