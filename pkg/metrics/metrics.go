// Package metrics instruments contract calls, transactions and event waits
// with Prometheus collectors. A nil *Metrics is valid and records nothing, so
// callers never need to guard their observations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fizz_sdk"

// Wait outcomes reported by ObserveWait.
const (
	WaitResolved = "resolved"
	WaitTimedOut = "timeout"
	WaitFailed   = "failed"
)

// Metrics groups the collectors exported by the SDK.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	waits    *prometheus.CounterVec
}

// New creates the SDK collectors and registers them with reg when reg is
// non-nil. Registering twice on the same registerer panics, as with any
// Prometheus collector.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_requests_total",
			Help:      "Contract calls and transactions by contract, method, kind and outcome.",
		}, []string{"contract", "method", "kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contract_request_duration_seconds",
			Help:      "Latency of contract calls and transaction submissions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"contract", "kind"}),
		waits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_waits_total",
			Help:      "Event waits by event name and outcome.",
		}, []string{"event", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.duration, m.waits)
	}
	return m
}

// ObserveRequest records one contract call ("call") or transaction
// submission ("transact") that started at start.
func (m *Metrics) ObserveRequest(contract, method, kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(contract, method, kind, outcome).Inc()
	m.duration.WithLabelValues(contract, kind).Observe(time.Since(start).Seconds())
}

// ObserveWait records the terminal state of an event wait.
func (m *Metrics) ObserveWait(event, outcome string) {
	if m == nil {
		return
	}
	m.waits.WithLabelValues(event, outcome).Inc()
}
