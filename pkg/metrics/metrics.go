// Swap metrics
//
// Prometheus collectors for the swap coordinator:
// - Counter: swaps by result, references remapped, matrix guard skips
// - Gauge: extruder count of the last project
// - Histogram: time spent inside the swap critical section
//
// The CLI is short-lived, so metrics are exported through the node
// exporter textfile collector instead of an HTTP endpoint.
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Swap results
const (
	ResultApplied  = "applied"
	ResultIdentity = "identity"
	ResultRejected = "rejected"
)

// Reference kinds for RefsRemapped
const (
	KindTimeline = "timeline"
	KindVector   = "vector"
	KindObject   = "object"
)

// SwapMetrics holds all swap coordinator metrics. A nil *SwapMetrics is
// valid and records nothing.
type SwapMetrics struct {
	SwapsTotal    *prometheus.CounterVec
	RefsRemapped  *prometheus.CounterVec
	MatrixSkipped prometheus.Counter
	SwapDuration  prometheus.Histogram
	ExtruderCount prometheus.Gauge

	registry *prometheus.Registry
}

// NewSwapMetrics creates the collectors and registers them on a fresh
// registry.
func NewSwapMetrics() *SwapMetrics {
	m := &SwapMetrics{
		registry: prometheus.NewRegistry(),
	}

	m.SwapsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "filswap",
		Name:      "swaps_total",
		Help:      "Swap requests by result",
	}, []string{"result"})
	m.RefsRemapped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "filswap",
		Name:      "refs_remapped_total",
		Help:      "Extruder references rewritten by swaps",
	}, []string{"kind"})
	m.MatrixSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "filswap",
		Name:      "matrix_skipped_total",
		Help:      "Swaps that left a stale wipe matrix untouched",
	})
	m.SwapDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "filswap",
		Name:      "swap_duration_seconds",
		Help:      "Time spent applying a swap",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
	m.ExtruderCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "filswap",
		Name:      "extruder_count",
		Help:      "Extruder count of the last project swapped",
	})

	m.registry.MustRegister(
		m.SwapsTotal,
		m.RefsRemapped,
		m.MatrixSkipped,
		m.SwapDuration,
		m.ExtruderCount,
	)

	// Pre-create result series so a textfile always lists all three.
	for _, r := range []string{ResultApplied, ResultIdentity, ResultRejected} {
		m.SwapsTotal.WithLabelValues(r)
	}
	return m
}

// RecordSwap records one swap request and how long it took
func (m *SwapMetrics) RecordSwap(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SwapsTotal.WithLabelValues(result).Inc()
	if result != ResultRejected {
		m.SwapDuration.Observe(duration.Seconds())
	}
}

// RecordRemap adds remapped reference counts per kind
func (m *SwapMetrics) RecordRemap(timeline, vectors, objects int) {
	if m == nil {
		return
	}
	m.RefsRemapped.WithLabelValues(KindTimeline).Add(float64(timeline))
	m.RefsRemapped.WithLabelValues(KindVector).Add(float64(vectors))
	m.RefsRemapped.WithLabelValues(KindObject).Add(float64(objects))
}

// RecordMatrixSkip records a swap that could not touch the wipe matrix
func (m *SwapMetrics) RecordMatrixSkip() {
	if m == nil {
		return
	}
	m.MatrixSkipped.Inc()
}

// SetExtruderCount updates the extruder count gauge
func (m *SwapMetrics) SetExtruderCount(n int) {
	if m == nil {
		return
	}
	m.ExtruderCount.Set(float64(n))
}

// Registry returns the registry holding the collectors
func (m *SwapMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The file is replaced atomically.
func (m *SwapMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
