// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package driver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for Benchmark Runs
// =============================================================================

// Metrics holds the collectors a Driver updates while running.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// samples counts timed sorts.
	// Labels: harness, label
	samples *prometheus.CounterVec

	// sampleTicks is the distribution of single-sample durations in ticks.
	// Labels: harness, variant (scalar, tuple)
	sampleTicks *prometheus.HistogramVec

	// iterations is the number of completed passes of the current run.
	// Labels: harness
	iterations *prometheus.GaugeVec

	// failures counts aborted runs.
	// Labels: harness
	failures *prometheus.CounterVec
}

// NewMetrics creates the driver collectors and registers them with reg.
//
// Inputs:
//
//	reg - Registry to register with. prometheus.DefaultRegisterer when nil.
//
// Outputs:
//
//	*Metrics - The collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		samples: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sortbench",
			Subsystem: "driver",
			Name:      "samples_total",
			Help:      "Total timed sorts",
		}, []string{"harness", "label"}),
		sampleTicks: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sortbench",
			Subsystem: "driver",
			Name:      "sample_ticks",
			Help:      "Ticks reported for a single sort",
			Buckets:   prometheus.ExponentialBuckets(1000, 10, 7),
		}, []string{"harness", "variant"}),
		iterations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sortbench",
			Subsystem: "driver",
			Name:      "iterations_completed",
			Help:      "Completed passes of the current run",
		}, []string{"harness"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sortbench",
			Subsystem: "driver",
			Name:      "failures_total",
			Help:      "Total aborted runs",
		}, []string{"harness"}),
	}
}

func (m *Metrics) observeSample(harness, label, variant string, ticks uint64) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(harness, label).Inc()
	m.sampleTicks.WithLabelValues(harness, variant).Observe(float64(ticks))
}

func (m *Metrics) setIterations(harness string, done int) {
	if m == nil {
		return
	}
	m.iterations.WithLabelValues(harness).Set(float64(done))
}

func (m *Metrics) recordFailure(harness string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(harness).Inc()
}
