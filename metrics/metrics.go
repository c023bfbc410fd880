// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package metrics contains the counters the Executor publishes for a
// build run: how many Producer partitions were invoked, skipped as
// already-built, or failed validation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// GlobalRegistry is the process-wide Prometheus registry Artigraph
// registers its collectors into, mirroring the teacher's
// GlobalMetricsRegistry singleton.
var GlobalRegistry *prometheus.Registry

func init() {
	ResetGlobalRegistry()
}

// ResetGlobalRegistry resets GlobalRegistry to a fresh, empty registry.
// Exposed primarily so tests that construct many Executors don't try to
// register duplicate collectors.
func ResetGlobalRegistry() {
	GlobalRegistry = prometheus.NewRegistry()
}

// Run is a set of build counters. An Executor holds one Run and records
// every one of its Build calls into it.
type Run struct {
	mu                 sync.Mutex
	producerInvocation *prometheus.CounterVec
	partitionBuilt     *prometheus.CounterVec
	partitionSkipped   *prometheus.CounterVec
	partitionFailed    *prometheus.CounterVec
}

// NewRun registers a fresh set of counters into reg (GlobalRegistry if nil)
// and returns a Run wrapping them.
func NewRun(reg *prometheus.Registry) *Run {
	if reg == nil {
		reg = GlobalRegistry
	}
	r := &Run{
		producerInvocation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "artigraph_producer_invocations_total",
			Help: "Number of times a Producer's build function was invoked for a partition.",
		}, []string{"producer"}),
		partitionBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "artigraph_partitions_built_total",
			Help: "Number of output partitions built and persisted.",
		}, []string{"producer"}),
		partitionSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "artigraph_partitions_skipped_total",
			Help: "Number of output partitions skipped because they were already built.",
		}, []string{"producer"}),
		partitionFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "artigraph_partitions_failed_total",
			Help: "Number of output partitions that failed output validation.",
		}, []string{"producer"}),
	}
	// Best-effort: a registry shared across Runs will already have these
	// registered after the first Run; duplicate-registration errors are
	// expected and ignored so every Run can still record locally.
	_ = reg.Register(r.producerInvocation)
	_ = reg.Register(r.partitionBuilt)
	_ = reg.Register(r.partitionSkipped)
	_ = reg.Register(r.partitionFailed)
	return r
}

// RecordInvocation records one Producer.build invocation for producer.
func (r *Run) RecordInvocation(producer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.producerInvocation.WithLabelValues(producer).Inc()
}

// RecordBuilt records one output partition built and persisted for producer.
func (r *Run) RecordBuilt(producer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partitionBuilt.WithLabelValues(producer).Inc()
}

// RecordSkipped records one output partition skipped as already built.
func (r *Run) RecordSkipped(producer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partitionSkipped.WithLabelValues(producer).Inc()
}

// RecordFailed records one output partition that failed validation.
func (r *Run) RecordFailed(producer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partitionFailed.WithLabelValues(producer).Inc()
}
