// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Request Metrics (worker processes)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phalanx_http_requests_total",
			Help: "Total number of HTTP requests handled by this worker",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phalanx_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phalanx_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Error Normalization Metrics
	ErrorsNormalizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phalanx_errors_normalized_total",
			Help: "Total number of handler errors answered by the error normalizer",
		},
		[]string{"status_code", "kind"}, // kind: "status", "bag", "exception"
	)

	// Worker Supervision Metrics (master process)
	WorkerStartsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phalanx_worker_starts_total",
			Help: "Total number of worker process starts",
		},
		[]string{"worker"},
	)

	WorkerExitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phalanx_worker_exits_total",
			Help: "Total number of worker process exits",
		},
		[]string{"worker", "reason"}, // reason: "exit", "signal", "start_failed", "shutdown"
	)

	WorkersReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phalanx_workers_ready",
			Help: "Number of worker processes that reported a bound listener",
		},
	)

	WorkerUptime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phalanx_worker_uptime_seconds",
			Help:    "Lifetime of worker processes in seconds",
			Buckets: []float64{1, 10, 60, 300, 1800, 3600, 21600, 86400},
		},
		[]string{"worker"},
	)
)

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordNormalizedError records one error answered by the normalizer.
func RecordNormalizedError(statusCode int, kind string) {
	ErrorsNormalizedTotal.WithLabelValues(strconv.Itoa(statusCode), kind).Inc()
}

// RecordWorkerStart records a worker process start.
func RecordWorkerStart(worker int) {
	WorkerStartsTotal.WithLabelValues(strconv.Itoa(worker)).Inc()
}

// RecordWorkerExit records a worker process exit and its lifetime.
func RecordWorkerExit(worker int, reason string, uptime time.Duration) {
	label := strconv.Itoa(worker)
	WorkerExitsTotal.WithLabelValues(label, reason).Inc()
	if uptime > 0 {
		WorkerUptime.WithLabelValues(label).Observe(uptime.Seconds())
	}
}

// TrackWorkerReady adjusts the ready worker gauge.
func TrackWorkerReady(ready bool) {
	if ready {
		WorkersReady.Inc()
	} else {
		WorkersReady.Dec()
	}
}
