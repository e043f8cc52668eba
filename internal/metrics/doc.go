// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

/*
Package metrics provides Prometheus metrics for phalanx.

All collectors are registered with the default registry through promauto.
Each process keeps its own registry: the master records worker supervision
metrics, workers record request and error-normalization metrics and expose
them on the configured metrics path (default /metrics).

# Available Metrics

Request metrics (workers):
  - phalanx_http_requests_total{method, route, status_code}
  - phalanx_http_request_duration_seconds{method, route}
  - phalanx_http_active_requests

Error normalization (workers):
  - phalanx_errors_normalized_total{status_code, kind}

Supervision (master):
  - phalanx_worker_starts_total{worker}
  - phalanx_worker_exits_total{worker, reason}
  - phalanx_workers_ready
  - phalanx_worker_uptime_seconds{worker}

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
