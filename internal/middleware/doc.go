// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

/*
Package middleware provides the HTTP middleware every worker installs in
front of the application routes.

Key Components:

  - RequestID: honours or generates X-Request-ID and stores it in the
    request context for logging
  - AccessLog: one line per request in the classic morgan layout
  - PrometheusMetrics: request count, latency and in-flight gauge by chi
    route pattern

All middleware use the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(accessWriter))
	r.Use(middleware.PrometheusMetrics)

Access log line format:

	2026-01-02T15:04:05.000Z [10.0.0.7] "GET /test-3 HTTP/1.1" 400 64 0.412 - 6f1c...

The fields are date, remote address, request line, status, response
Content-Length ("-" when unknown), response time in milliseconds and the
request id.
*/
package middleware
