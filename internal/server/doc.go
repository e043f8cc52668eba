// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

/*
Package server assembles the HTTP handler and *http.Server a worker runs.

NewRouter builds a chi router with the middleware chain applied in this
order:

	RequestID -> RealIP (trust_proxy) -> AccessLog -> PrometheusMetrics
	  -> CORS (cors_origins) -> RateLimit -> Compress (compress)
	  -> Recoverer -> application routes

After the application mounts its routes, the metrics endpoint is added at
http.metrics_path and the router's not-found and method-not-allowed handlers
are bound to the error normalizer, so unmatched requests produce the same
JSON error body and log record as a handler returning Status(404) or
Status(405). A request rejected by the rate limiter is answered with
Status(429) the same way.

The application callback runs exactly once per worker process, before the
fallback handlers are installed:

	handler := server.NewRouter(cfg, normalizer, accessLog, func(r chi.Router, env server.Env) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, "%v, world", env.Locals["salute"])
		})
	})
	srv := server.New(&cfg.HTTP, handler)
*/
package server
