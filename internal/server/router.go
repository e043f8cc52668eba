// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/phalanx/internal/config"
	"github.com/tomtom215/phalanx/internal/errorlog"
	"github.com/tomtom215/phalanx/internal/middleware"
)

// compressLevel is the gzip level used when http.compress is set.
const compressLevel = 5

// Env is what the application callback can see of its worker.
type Env struct {
	// Worker is the index of the worker process, or -1 outside a pool.
	Worker int
	// Settings and Locals are the free-form config sections.
	Settings map[string]any
	Locals   map[string]any
	// Errors serves handler errors. Use Errors.Handle to adapt handlers
	// that return an error.
	Errors *errorlog.Normalizer
}

// App mounts application routes. It is called once per router.
type App func(r chi.Router, env Env)

// RouterOption customizes NewRouter.
type RouterOption func(*routerOptions)

type routerOptions struct {
	worker int
}

// WithWorker records the worker index handed to the application.
func WithWorker(index int) RouterOption {
	return func(o *routerOptions) { o.worker = index }
}

// NewRouter builds the worker's HTTP handler. accessLog receives one line
// per request; nil disables the access log. A nil app mounts no routes, so
// every request is answered with Status(404).
func NewRouter(cfg *config.Config, n *errorlog.Normalizer, accessLog io.Writer, app App, opts ...RouterOption) http.Handler {
	o := routerOptions{worker: -1}
	for _, opt := range opts {
		opt(&o)
	}

	mw := MiddlewareConfigFromHTTP(&cfg.HTTP)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.HTTP.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.AccessLog(accessLog))
	r.Use(middleware.PrometheusMetrics)
	r.Use(mw.CORS())
	r.Use(mw.RateLimit(n))
	if cfg.HTTP.Compress {
		r.Use(chimiddleware.Compress(compressLevel))
	}
	r.Use(n.Recoverer)

	if app != nil {
		app(r, Env{
			Worker:   o.worker,
			Settings: cfg.Settings,
			Locals:   cfg.Locals,
			Errors:   n,
		})
	}

	if cfg.HTTP.MetricsPath != "" {
		r.Handle(cfg.HTTP.MetricsPath, promhttp.Handler())
	}

	r.NotFound(n.NotFound)
	r.MethodNotAllowed(n.MethodNotAllowed)

	return r
}
