// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package server

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/phalanx/internal/config"
	"github.com/tomtom215/phalanx/internal/errorlog"
)

// corsMaxAge is the preflight cache lifetime in seconds.
const corsMaxAge = 86400

// MiddlewareConfig holds the settings for the ecosystem middleware the router
// installs.
type MiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc
}

// MiddlewareConfigFromHTTP derives the middleware settings from the http
// config section.
func MiddlewareConfigFromHTTP(cfg *config.HTTPConfig) *MiddlewareConfig {
	keyFunc := httprate.KeyByIP
	if cfg.TrustProxy {
		keyFunc = httprate.KeyByRealIP
	}
	return &MiddlewareConfig{
		CORSAllowedOrigins: cfg.CORSOrigins,
		CORSAllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		CORSAllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		CORSExposedHeaders: []string{"X-Request-ID"},
		CORSMaxAge:         corsMaxAge,

		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		RateLimitDisabled: cfg.RateLimitDisabled,
		RateLimitKeyFunc:  keyFunc,
	}
}

func passthrough(next http.Handler) http.Handler { return next }

// CORS returns go-chi/cors middleware, or a no-op when no origins are
// configured.
func (m *MiddlewareConfig) CORS() func(http.Handler) http.Handler {
	if len(m.CORSAllowedOrigins) == 0 {
		return passthrough
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   m.CORSAllowedOrigins,
		AllowedMethods:   m.CORSAllowedMethods,
		AllowedHeaders:   m.CORSAllowedHeaders,
		ExposedHeaders:   m.CORSExposedHeaders,
		AllowCredentials: m.CORSAllowCredentials,
		MaxAge:           m.CORSMaxAge,
	})
}

// RateLimit returns go-chi/httprate middleware. Rejected requests are
// served as Status(429) through the normalizer.
func (m *MiddlewareConfig) RateLimit(n *errorlog.Normalizer) func(http.Handler) http.Handler {
	if m.RateLimitDisabled {
		return passthrough
	}

	keyFunc := m.RateLimitKeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		m.RateLimitRequests,
		m.RateLimitWindow,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			n.ServeError(w, r, errorlog.Status(http.StatusTooManyRequests))
		}),
	)
}
