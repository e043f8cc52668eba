// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/phalanx/internal/config"
	"github.com/tomtom215/phalanx/internal/logging"
)

// readHeaderTimeout caps slow-header clients independently of ReadTimeout.
const readHeaderTimeout = 10 * time.Second

// New returns an *http.Server for handler using the configured timeouts.
// The server has no address; it is meant to be run on an inherited listener.
// Internal server errors (TLS handshakes, hijack failures) are logged at
// warn level under the "http" component.
func New(cfg *config.HTTPConfig, handler http.Handler) *http.Server {
	httpLogger := logging.WithComponent("http").Level(zerolog.WarnLevel)

	return &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          log.New(serverLogWriter{httpLogger}, "", 0),
	}
}

// serverLogWriter forwards net/http's internal log lines to zerolog.
type serverLogWriter struct {
	logger zerolog.Logger
}

func (w serverLogWriter) Write(p []byte) (int, error) {
	w.logger.Warn().Msg(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
