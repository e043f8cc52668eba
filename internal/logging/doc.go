// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

// Package logging provides centralized zerolog-based structured logging for phalanx.
//
// Both the master and the worker processes log through a single global
// zerolog logger configured by Init. Worker processes add a "worker" field so
// that interleaved output on a shared stderr can be told apart.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int("count", 4).Msg("Starting workers")
//	logging.Ctx(r.Context()).Warn().Msg("Slow upstream")
//
// # Request Context
//
// The request-id middleware stores the id with ContextWithRequestID; Ctx
// returns a logger that carries it as "request_id".
//
// # slog Bridge
//
// SlogHandler adapts the zerolog logger to log/slog so that libraries
// expecting *slog.Logger (sutureslog for supervisor events) write through the
// same output.
//
// # Destinations
//
// OpenOutput resolves the configured error-log and access-log destinations:
// an empty path selects the given fallback stream, "-" discards output, and
// anything else is opened for appending.
package logging
