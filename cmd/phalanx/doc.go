// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

// Package main is the entry point for the Phalanx server.
//
// The same binary runs in two roles. Started normally it is the master: it
// binds the listen socket, re-executes itself once per worker and keeps the
// workers running under a suture tree. Started with PHALANX_WORKER set it is
// a worker: it serves HTTP on the socket inherited from the master.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (PHALANX_PORT, LOG_LEVEL, ACCESS_LOG, ...)
//   - Config file (PHALANX_CONFIG, ./phalanx.yaml or /etc/phalanx/phalanx.yaml)
//   - Built-in defaults
//
// # Demo Routes
//
// Each worker mounts a small application that exercises every way a handler
// can fail:
//
//	GET  /             greeting built from locals.salute
//	GET  /settings     the settings section as JSON
//	POST /greetings    validated JSON body
//	GET  /test-1       Status(400)
//	GET  /test-2       Status(499), unknown
//	GET  /test-3       Status(999), out of range
//	GET  /test-4..7    status/message/details bags
//	GET  /test-8       panics with an exception
//	GET  /test-9       exception with status, details and extra fields
//	GET  /test-0       bag wrapping an exception
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The master forwards SIGTERM to
// every worker and kills those still running after phalanx.shutdown_timeout;
// each worker drains in-flight requests before exiting.
//
// # Example Usage
//
//	export PHALANX_PORT=8080
//	export PHALANX_COUNT=4
//	export ACCESS_LOG=/var/log/phalanx/access.log
//	./phalanx
package main
