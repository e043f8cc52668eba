// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Phalanx PhalanxConfig `koanf:"phalanx"`
	Logging LoggingConfig `koanf:"logging"`
	HTTP    HTTPConfig    `koanf:"http"`

	// Settings are free-form application settings.
	Settings map[string]any `koanf:"settings"`
	// Locals are free-form values exposed to request handlers.
	Locals map[string]any `koanf:"locals"`
}

// PhalanxConfig controls the listen address and the worker pool.
type PhalanxConfig struct {
	// Host is the address the master binds. Default: 127.0.0.1
	Host string `koanf:"host" validate:"required"`

	// Port is the TCP port. 0 picks a free port. Default: 8080
	Port int `koanf:"port" validate:"min=0,max=65535"`

	// Count is the number of worker processes. Default: runtime.NumCPU()
	Count int `koanf:"count" validate:"min=1,max=1024"`

	// Restart re-spawns a worker after it exits. Default: true
	Restart bool `koanf:"restart"`

	// Delay is the pause before a worker is restarted. Default: 1s
	Delay time.Duration `koanf:"delay" validate:"min=0"`

	// ShutdownTimeout bounds how long a worker may take to exit after
	// SIGTERM before it is killed. Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// MetricsAddress serves the master's worker-pool metrics on a separate
	// host:port. Empty disables it.
	MetricsAddress string `koanf:"metrics_address" validate:"omitempty,hostname_port"`
}

// Address returns host:port suitable for net.Listen.
func (p PhalanxConfig) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"loglevel"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller adds file:line to log entries.
	Caller bool `koanf:"caller"`

	// ErrorLog is the file that receives error records. Empty means stderr.
	ErrorLog string `koanf:"error_log"`

	// AccessLog is the file that receives access-log lines. Empty means
	// stdout, "-" disables the access log.
	AccessLog string `koanf:"access_log"`
}

// HTTPConfig holds settings for the worker HTTP servers.
type HTTPConfig struct {
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"min=0"`

	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string `koanf:"cors_origins" validate:"dive,origin"`

	// Rate limiting per client IP.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"min=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// MetricsPath serves each worker's Prometheus metrics. Empty disables
	// the endpoint.
	MetricsPath string `koanf:"metrics_path"`

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP
	// for logging and rate limiting.
	TrustProxy bool `koanf:"trust_proxy"`

	// Compress gzips responses for clients that accept it.
	Compress bool `koanf:"compress"`
}
