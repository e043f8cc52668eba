// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/phalanx/internal/validation"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, verr.Error())
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	return c.validateMetricsPath()
}

func (c *Config) validateRateLimit() error {
	if c.HTTP.RateLimitDisabled {
		return nil
	}
	if c.HTTP.RateLimitRequests < 1 {
		return fmt.Errorf("%w: http.rate_limit_requests must be at least 1 unless http.rate_limit_disabled is set", ErrInvalidConfig)
	}
	if c.HTTP.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: http.rate_limit_window must be positive unless http.rate_limit_disabled is set", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateMetricsPath() error {
	p := c.HTTP.MetricsPath
	if p != "" && (!strings.HasPrefix(p, "/") || p == "/") {
		return fmt.Errorf("%w: http.metrics_path must be an absolute path other than \"/\"", ErrInvalidConfig)
	}
	return nil
}
