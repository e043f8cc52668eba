// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

/*
Package config loads the server configuration with Koanf v2.

Sources are layered, later ones overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $PHALANX_CONFIG, else the first of
    phalanx.yaml, phalanx.yml, /etc/phalanx/phalanx.yaml
 3. Environment variables listed in the mapping table (envTransformFunc)

Example phalanx.yaml:

	phalanx:
	  host: 0.0.0.0
	  port: 8080
	  count: 4
	  restart: true
	  delay: 1s
	logging:
	  level: info
	  access_log: /var/log/phalanx/access.log
	http:
	  cors_origins: ["https://example.com"]
	  trust_proxy: true
	settings:
	  view_cache: true
	locals:
	  salute: Hello

The loaded Config is validated before it is returned; any failure wraps
ErrInvalidConfig. A Config is immutable after Load and safe for concurrent
reads. The settings and locals maps are handed to the application as-is.
*/
package config
