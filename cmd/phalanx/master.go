// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/phalanx/internal/config"
	"github.com/tomtom215/phalanx/internal/logging"
	"github.com/tomtom215/phalanx/internal/server"
	"github.com/tomtom215/phalanx/internal/supervisor"
	"github.com/tomtom215/phalanx/internal/supervisor/services"
)

// shutdownGrace is added to the worker shutdown timeout so suture does not
// abandon a WorkerService that is still waiting to kill its process.
const shutdownGrace = 5 * time.Second

// runMaster binds the listen socket and supervises the worker processes
// until ctx is cancelled or, with restarts disabled, every worker has exited.
func runMaster(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("address", cfg.Phalanx.Address()).
		Int("workers", cfg.Phalanx.Count).
		Bool("restart", cfg.Phalanx.Restart).
		Dur("delay", cfg.Phalanx.Delay).
		Msg("Starting Phalanx master")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Phalanx.ShutdownTimeout + shutdownGrace,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	socket, addr, err := supervisor.Listen(cfg.Phalanx.Address())
	if err != nil {
		return err
	}
	defer socket.Close()

	if err := addMasterMetrics(tree, cfg); err != nil {
		return err
	}

	pool := supervisor.NewPool(tree, &supervisor.ExecStarter{Listener: socket}, cfg.Phalanx.Count, supervisor.WorkerConfig{
		Restart:         cfg.Phalanx.Restart,
		Delay:           cfg.Phalanx.Delay,
		ShutdownTimeout: cfg.Phalanx.ShutdownTimeout,
	})
	logging.Info().Stringer("addr", addr).Msg("Listening")

	err = pool.Serve(ctx)
	reportUnstopped(tree)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker pool: %w", err)
	}

	logging.Info().Msg("Phalanx master stopped")
	return nil
}

// addMasterMetrics serves the master's own registry, which holds the worker
// pool metrics, when phalanx.metrics_address is set.
func addMasterMetrics(tree *supervisor.SupervisorTree, cfg *config.Config) error {
	if cfg.Phalanx.MetricsAddress == "" {
		return nil
	}

	l, err := net.Listen("tcp", cfg.Phalanx.MetricsAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Phalanx.MetricsAddress, err)
	}

	path := cfg.HTTP.MetricsPath
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	tree.AddAPIService(services.NewHTTPServerService(server.New(&cfg.HTTP, mux), l, cfg.Phalanx.ShutdownTimeout))
	logging.Info().Stringer("addr", l.Addr()).Str("path", path).Msg("Serving master metrics")
	return nil
}

func reportUnstopped(tree *supervisor.SupervisorTree) {
	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
}
