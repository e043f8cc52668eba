// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tomtom215/phalanx/internal/config"
	"github.com/tomtom215/phalanx/internal/errorlog"
	"github.com/tomtom215/phalanx/internal/logging"
	"github.com/tomtom215/phalanx/internal/server"
	"github.com/tomtom215/phalanx/internal/supervisor"
	"github.com/tomtom215/phalanx/internal/supervisor/services"
)

// runWorker serves HTTP on the listener inherited from the master until ctx
// is cancelled.
func runWorker(ctx context.Context, cfg *config.Config, index int, app server.App) error {
	errorLog, closeErrorLog, err := logging.OpenOutput(cfg.Logging.ErrorLog, nil)
	if err != nil {
		return err
	}
	defer closeErrors(closeErrorLog)

	accessLog, closeAccessLog, err := logging.OpenOutput(cfg.Logging.AccessLog, os.Stdout)
	if err != nil {
		return err
	}
	defer closeErrors(closeAccessLog)

	normalizer := errorlog.New(errorlog.Options{Logger: errorSink(errorLog)})
	handler := server.NewRouter(cfg, normalizer, accessLog, app, server.WithWorker(index))

	listener, err := supervisor.InheritedListener()
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Phalanx.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	svc := services.NewHTTPServerService(server.New(&cfg.HTTP, handler), listener, cfg.Phalanx.ShutdownTimeout).
		OnServing(func() {
			if err := supervisor.NotifyReady(); err != nil {
				logging.Warn().Err(err).Msg("Failed to report readiness")
			}
		})
	tree.AddAPIService(svc)

	logging.Info().Int("pid", os.Getpid()).Msg("Worker starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker %d: %w", index, err)
	}
	logging.Info().Msg("Worker stopped")
	return nil
}

// errorSink writes raw records to the configured error log file, or through
// the process logger when none is configured.
func errorSink(w io.Writer) errorlog.Sink {
	if w == nil {
		return errorlog.DefaultSink
	}
	return errorlog.WriterSink(w)
}

func closeErrors(closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close log output")
	}
}
