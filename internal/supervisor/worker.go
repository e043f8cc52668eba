// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/phalanx/internal/logging"
	"github.com/tomtom215/phalanx/internal/metrics"
)

// ErrWorkerExited is returned by WorkerService.Serve when the worker process
// ended on its own, which makes suture start it again.
var ErrWorkerExited = errors.New("worker exited")

// WorkerConfig controls restarts and shutdown of one worker.
type WorkerConfig struct {
	// Restart starts the worker again after it exits.
	Restart bool

	// Delay is the pause between an exit and the restart.
	Delay time.Duration

	// ShutdownTimeout is how long a worker may take to exit after SIGTERM
	// before it is killed.
	ShutdownTimeout time.Duration
}

// WorkerService supervises one worker process as a suture.Service. Each call
// to Serve runs exactly one process from start to exit.
type WorkerService struct {
	index   int
	starter Starter
	config  WorkerConfig
	logger  zerolog.Logger

	// onRetire runs when the worker exits for good.
	onRetire func()
}

// NewWorkerService creates the service for worker index.
func NewWorkerService(index int, starter Starter, config WorkerConfig) *WorkerService {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	return &WorkerService{
		index:   index,
		starter: starter,
		config:  config,
		logger:  logging.WithComponent("supervisor").With().Int("worker", index).Logger(),
	}
}

// Serve implements suture.Service.
func (w *WorkerService) Serve(ctx context.Context) error {
	proc, err := w.starter.Start(w.index)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to start worker")
		return w.afterExit(ctx, fmt.Errorf("start worker %d: %w", w.index, err))
	}

	started := time.Now()
	pid := proc.Pid()
	log := w.logger.With().Int("pid", pid).Logger()
	metrics.RecordWorkerStart(w.index)
	log.Info().Msg("Worker started")

	exited := make(chan error, 1)
	go func() { exited <- proc.Wait() }()

	ready := proc.Ready()
	isReady := false
	defer func() {
		if isReady {
			metrics.TrackWorkerReady(false)
		}
	}()

	for {
		select {
		case <-ready:
			ready = nil
			isReady = true
			metrics.TrackWorkerReady(true)
			log.Info().Msg("Worker ready")

		case waitErr := <-exited:
			uptime := time.Since(started)
			reason := "exited"
			if waitErr != nil {
				reason = "failed"
			}
			metrics.RecordWorkerExit(w.index, reason, uptime)
			log.Warn().Err(waitErr).Dur("uptime", uptime).Msg("Worker died")

			exitErr := fmt.Errorf("%w: worker %d (pid %d)", ErrWorkerExited, w.index, pid)
			if waitErr != nil {
				exitErr = fmt.Errorf("%w: worker %d (pid %d): %w", ErrWorkerExited, w.index, pid, waitErr)
			}
			return w.afterExit(ctx, exitErr)

		case <-ctx.Done():
			w.stop(proc, exited, log)
			metrics.RecordWorkerExit(w.index, "shutdown", time.Since(started))
			return ctx.Err()
		}
	}
}

// afterExit applies the restart policy to a worker that ended on its own.
func (w *WorkerService) afterExit(ctx context.Context, err error) error {
	if !w.config.Restart {
		w.logger.Info().Err(err).Msg("Worker not restarted")
		if w.onRetire != nil {
			w.onRetire()
		}
		return suture.ErrDoNotRestart
	}

	if w.config.Delay > 0 {
		timer := time.NewTimer(w.config.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// stop sends SIGTERM and kills the worker if it outlives the shutdown timeout.
func (w *WorkerService) stop(proc Process, exited <-chan error, log zerolog.Logger) {
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		log.Debug().Err(err).Msg("SIGTERM not delivered")
	}

	timer := time.NewTimer(w.config.ShutdownTimeout)
	defer timer.Stop()

	select {
	case err := <-exited:
		log.Info().Err(err).Msg("Worker stopped")
	case <-timer.C:
		log.Warn().Dur("timeout", w.config.ShutdownTimeout).Msg("Worker did not stop in time, killing it")
		if err := proc.Kill(); err != nil {
			log.Error().Err(err).Msg("Failed to kill worker")
		}
		<-exited
	}
}

// String implements fmt.Stringer for suture's event log.
func (w *WorkerService) String() string {
	return fmt.Sprintf("worker-%d", w.index)
}
