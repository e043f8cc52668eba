// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
)

// HTTPServer matches the *http.Server lifecycle methods used here.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService serves HTTP on an already bound listener as a
// supervised service.
//
//	server := &http.Server{Handler: router}
//	svc := services.NewHTTPServerService(server, listener, 10*time.Second).
//	    OnServing(func() { _ = supervisor.NotifyReady() })
//	tree.AddAPIService(svc)
//
// The listener belongs to the server once Serve runs, so a server failure
// cannot be retried in-process. Serve then returns an error wrapping
// suture.ErrTerminateSupervisorTree and the worker process exits, leaving
// the restart to the master.
type HTTPServerService struct {
	server          HTTPServer
	listener        net.Listener
	shutdownTimeout time.Duration
	name            string

	onServing     func()
	onServingOnce sync.Once
}

// NewHTTPServerService creates a new HTTP server service wrapper.
// shutdownTimeout bounds the graceful drain of open connections.
func NewHTTPServerService(server HTTPServer, listener net.Listener, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		listener:        listener,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// OnServing registers fn to run once, after the server has started
// accepting on the listener.
func (h *HTTPServerService) OnServing(fn func()) *HTTPServerService {
	h.onServing = fn
	return h
}

// Serve implements suture.Service.
//
// Returns ctx.Err() after a graceful shutdown. http.ErrServerClosed is
// expected on shutdown and not treated as a failure.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(h.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if h.onServing != nil {
		h.onServingOnce.Do(h.onServing)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: http server failed: %w", suture.ErrTerminateSupervisorTree, err)
		}
		return fmt.Errorf("%w: http server stopped", suture.ErrTerminateSupervisorTree)

	case <-ctx.Done():
		// ctx is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}

		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture's event log.
func (h *HTTPServerService) String() string {
	return h.name
}
