// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package supervisor

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

// WorkerEnvVar holds the worker index in a worker process.
const WorkerEnvVar = "PHALANX_WORKER"

// Inherited file descriptors of a worker process.
const (
	listenerFD = 3
	readyFD    = 4
)

const readyMessage = "ready"

// ErrNotWorker is returned by worker-side helpers in the master process.
var ErrNotWorker = errors.New("not running as a worker process")

// WorkerIndex reports whether this process is a worker and, if so, its index.
func WorkerIndex() (int, bool) {
	v, ok := os.LookupEnv(WorkerEnvVar)
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(v)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

// Listen binds addr and returns the socket as a file for ExecStarter along
// with the bound address. The caller owns the file.
func Listen(addr string) (*os.File, net.Addr, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	defer l.Close()

	tcp, ok := l.(*net.TCPListener)
	if !ok {
		return nil, nil, fmt.Errorf("listen on %s: unexpected listener type %T", addr, l)
	}
	// File returns a duplicate; the socket outlives l.
	f, err := tcp.File()
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return f, l.Addr(), nil
}

// InheritedListener returns the listening socket passed by the master.
func InheritedListener() (net.Listener, error) {
	if _, ok := WorkerIndex(); !ok {
		return nil, ErrNotWorker
	}

	f := os.NewFile(listenerFD, "phalanx-listener")
	if f == nil {
		return nil, errors.New("inherited listener: fd 3 is not open")
	}
	defer f.Close()

	l, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("inherited listener: %w", err)
	}
	return l, nil
}

// NotifyReady tells the master that this worker is serving. It closes the
// readiness pipe and must be called at most once.
func NotifyReady() error {
	if _, ok := WorkerIndex(); !ok {
		return ErrNotWorker
	}

	f := os.NewFile(readyFD, "phalanx-ready")
	if f == nil {
		return errors.New("readiness pipe: fd 4 is not open")
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s %d\n", readyMessage, os.Getpid()); err != nil {
		return fmt.Errorf("readiness pipe: %w", err)
	}
	return nil
}
